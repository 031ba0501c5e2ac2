package ledger

import "time"

// Poll days are keyed by the calendar day in Korea, matching the locale
// the poll has always used.
var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}()

// Today returns the current poll key, YYYY-MM-DD in Asia/Seoul.
func Today() string {
	return time.Now().In(seoul).Format("2006-01-02")
}
