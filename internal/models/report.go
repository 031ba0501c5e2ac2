package models

// DailyParticipation is one bar of the weekly report: a weekday's
// short display name paired with that day's counters.
type DailyParticipation struct {
	Day        string `json:"day"`
	Joining    int    `json:"joining"`
	NotJoining int    `json:"notJoining"`
}

type MostPopularDay struct {
	Day        string  `json:"day"`
	Percentage float64 `json:"percentage"`
}

// WeeklyReport is derived from the stored DailyPoll set on every read;
// it is never persisted.
type WeeklyReport struct {
	AverageParticipation int                  `json:"averageParticipation"`
	MostPopularDay       MostPopularDay       `json:"mostPopularDay"`
	DailyBreakdown       []DailyParticipation `json:"dailyBreakdown"`
}
