// Package report computes the weekly participation report from the
// stored daily polls. It is a pure fold over the poll set: no side
// effects, recomputed on every request.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/make-it-kro/lunch-poll/backend/internal/models"
)

// Weekday short names in the poll's display locale (ko-KR).
var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "일",
	time.Monday:    "월",
	time.Tuesday:   "화",
	time.Wednesday: "수",
	time.Thursday:  "목",
	time.Friday:    "금",
	time.Saturday:  "토",
}

// Most-popular-day ties keep the earliest weekday in this order.
var weekdayOrder = []string{"월", "화", "수", "목", "금"}

type dated struct {
	when time.Time
	poll models.DailyPoll
}

// Build folds the poll set into the weekly report for the given "today"
// key. Today's poll and weekend days are excluded from the breakdown and
// from all aggregate math.
func Build(polls []models.DailyPoll, today string) models.WeeklyReport {
	var history []dated
	for _, p := range polls {
		if p.Date == today {
			continue
		}
		when, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			continue
		}
		if wd := when.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		history = append(history, dated{when: when, poll: p})
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].when.Before(history[j].when)
	})

	breakdown := make([]models.DailyParticipation, 0, len(history))
	totalJoining, totalVotes := 0, 0
	type bucket struct{ joining, total int }
	byWeekday := make(map[string]*bucket, len(weekdayOrder))
	for _, name := range weekdayOrder {
		byWeekday[name] = &bucket{}
	}

	for _, h := range history {
		name := weekdayNames[h.when.Weekday()]
		breakdown = append(breakdown, models.DailyParticipation{
			Day:        name,
			Joining:    h.poll.Joining,
			NotJoining: h.poll.NotJoining,
		})
		totalJoining += h.poll.Joining
		totalVotes += h.poll.Joining + h.poll.NotJoining
		if b, ok := byWeekday[name]; ok {
			b.joining += h.poll.Joining
			b.total += h.poll.Joining + h.poll.NotJoining
		}
	}

	average := 0
	if totalVotes > 0 {
		average = int(math.Round(float64(totalJoining) / float64(totalVotes) * 100))
	}

	popular := models.MostPopularDay{Day: "N/A", Percentage: 0}
	for _, name := range weekdayOrder {
		b := byWeekday[name]
		if b.total == 0 {
			continue
		}
		percentage := float64(b.joining) / float64(b.total) * 100
		if percentage > popular.Percentage {
			popular = models.MostPopularDay{Day: name, Percentage: percentage}
		}
	}

	return models.WeeklyReport{
		AverageParticipation: average,
		MostPopularDay:       popular,
		DailyBreakdown:       breakdown,
	}
}
