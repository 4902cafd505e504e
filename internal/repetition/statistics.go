package repetition

import (
	"context"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// MaxStatisticsDays bounds HomeStatistics.
const MaxStatisticsDays = 366

// TodayStatistics counts the reviews logged since local midnight and their total study time.
func (l *SQLLifecycle) TodayStatistics(ctx context.Context) (domain.ReviewStatistics, error) {
	now := l.clock.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	st, err := l.db.Queries().ReviewStatistics(ctx, start, start.AddDate(0, 0, 1))
	return st, domain.Persistence("get today statistics", err)
}

// HomeStatistics returns one bucket per UTC day: reviews for the past days (today included)
// and units coming due for the next days (today included). Days without rows report zero.
func (l *SQLLifecycle) HomeStatistics(ctx context.Context, days int) (domain.HomeStatistics, error) {
	if days < 1 || days > MaxStatisticsDays {
		return domain.HomeStatistics{}, &domain.ValidationError{Field: "days", Message: "days must be between 1 and 366"}
	}

	today := l.clock.Now().UTC().Truncate(24 * time.Hour)
	q := l.db.Queries()

	pastStart := today.AddDate(0, 0, -(days - 1))
	reviews, err := q.CountReviewsByDay(ctx, pastStart, today.AddDate(0, 0, 1))
	if err != nil {
		return domain.HomeStatistics{}, domain.Persistence("get home statistics", err)
	}
	due, err := q.CountDueByDay(ctx, today, today.AddDate(0, 0, days))
	if err != nil {
		return domain.HomeStatistics{}, domain.Persistence("get home statistics", err)
	}

	return domain.HomeStatistics{
		ReviewCounts: fillDays(pastStart, days, reviews),
		DueCounts:    fillDays(today, days, due),
	}, nil
}

func fillDays(start time.Time, days int, sparse []domain.DayCount) []domain.DayCount {
	byDay := make(map[string]int, len(sparse))
	for _, d := range sparse {
		byDay[d.Date] = d.Count
	}
	out := make([]domain.DayCount, days)
	for i := range out {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		out[i] = domain.DayCount{Date: day, Count: byDay[day]}
	}
	return out
}
