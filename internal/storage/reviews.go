package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// InsertReview appends an entry to the review log and returns its ID.
func (q *Queries) InsertReview(ctx context.Context, r domain.ReviewLogEntry) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO reviews (cell_id, study_time, date, rating) VALUES (?, ?, ?, ?)`,
		r.CellID, r.StudyTime, formatTime(r.Date), string(r.Rating))
	if err != nil {
		return 0, fmt.Errorf("failed to insert review for cell %d: %w", r.CellID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for review: %w", err)
	}
	return id, nil
}

// ListReviewsForCell returns the review history of a cell, oldest first.
func (q *Queries) ListReviewsForCell(ctx context.Context, cellID int64) ([]domain.ReviewLogEntry, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, cell_id, study_time, date, rating FROM reviews WHERE cell_id = ? ORDER BY date, id`, cellID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for cell %d: %w", cellID, err)
	}
	defer rows.Close()

	var entries []domain.ReviewLogEntry
	for rows.Next() {
		var e domain.ReviewLogEntry
		var date, rating string
		if err := rows.Scan(&e.ID, &e.CellID, &e.StudyTime, &date, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		if e.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("bad review date %q: %w", date, err)
		}
		e.Rating = domain.Rating(rating)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review rows: %w", err)
	}
	return entries, nil
}

// ReviewStatistics counts the reviews dated in [from, to) and sums their study time.
func (q *Queries) ReviewStatistics(ctx context.Context, from, to time.Time) (domain.ReviewStatistics, error) {
	var st domain.ReviewStatistics
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(study_time), 0) FROM reviews WHERE date >= ? AND date < ?`,
		formatTime(from), formatTime(to)).Scan(&st.Count, &st.StudyTime)
	if err != nil {
		return st, fmt.Errorf("failed to compute review statistics: %w", err)
	}
	return st, nil
}

// CountReviewsByDay buckets reviews dated in [from, to) by UTC calendar day.
func (q *Queries) CountReviewsByDay(ctx context.Context, from, to time.Time) ([]domain.DayCount, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT substr(date, 1, 10) AS day, COUNT(*) FROM reviews
		WHERE date >= ? AND date < ?
		GROUP BY day ORDER BY day
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews by day: %w", err)
	}
	return collectDayCounts(rows)
}
