package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
)

const unitColumns = `id, file_id, cell_id, additional_content, due, stability, difficulty,
	elapsed_days, scheduled_days, reps, lapses, state, last_review`

func scanUnit(row interface{ Scan(...any) error }) (domain.RepetitionUnit, error) {
	var (
		u          domain.RepetitionUnit
		additional sql.NullString
		due        string
		lastReview string
		state      string
	)
	err := row.Scan(&u.ID, &u.FileID, &u.CellID, &additional, &due, &u.Stability, &u.Difficulty,
		&u.ElapsedDays, &u.ScheduledDays, &u.Reps, &u.Lapses, &state, &lastReview)
	if err != nil {
		return u, err
	}
	if additional.Valid {
		s := additional.String
		u.AdditionalContent = &s
	}
	u.State = domain.State(state)
	if u.Due, err = parseTime(due); err != nil {
		return u, fmt.Errorf("bad due time %q: %w", due, err)
	}
	if u.LastReview, err = parseTime(lastReview); err != nil {
		return u, fmt.Errorf("bad last_review time %q: %w", lastReview, err)
	}
	return u, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// InsertUnit stores a repetition unit and returns its ID.
func (q *Queries) InsertUnit(ctx context.Context, u domain.RepetitionUnit) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO repetitions (file_id, cell_id, additional_content, due, stability, difficulty,
			elapsed_days, scheduled_days, reps, lapses, state, last_review)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		u.FileID, u.CellID, nullable(u.AdditionalContent), formatTime(u.Due), u.Stability, u.Difficulty,
		u.ElapsedDays, u.ScheduledDays, u.Reps, u.Lapses, string(u.State), formatTime(u.LastReview),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert repetition for cell %d: %w", u.CellID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for repetition: %w", err)
	}
	return id, nil
}

// GetUnit returns the unit with the given ID, or nil if there is none.
func (q *Queries) GetUnit(ctx context.Context, id int64) (*domain.RepetitionUnit, error) {
	u, err := scanUnit(q.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM repetitions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get repetition %d: %w", id, err)
	}
	return &u, nil
}

// ListUnitsForCell returns the units owned by a cell ordered by ID.
func (q *Queries) ListUnitsForCell(ctx context.Context, cellID int64) ([]domain.RepetitionUnit, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+unitColumns+` FROM repetitions WHERE cell_id = ? ORDER BY id`, cellID)
	if err != nil {
		return nil, fmt.Errorf("failed to list repetitions for cell %d: %w", cellID, err)
	}
	return collectUnits(rows)
}

// ListUnitsForFile returns the units of a file ordered by ID.
func (q *Queries) ListUnitsForFile(ctx context.Context, fileID int64) ([]domain.RepetitionUnit, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+unitColumns+` FROM repetitions WHERE file_id = ? ORDER BY id`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list repetitions for file %d: %w", fileID, err)
	}
	return collectUnits(rows)
}

// ListUnitsForFiles returns the units of several files ordered by ID.
func (q *Queries) ListUnitsForFiles(ctx context.Context, fileIDs []int64) ([]domain.RepetitionUnit, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(fileIDs)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM repetitions WHERE file_id IN (`+in+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repetitions for files: %w", err)
	}
	return collectUnits(rows)
}

func collectUnits(rows *sql.Rows) ([]domain.RepetitionUnit, error) {
	defer rows.Close()

	var units []domain.RepetitionUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repetition row: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate repetition rows: %w", err)
	}
	return units, nil
}

// UpdateUnitSchedule overwrites every scheduling column of a unit and reports how many rows matched.
func (q *Queries) UpdateUnitSchedule(ctx context.Context, u domain.RepetitionUnit) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE repetitions
		SET due = ?, stability = ?, difficulty = ?, elapsed_days = ?, scheduled_days = ?,
			reps = ?, lapses = ?, state = ?, last_review = ?
		WHERE id = ?
	`,
		formatTime(u.Due), u.Stability, u.Difficulty, u.ElapsedDays, u.ScheduledDays,
		u.Reps, u.Lapses, string(u.State), formatTime(u.LastReview),
		u.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update repetition %d: %w", u.ID, err)
	}
	return res.RowsAffected()
}

// DeleteUnit removes one unit.
func (q *Queries) DeleteUnit(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM repetitions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete repetition %d: %w", id, err)
	}
	return nil
}

// DeleteUnitsForCell removes every unit owned by a cell.
func (q *Queries) DeleteUnitsForCell(ctx context.Context, cellID int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM repetitions WHERE cell_id = ?`, cellID); err != nil {
		return fmt.Errorf("failed to delete repetitions for cell %d: %w", cellID, err)
	}
	return nil
}

// CountDueByState counts the units of a file due at or before now, grouped by state.
func (q *Queries) CountDueByState(ctx context.Context, fileID int64, now time.Time) (domain.StudyCounts, error) {
	var counts domain.StudyCounts
	rows, err := q.db.QueryContext(ctx, `
		SELECT state, COUNT(*) FROM repetitions
		WHERE file_id = ? AND due <= ?
		GROUP BY state
	`, fileID, formatTime(now))
	if err != nil {
		return counts, fmt.Errorf("failed to count due repetitions for file %d: %w", fileID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return counts, fmt.Errorf("failed to scan due count row: %w", err)
		}
		counts.Add(domain.State(state), n)
	}
	return counts, rows.Err()
}

// CountDueByStateForAllFiles is CountDueByState for every file at once, keyed by file ID.
// Files without due units are absent from the map.
func (q *Queries) CountDueByStateForAllFiles(ctx context.Context, now time.Time) (map[int64]domain.StudyCounts, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT file_id, state, COUNT(*) FROM repetitions
		WHERE due <= ?
		GROUP BY file_id, state
	`, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to count due repetitions: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]domain.StudyCounts)
	for rows.Next() {
		var fileID int64
		var state string
		var n int
		if err := rows.Scan(&fileID, &state, &n); err != nil {
			return nil, fmt.Errorf("failed to scan due count row: %w", err)
		}
		c := counts[fileID]
		c.Add(domain.State(state), n)
		counts[fileID] = c
	}
	return counts, rows.Err()
}

// CountDueByDay buckets units due in [from, to) by UTC calendar day.
func (q *Queries) CountDueByDay(ctx context.Context, from, to time.Time) ([]domain.DayCount, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT substr(due, 1, 10) AS day, COUNT(*) FROM repetitions
		WHERE due >= ? AND due < ?
		GROUP BY day ORDER BY day
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to count due repetitions by day: %w", err)
	}
	return collectDayCounts(rows)
}

func collectDayCounts(rows *sql.Rows) ([]domain.DayCount, error) {
	defer rows.Close()

	var out []domain.DayCount
	for rows.Next() {
		var d domain.DayCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan day count row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate day count rows: %w", err)
	}
	return out, nil
}
