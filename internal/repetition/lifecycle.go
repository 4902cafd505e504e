// Package repetition keeps the spaced-repetition units of each cell in line with the
// cell's type and content, and records reviews against them.
package repetition

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conorfennell/knoldeck/internal/clock"
	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/parser"
	"github.com/conorfennell/knoldeck/internal/storage"
)

//go:generate mockgen -destination=../web/mocks/mock_lifecycle.go -package=mocks github.com/conorfennell/knoldeck/internal/repetition Lifecycle

// Lifecycle owns repetition units. Scheduling values are computed elsewhere and only stored here.
type Lifecycle interface {
	Reconcile(ctx context.Context, fileID, cellID int64, cellType domain.CellType, content string) error
	StudyCounts(ctx context.Context, fileID int64) (domain.StudyCounts, error)
	StudyCountsByFile(ctx context.Context) (map[int64]domain.StudyCounts, error)
	FileUnits(ctx context.Context, fileID int64) ([]domain.RepetitionUnit, error)
	UnitsForFiles(ctx context.Context, fileIDs []int64) ([]domain.RepetitionUnit, error)
	GetUnit(ctx context.Context, id int64) (domain.RepetitionUnit, error)
	RegisterReview(ctx context.Context, unit domain.RepetitionUnit, rating domain.Rating, studyTime int64) error
	ResetUnitsForCell(ctx context.Context, cellID int64) error
	TodayStatistics(ctx context.Context) (domain.ReviewStatistics, error)
	HomeStatistics(ctx context.Context, days int) (domain.HomeStatistics, error)
}

// SQLLifecycle implements Lifecycle and also reconciles inside a caller's transaction.
type SQLLifecycle struct {
	db    *storage.DB
	clock clock.Clock
}

var _ Lifecycle = (*SQLLifecycle)(nil)

func NewSQLLifecycle(db *storage.DB, c clock.Clock) *SQLLifecycle {
	return &SQLLifecycle{db: db, clock: c}
}

func (l *SQLLifecycle) Reconcile(ctx context.Context, fileID, cellID int64, cellType domain.CellType, content string) error {
	if !cellType.Valid() {
		return &domain.ValidationError{Field: "cellType", Message: fmt.Sprintf("unknown cell type %q", cellType)}
	}
	err := l.db.InTx(ctx, func(q *storage.Queries) error {
		cell, err := q.GetCell(ctx, cellID)
		if err != nil {
			return err
		}
		if cell == nil || cell.FileID != fileID {
			return domain.NotFound("cell", cellID)
		}
		return l.ReconcileIn(ctx, q, domain.Cell{ID: cellID, FileID: fileID, CellType: cellType, Content: content})
	})
	return domain.Persistence("reconcile repetitions", err)
}

// ReconcileIn makes the stored units of cell match its type and content using q, so the
// caller's transaction covers both the cell change and the unit changes.
func (l *SQLLifecycle) ReconcileIn(ctx context.Context, q *storage.Queries, cell domain.Cell) error {
	existing, err := q.ListUnitsForCell(ctx, cell.ID)
	if err != nil {
		return err
	}

	var inserted, deleted int
	switch cell.CellType {
	case domain.CellNote:
		for _, u := range existing {
			if err := q.DeleteUnit(ctx, u.ID); err != nil {
				return err
			}
			deleted++
		}

	case domain.CellFlashCard, domain.CellTrueFalse:
		if len(existing) == 0 {
			if _, err := q.InsertUnit(ctx, domain.NewUnit(cell.FileID, cell.ID, nil, l.clock.Now())); err != nil {
				return err
			}
			inserted++
		}

	case domain.CellCloze:
		indices := parser.ClozeIndices(cell.Content)
		wanted := make(map[string]bool, len(indices))
		for _, idx := range indices {
			wanted[idx] = true
		}
		have := make(map[string]bool, len(existing))
		for _, u := range existing {
			if u.AdditionalContent != nil && wanted[*u.AdditionalContent] {
				have[*u.AdditionalContent] = true
				continue
			}
			if err := q.DeleteUnit(ctx, u.ID); err != nil {
				return err
			}
			deleted++
		}
		for _, idx := range indices {
			if have[idx] {
				continue
			}
			key := idx
			if _, err := q.InsertUnit(ctx, domain.NewUnit(cell.FileID, cell.ID, &key, l.clock.Now())); err != nil {
				return err
			}
			inserted++
		}

	default:
		return &domain.ValidationError{Field: "cellType", Message: fmt.Sprintf("unknown cell type %q", cell.CellType)}
	}

	if inserted > 0 || deleted > 0 {
		slog.Debug("repetitions reconciled", "cell_id", cell.ID, "type", cell.CellType, "inserted", inserted, "deleted", deleted)
	}
	return nil
}

func (l *SQLLifecycle) StudyCounts(ctx context.Context, fileID int64) (domain.StudyCounts, error) {
	q := l.db.Queries()
	f, err := q.GetFile(ctx, fileID)
	if err != nil {
		return domain.StudyCounts{}, domain.Persistence("get study counts", err)
	}
	if f == nil || f.IsFolder {
		return domain.StudyCounts{}, domain.NotFound("file", fileID)
	}
	counts, err := q.CountDueByState(ctx, fileID, l.clock.Now())
	return counts, domain.Persistence("get study counts", err)
}

func (l *SQLLifecycle) StudyCountsByFile(ctx context.Context) (map[int64]domain.StudyCounts, error) {
	counts, err := l.db.Queries().CountDueByStateForAllFiles(ctx, l.clock.Now())
	return counts, domain.Persistence("get study counts", err)
}

// FileUnits returns the units of a file in study order. See Shuffle for how the order is chosen.
func (l *SQLLifecycle) FileUnits(ctx context.Context, fileID int64) ([]domain.RepetitionUnit, error) {
	units, err := l.db.Queries().ListUnitsForFile(ctx, fileID)
	if err != nil {
		return nil, domain.Persistence("get file repetitions", err)
	}
	Shuffle(units)
	return units, nil
}

func (l *SQLLifecycle) UnitsForFiles(ctx context.Context, fileIDs []int64) ([]domain.RepetitionUnit, error) {
	units, err := l.db.Queries().ListUnitsForFiles(ctx, fileIDs)
	if err != nil {
		return nil, domain.Persistence("get repetitions for files", err)
	}
	Shuffle(units)
	return units, nil
}

func (l *SQLLifecycle) GetUnit(ctx context.Context, id int64) (domain.RepetitionUnit, error) {
	u, err := l.db.Queries().GetUnit(ctx, id)
	if err != nil {
		return domain.RepetitionUnit{}, domain.Persistence("get repetition", err)
	}
	if u == nil {
		return domain.RepetitionUnit{}, domain.NotFound("repetition", id)
	}
	return *u, nil
}

// RegisterReview overwrites the stored scheduling fields with the values carried by unit
// and appends a review log entry dated now. Both writes share one transaction.
func (l *SQLLifecycle) RegisterReview(ctx context.Context, unit domain.RepetitionUnit, rating domain.Rating, studyTime int64) error {
	if _, err := domain.ParseRating(string(rating)); err != nil {
		return err
	}
	if !unit.State.Valid() {
		return &domain.ValidationError{Field: "state", Message: fmt.Sprintf("unknown state %q", unit.State)}
	}
	if studyTime < 0 {
		return &domain.ValidationError{Field: "studyTime", Message: "study time cannot be negative"}
	}

	err := l.db.InTx(ctx, func(q *storage.Queries) error {
		stored, err := q.GetUnit(ctx, unit.ID)
		if err != nil {
			return err
		}
		if stored == nil {
			return domain.NotFound("repetition", unit.ID)
		}
		if _, err := q.UpdateUnitSchedule(ctx, unit); err != nil {
			return err
		}
		_, err = q.InsertReview(ctx, domain.ReviewLogEntry{
			CellID:    stored.CellID,
			StudyTime: studyTime,
			Date:      l.clock.Now(),
			Rating:    rating,
		})
		return err
	})
	return domain.Persistence("register review", err)
}

// ResetUnitsForCell drops every unit of the cell and rebuilds them fresh from its current content.
func (l *SQLLifecycle) ResetUnitsForCell(ctx context.Context, cellID int64) error {
	err := l.db.InTx(ctx, func(q *storage.Queries) error {
		cell, err := q.GetCell(ctx, cellID)
		if err != nil {
			return err
		}
		if cell == nil {
			return domain.NotFound("cell", cellID)
		}
		if err := q.DeleteUnitsForCell(ctx, cellID); err != nil {
			return err
		}
		return l.ReconcileIn(ctx, q, *cell)
	})
	return domain.Persistence("reset repetitions", err)
}
