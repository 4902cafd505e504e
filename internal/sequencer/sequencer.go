// Package sequencer keeps the cells of a file in a dense, zero-based order.
package sequencer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/storage"
)

//go:generate mockgen -destination=../web/mocks/mock_sequencer.go -package=mocks github.com/conorfennell/knoldeck/internal/sequencer Sequencer

// Sequencer manages ordered cells. Indices of a file are always exactly 0..n-1 between calls.
type Sequencer interface {
	ListOrdered(ctx context.Context, fileID int64) ([]domain.Cell, error)
	CellsForFiles(ctx context.Context, fileIDs []int64) ([]domain.Cell, error)
	CreateCell(ctx context.Context, fileID int64, content string, cellType domain.CellType, index int) (int64, error)
	DeleteCell(ctx context.Context, cellID int64) error
	MoveCell(ctx context.Context, cellID int64, newIndex int) error
	UpdateCellContent(ctx context.Context, cellID int64, content string) error
	UpdateCellsContents(ctx context.Context, updates []domain.CellContentUpdate) error
}

// Reconciler brings a cell's repetition units in line with its type and content,
// inside the transaction that changed the cell.
type Reconciler interface {
	ReconcileIn(ctx context.Context, q *storage.Queries, cell domain.Cell) error
}

// SQLSequencer implements Sequencer on storage.DB.
type SQLSequencer struct {
	db         *storage.DB
	reconciler Reconciler
}

var _ Sequencer = (*SQLSequencer)(nil)

func NewSQLSequencer(db *storage.DB, r Reconciler) *SQLSequencer {
	return &SQLSequencer{db: db, reconciler: r}
}

func (s *SQLSequencer) ListOrdered(ctx context.Context, fileID int64) ([]domain.Cell, error) {
	cells, err := s.db.Queries().ListCells(ctx, fileID)
	return cells, domain.Persistence("list cells", err)
}

func (s *SQLSequencer) CellsForFiles(ctx context.Context, fileIDs []int64) ([]domain.Cell, error) {
	cells, err := s.db.Queries().ListCellsForFiles(ctx, fileIDs)
	return cells, domain.Persistence("list cells for files", err)
}

func (s *SQLSequencer) CreateCell(ctx context.Context, fileID int64, content string, cellType domain.CellType, index int) (int64, error) {
	if _, err := domain.ParseCellType(string(cellType)); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		var err error
		id, err = s.CreateCellIn(ctx, q, fileID, content, cellType, index)
		return err
	})
	if err != nil {
		return 0, domain.Persistence("create cell", err)
	}
	return id, nil
}

// CreateCellIn opens a slot at index, inserts the cell there and reconciles its units,
// all with the caller's q.
func (s *SQLSequencer) CreateCellIn(ctx context.Context, q *storage.Queries, fileID int64, content string, cellType domain.CellType, index int) (int64, error) {
	f, err := q.GetFile(ctx, fileID)
	if err != nil {
		return 0, err
	}
	if f == nil || f.IsFolder {
		return 0, domain.NotFound("file", fileID)
	}
	n, err := q.CountCells(ctx, fileID)
	if err != nil {
		return 0, err
	}
	if index < 0 || index > n {
		return 0, indexOutOfRange(index, n)
	}

	if err := q.ShiftCellIndices(ctx, fileID, index, 1); err != nil {
		return 0, err
	}
	cell := domain.Cell{FileID: fileID, Index: index, Content: content, CellType: cellType}
	if cell.ID, err = q.InsertCell(ctx, cell); err != nil {
		return 0, err
	}
	if err := s.reconciler.ReconcileIn(ctx, q, cell); err != nil {
		return 0, err
	}
	return cell.ID, nil
}

func (s *SQLSequencer) DeleteCell(ctx context.Context, cellID int64) error {
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		return DeleteCellIn(ctx, q, cellID)
	})
	return domain.Persistence("delete cell", err)
}

// DeleteCellIn removes the cell and closes the gap it leaves, with the caller's q.
// The cell's repetition units go with it through the foreign key cascade.
func DeleteCellIn(ctx context.Context, q *storage.Queries, cellID int64) error {
	cell, err := loadCell(ctx, q, cellID)
	if err != nil {
		return err
	}
	if err := q.DeleteCell(ctx, cellID); err != nil {
		return err
	}
	return q.ShiftCellIndices(ctx, cell.FileID, cell.Index+1, -1)
}

// MoveCell moves a cell so that it lands before the cell currently at newIndex.
// newIndex is expressed in the numbering before the move and may equal the cell count
// to move to the end; a forward move therefore lands at newIndex-1.
func (s *SQLSequencer) MoveCell(ctx context.Context, cellID int64, newIndex int) error {
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		cell, err := loadCell(ctx, q, cellID)
		if err != nil {
			return err
		}
		n, err := q.CountCells(ctx, cell.FileID)
		if err != nil {
			return err
		}
		if newIndex < 0 || newIndex > n {
			return indexOutOfRange(newIndex, n)
		}

		target := newIndex
		if newIndex > cell.Index {
			target = newIndex - 1
		}
		if target == cell.Index {
			return nil
		}

		// Close the gap, then open the slot. The moved row is overwritten last.
		if err := q.ShiftCellIndices(ctx, cell.FileID, cell.Index+1, -1); err != nil {
			return err
		}
		if err := q.ShiftCellIndices(ctx, cell.FileID, target, 1); err != nil {
			return err
		}
		if err := q.SetCellIndex(ctx, cellID, target); err != nil {
			return err
		}
		slog.Debug("cell moved", "cell_id", cellID, "from", cell.Index, "to", target)
		return nil
	})
	return domain.Persistence("move cell", err)
}

func (s *SQLSequencer) UpdateCellContent(ctx context.Context, cellID int64, content string) error {
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		return s.updateContentIn(ctx, q, cellID, content)
	})
	return domain.Persistence("update cell content", err)
}

// UpdateCellsContents applies several content updates atomically.
func (s *SQLSequencer) UpdateCellsContents(ctx context.Context, updates []domain.CellContentUpdate) error {
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		for _, u := range updates {
			if err := s.updateContentIn(ctx, q, u.ID, u.Content); err != nil {
				return err
			}
		}
		return nil
	})
	return domain.Persistence("update cells contents", err)
}

func (s *SQLSequencer) updateContentIn(ctx context.Context, q *storage.Queries, cellID int64, content string) error {
	cell, err := loadCell(ctx, q, cellID)
	if err != nil {
		return err
	}
	if _, err := q.UpdateCellContent(ctx, cellID, content); err != nil {
		return err
	}
	cell.Content = content
	return s.reconciler.ReconcileIn(ctx, q, *cell)
}

func loadCell(ctx context.Context, q *storage.Queries, id int64) (*domain.Cell, error) {
	c, err := q.GetCell(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("cell", id)
	}
	return c, nil
}

func indexOutOfRange(index, n int) error {
	return &domain.ValidationError{
		Field:   "index",
		Message: fmt.Sprintf("index %d is out of range, expected 0 to %d", index, n),
	}
}
