package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/knoldeck/internal/domain"
)

const cellColumns = `id, file_id, cell_index, content, cell_type`

func scanCell(row interface{ Scan(...any) error }) (domain.Cell, error) {
	var c domain.Cell
	var cellType string
	if err := row.Scan(&c.ID, &c.FileID, &c.Index, &c.Content, &cellType); err != nil {
		return c, err
	}
	c.CellType = domain.CellType(cellType)
	return c, nil
}

// InsertCell stores a cell at the index it carries and returns the new ID.
func (q *Queries) InsertCell(ctx context.Context, c domain.Cell) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO cells (file_id, cell_index, content, cell_type) VALUES (?, ?, ?, ?)`,
		c.FileID, c.Index, c.Content, string(c.CellType))
	if err != nil {
		return 0, fmt.Errorf("failed to insert cell in file %d: %w", c.FileID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for cell: %w", err)
	}
	return id, nil
}

// GetCell returns the cell with the given ID, or nil if there is none.
func (q *Queries) GetCell(ctx context.Context, id int64) (*domain.Cell, error) {
	c, err := scanCell(q.db.QueryRowContext(ctx, `SELECT `+cellColumns+` FROM cells WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cell %d: %w", id, err)
	}
	return &c, nil
}

// ListCells returns the cells of a file ordered by index.
func (q *Queries) ListCells(ctx context.Context, fileID int64) ([]domain.Cell, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+cellColumns+` FROM cells WHERE file_id = ? ORDER BY cell_index, id`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cells for file %d: %w", fileID, err)
	}
	return collectCells(rows)
}

// ListCellsForFiles returns the cells of several files ordered by file, then index.
func (q *Queries) ListCellsForFiles(ctx context.Context, fileIDs []int64) ([]domain.Cell, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(fileIDs)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+cellColumns+` FROM cells WHERE file_id IN (`+in+`) ORDER BY file_id, cell_index, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cells for files: %w", err)
	}
	return collectCells(rows)
}

func collectCells(rows *sql.Rows) ([]domain.Cell, error) {
	defer rows.Close()

	var cells []domain.Cell
	for rows.Next() {
		c, err := scanCell(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cell row: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cell rows: %w", err)
	}
	return cells, nil
}

// CountCells returns how many cells the file holds, which is also the next free index.
func (q *Queries) CountCells(ctx context.Context, fileID int64) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cells WHERE file_id = ?`, fileID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cells for file %d: %w", fileID, err)
	}
	return n, nil
}

// ShiftCellIndices adds delta to the index of every cell in the file whose index is >= from.
func (q *Queries) ShiftCellIndices(ctx context.Context, fileID int64, from, delta int) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE cells SET cell_index = cell_index + ? WHERE file_id = ? AND cell_index >= ?`,
		delta, fileID, from)
	if err != nil {
		return fmt.Errorf("failed to shift cells of file %d from %d by %d: %w", fileID, from, delta, err)
	}
	return nil
}

// SetCellIndex places a single cell at index.
func (q *Queries) SetCellIndex(ctx context.Context, id int64, index int) error {
	if _, err := q.db.ExecContext(ctx, `UPDATE cells SET cell_index = ? WHERE id = ?`, index, id); err != nil {
		return fmt.Errorf("failed to set index of cell %d: %w", id, err)
	}
	return nil
}

// UpdateCellContent replaces the content of a cell and reports how many rows matched.
func (q *Queries) UpdateCellContent(ctx context.Context, id int64, content string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE cells SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update content of cell %d: %w", id, err)
	}
	return res.RowsAffected()
}

// DeleteCell removes a cell. Its repetitions follow through ON DELETE CASCADE.
func (q *Queries) DeleteCell(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM cells WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cell %d: %w", id, err)
	}
	return nil
}
