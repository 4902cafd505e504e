package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/knoldeck/internal/domain"
)

const fileColumns = `id, path, is_folder`

func scanFile(row interface{ Scan(...any) error }) (domain.FileNode, error) {
	var f domain.FileNode
	err := row.Scan(&f.ID, &f.Path, &f.IsFolder)
	return f, err
}

// InsertFile inserts a file or folder node and returns its ID.
func (q *Queries) InsertFile(ctx context.Context, path string, isFolder bool) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO files (path, is_folder) VALUES (?, ?)`, path, isFolder)
	if err != nil {
		return 0, fmt.Errorf("failed to insert node %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for node %s: %w", path, err)
	}
	return id, nil
}

// GetFile returns the node with the given ID, or nil if there is none.
func (q *Queries) GetFile(ctx context.Context, id int64) (*domain.FileNode, error) {
	f, err := scanFile(q.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get node %d: %w", id, err)
	}
	return &f, nil
}

// FindFileByPath looks up the node of the given kind at path, or nil if there is none.
func (q *Queries) FindFileByPath(ctx context.Context, path string, isFolder bool) (*domain.FileNode, error) {
	f, err := scanFile(q.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE path = ? AND is_folder = ?`, path, isFolder))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find node by path %s: %w", path, err)
	}
	return &f, nil
}

// ListFiles returns every node ordered by path.
func (q *Queries) ListFiles(ctx context.Context) ([]domain.FileNode, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+fileColumns+` FROM files ORDER BY path, is_folder DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return collectFiles(rows)
}

// ListDescendants returns every node strictly below root, ordered by path.
func (q *Queries) ListDescendants(ctx context.Context, root string) ([]domain.FileNode, error) {
	prefix := root + "/"
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE substr(path, 1, length(?)) = ? ORDER BY path, is_folder DESC`,
		prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list descendants of %s: %w", root, err)
	}
	return collectFiles(rows)
}

func collectFiles(rows *sql.Rows) ([]domain.FileNode, error) {
	defer rows.Close()

	var nodes []domain.FileNode
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node row: %w", err)
		}
		nodes = append(nodes, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate node rows: %w", err)
	}
	return nodes, nil
}

// UpdateFilePath rewrites the path of a single node.
func (q *Queries) UpdateFilePath(ctx context.Context, id int64, path string) error {
	if _, err := q.db.ExecContext(ctx, `UPDATE files SET path = ? WHERE id = ?`, path, id); err != nil {
		return fmt.Errorf("failed to update path of node %d: %w", id, err)
	}
	return nil
}

// DeleteFile removes one node. Cells and repetitions follow through ON DELETE CASCADE.
func (q *Queries) DeleteFile(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete node %d: %w", id, err)
	}
	return res.RowsAffected()
}

// DeleteSubtree removes the folder with the given id and every node whose path starts with root + "/".
func (q *Queries) DeleteSubtree(ctx context.Context, id int64, root string) (int64, error) {
	prefix := root + "/"
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM files WHERE id = ? OR substr(path, 1, length(?)) = ?`, id, prefix, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to delete subtree %s: %w", root, err)
	}
	return res.RowsAffected()
}
