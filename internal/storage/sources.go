package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SourceKind tells the sync job how to materialize a source on disk.
type SourceKind string

const (
	SourceLocal SourceKind = "local"
	SourceGit   SourceKind = "git"
)

// Source is a markdown card source, either a local directory or a git URL.
// Name is the folder under "sources/" that receives its files.
type Source struct {
	ID         int64
	Kind       SourceKind
	Location   string
	Name       string
	LastSynced *time.Time
}

func scanSource(row interface{ Scan(...any) error }) (Source, error) {
	var s Source
	var kind string
	var last sql.NullString
	if err := row.Scan(&s.ID, &kind, &s.Location, &s.Name, &last); err != nil {
		return s, err
	}
	s.Kind = SourceKind(kind)
	if last.Valid {
		t, err := parseTime(last.String)
		if err != nil {
			return s, fmt.Errorf("bad last_synced time %q: %w", last.String, err)
		}
		s.LastSynced = &t
	}
	return s, nil
}

// InsertSource registers a new source and returns its ID.
func (q *Queries) InsertSource(ctx context.Context, kind SourceKind, location, name string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO sources (kind, location, name) VALUES (?, ?, ?)`, string(kind), location, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", location, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", location, err)
	}
	return id, nil
}

// FindSourceByLocation retrieves a source by its path or URL, or nil if there is none.
func (q *Queries) FindSourceByLocation(ctx context.Context, location string) (*Source, error) {
	s, err := scanSource(q.db.QueryRowContext(ctx,
		`SELECT id, kind, location, name, last_synced FROM sources WHERE location = ?`, location))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find source by location %s: %w", location, err)
	}
	return &s, nil
}

// ListSources retrieves all registered sources.
func (q *Queries) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, kind, location, name, last_synced FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate source rows: %w", err)
	}
	return sources, nil
}

// MarkSourceSynced records when a source was last reconciled.
func (q *Queries) MarkSourceSynced(ctx context.Context, id int64, at time.Time) error {
	if _, err := q.db.ExecContext(ctx, `UPDATE sources SET last_synced = ? WHERE id = ?`, formatTime(at), id); err != nil {
		return fmt.Errorf("failed to update last synced for source ID %d: %w", id, err)
	}
	return nil
}
