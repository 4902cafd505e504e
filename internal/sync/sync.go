// Package sync mirrors markdown card sources into the hierarchy. Every markdown file of
// a source becomes a file under sources/<name>/ holding one FlashCard cell per card.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/conorfennell/knoldeck/internal/clock"
	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/gitsource"
	"github.com/conorfennell/knoldeck/internal/hierarchy"
	"github.com/conorfennell/knoldeck/internal/knol"
	"github.com/conorfennell/knoldeck/internal/parser"
	"github.com/conorfennell/knoldeck/internal/sequencer"
	"github.com/conorfennell/knoldeck/internal/storage"
)

// RootFolder holds every synced source.
const RootFolder = "sources"

// Result summarizes one source reconciliation.
type Result struct {
	Source       string
	Files        int
	Added        int
	Removed      int
	DeletedFiles int
	ParseErrors  []error
}

// Syncer reconciles registered sources with the store.
type Syncer struct {
	db       *storage.DB
	cells    *sequencer.SQLSequencer
	clock    clock.Clock
	reposDir string
	md       goldmark.Markdown
}

func NewSyncer(db *storage.DB, cells *sequencer.SQLSequencer, c clock.Clock, reposDir string) *Syncer {
	return &Syncer{
		db:       db,
		cells:    cells,
		clock:    c,
		reposDir: reposDir,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// AddSource registers a local directory or a git URL. Local paths are stored absolute.
func (s *Syncer) AddSource(ctx context.Context, location string) (storage.Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return storage.Source{}, domain.EmptyName("location")
	}

	kind, name := storage.SourceGit, gitsource.RepoName(location)
	if !gitsource.IsRemote(location) {
		abs, err := filepath.Abs(location)
		if err != nil {
			return storage.Source{}, &domain.ValidationError{Field: "location", Message: err.Error()}
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return storage.Source{}, &domain.ValidationError{Field: "location", Message: fmt.Sprintf("not a directory: %s", abs)}
		}
		kind, location, name = storage.SourceLocal, abs, filepath.Base(abs)
	}
	name = knol.TrimPath(strings.ReplaceAll(name, knol.Separator, "-"))
	if name == "" {
		return storage.Source{}, domain.EmptyName("name")
	}

	var src storage.Source
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		existing, err := q.FindSourceByLocation(ctx, location)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.AlreadyExists("source", location)
		}
		id, err := q.InsertSource(ctx, kind, location, name)
		if err != nil {
			return err
		}
		src = storage.Source{ID: id, Kind: kind, Location: location, Name: name}
		return nil
	})
	if err != nil {
		return storage.Source{}, domain.Persistence("add source", err)
	}
	slog.Info("source added", "id", src.ID, "kind", src.Kind, "location", src.Location, "name", src.Name)
	return src, nil
}

// ListSources returns the registered sources.
func (s *Syncer) ListSources(ctx context.Context) ([]storage.Source, error) {
	sources, err := s.db.Queries().ListSources(ctx)
	return sources, domain.Persistence("list sources", err)
}

// SyncAll reconciles every source. A failing source is logged and skipped.
func (s *Syncer) SyncAll(ctx context.Context) ([]Result, error) {
	sources, err := s.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		slog.Info("no sources configured, add one with: knoldeck source add <path-or-url>")
		return nil, nil
	}

	var results []Result
	for _, src := range sources {
		res, err := s.SyncSource(ctx, src)
		if err != nil {
			slog.Error("sync failed", "source", src.Location, "error", err)
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// SyncSource fetches a git source if needed and reconciles its markdown files in one transaction.
func (s *Syncer) SyncSource(ctx context.Context, src storage.Source) (Result, error) {
	dir := src.Location
	if src.Kind == storage.SourceGit {
		local, err := gitsource.LocalPath(s.reposDir, src.Location)
		if err != nil {
			return Result{}, err
		}
		if err := gitsource.Sync(ctx, src.Location, local); err != nil {
			return Result{}, err
		}
		dir = local
	}

	res, err := s.reconcile(ctx, src, os.DirFS(dir))
	if err != nil {
		return Result{}, err
	}
	slog.Info("reconciliation complete",
		"source", src.Location,
		"files", res.Files,
		"added", res.Added,
		"removed", res.Removed,
		"deleted_files", res.DeletedFiles,
		"errors", len(res.ParseErrors),
	)
	return res, nil
}

// deck is the parsed state of one markdown file.
type deck struct {
	path     string
	contents []string
}

func (s *Syncer) reconcile(ctx context.Context, src storage.Source, fsys fs.FS) (Result, error) {
	res := Result{Source: src.Location}
	base := path.Join(RootFolder, src.Name)

	var decks []deck
	// Decks that failed to read keep their stored file untouched.
	skipped := make(map[string]bool)
	walkErr := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(path.Ext(p), ".md") {
			return nil
		}

		dk := deck{path: path.Join(base, strings.TrimSuffix(p, path.Ext(p)))}
		cards, err := parser.ParseFile(fsys, p)
		if err != nil {
			res.ParseErrors = append(res.ParseErrors, fmt.Errorf("parsing %s: %w", p, err))
			skipped[dk.path] = true
			return nil
		}
		for _, card := range cards {
			content, err := s.render(card)
			if err != nil {
				res.ParseErrors = append(res.ParseErrors, fmt.Errorf("rendering %s: %w", p, err))
				skipped[dk.path] = true
				return nil
			}
			dk.contents = append(dk.contents, content)
		}
		decks = append(decks, dk)
		return nil
	})
	if walkErr != nil {
		return res, fmt.Errorf("error walking %s: %w", src.Location, walkErr)
	}

	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		seen := make(map[string]bool, len(decks))
		for _, dk := range decks {
			seen[dk.path] = true
			added, removed, err := s.reconcileDeck(ctx, q, dk)
			if err != nil {
				return err
			}
			res.Files++
			res.Added += added
			res.Removed += removed
		}

		existing, err := q.ListDescendants(ctx, base)
		if err != nil {
			return err
		}
		for _, n := range existing {
			if n.IsFolder || seen[n.Path] || skipped[n.Path] {
				continue
			}
			slog.Info("orphaned file, deleting", "path", n.Path)
			if _, err := q.DeleteFile(ctx, n.ID); err != nil {
				return err
			}
			res.DeletedFiles++
		}
		return q.MarkSourceSynced(ctx, src.ID, s.clock.Now())
	})
	if err != nil {
		return res, domain.Persistence("sync source", err)
	}
	return res, nil
}

// reconcileDeck keeps cells whose content hash is still produced by the source, deletes
// the rest and appends new cards at the end. Kept cells keep their review history.
func (s *Syncer) reconcileDeck(ctx context.Context, q *storage.Queries, dk deck) (added, removed int, err error) {
	file, err := q.FindFileByPath(ctx, dk.path, false)
	if err != nil {
		return 0, 0, err
	}
	var fileID int64
	if file == nil {
		if fileID, err = hierarchy.CreateFileIn(ctx, q, dk.path); err != nil {
			return 0, 0, err
		}
	} else {
		fileID = file.ID
	}

	wanted := make(map[string]int, len(dk.contents))
	for _, c := range dk.contents {
		wanted[knol.Hash(c)]++
	}

	cells, err := q.ListCells(ctx, fileID)
	if err != nil {
		return 0, 0, err
	}
	for _, c := range cells {
		h := knol.Hash(c.Content)
		if c.CellType == domain.CellFlashCard && wanted[h] > 0 {
			wanted[h]--
			continue
		}
		if err := sequencer.DeleteCellIn(ctx, q, c.ID); err != nil {
			return 0, 0, err
		}
		removed++
	}

	n, err := q.CountCells(ctx, fileID)
	if err != nil {
		return 0, 0, err
	}
	for _, c := range dk.contents {
		h := knol.Hash(c)
		if wanted[h] == 0 {
			continue
		}
		wanted[h]--
		if _, err := s.cells.CreateCellIn(ctx, q, fileID, c, domain.CellFlashCard, n); err != nil {
			return 0, 0, err
		}
		n++
		added++
	}
	return added, removed, nil
}

// render turns a card into FlashCard cell content with both sides as HTML.
// The context, when present, follows the answer.
func (s *Syncer) render(card domain.Card) (string, error) {
	question, err := s.toHTML(card.Question)
	if err != nil {
		return "", err
	}
	answer, err := s.toHTML(card.Answer)
	if err != nil {
		return "", err
	}
	if card.Context != "" {
		ctxHTML, err := s.toHTML(card.Context)
		if err != nil {
			return "", err
		}
		answer += `<aside class="context">` + ctxHTML + `</aside>`
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(domain.FlashCard{Question: question, Answer: answer}); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (s *Syncer) toHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
