package sync

import (
	"context"
	"errors"
	"path"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/parser"
	"github.com/conorfennell/knoldeck/internal/repetition"
	"github.com/conorfennell/knoldeck/internal/sequencer"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/testutil"
)

func newSyncer(t *testing.T) (*Syncer, *storage.DB, *repetition.SQLLifecycle) {
	t.Helper()
	db := testutil.NewTestDB(t)
	clk := testutil.FixedClock()
	life := repetition.NewSQLLifecycle(db, clk)
	return NewSyncer(db, sequencer.NewSQLSequencer(db, life), clk, t.TempDir()), db, life
}

func cellsAt(t *testing.T, db *storage.DB, p string) []domain.Cell {
	t.Helper()
	ctx := context.Background()
	f, err := db.Queries().FindFileByPath(ctx, p, false)
	if err != nil {
		t.Fatalf("FindFileByPath(%q) error = %v", p, err)
	}
	if f == nil {
		return nil
	}
	cells, err := db.Queries().ListCells(ctx, f.ID)
	if err != nil {
		t.Fatalf("ListCells() error = %v", err)
	}
	return cells
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	s, db, life := newSyncer(t)

	src, err := s.AddSource(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("AddSource() error = %v", err)
	}
	base := path.Join(RootFolder, src.Name)

	first := fstest.MapFS{
		"lang/go.md":      {Data: []byte("Q: What is Go?\nA: A language\n---\nQ: Who made it?\nA: **Google**\n")},
		"top.md":          {Data: []byte("Q: Top?\nA: Yes\nC: context line\n")},
		"notes.txt":       {Data: []byte("Q: ignored\nA: ignored\n")},
		".hidden/skip.md": {Data: []byte("Q: hidden\nA: hidden\n")},
	}

	res, err := s.reconcile(ctx, src, first)
	if err != nil {
		t.Fatalf("reconcile() error = %v", err)
	}
	if res.Files != 2 || res.Added != 3 || res.Removed != 0 {
		t.Errorf("first result = %+v", res)
	}

	goCells := cellsAt(t, db, base+"/lang/go")
	if len(goCells) != 2 {
		t.Fatalf("lang/go has %d cells, want 2", len(goCells))
	}
	wantFirst := `{"question":"<p>What is Go?</p>","answer":"<p>A language</p>"}`
	if goCells[0].Content != wantFirst || goCells[0].CellType != domain.CellFlashCard {
		t.Errorf("first cell = %+v, want content %s", goCells[0], wantFirst)
	}
	if want := `{"question":"<p>Who made it?</p>","answer":"<p><strong>Google</strong></p>"}`; goCells[1].Content != want {
		t.Errorf("second cell content = %s, want %s", goCells[1].Content, want)
	}
	if top := cellsAt(t, db, base+"/top"); len(top) != 1 {
		t.Errorf("top has %d cells, want 1", len(top))
	} else if want := `{"question":"<p>Top?</p>","answer":"<p>Yes</p><aside class=\"context\"><p>context line</p></aside>"}`; top[0].Content != want {
		t.Errorf("top content = %s, want %s", top[0].Content, want)
	}

	// Review the surviving card so its history can be checked after the next sync.
	units, err := db.Queries().ListUnitsForCell(ctx, goCells[0].ID)
	if err != nil || len(units) != 1 {
		t.Fatalf("ListUnitsForCell() = %v, %v", units, err)
	}
	reviewed := units[0]
	reviewed.Reps = 3
	reviewed.State = domain.StateReview
	if err := life.RegisterReview(ctx, reviewed, domain.RatingGood, 5); err != nil {
		t.Fatalf("RegisterReview() error = %v", err)
	}

	second := fstest.MapFS{
		"lang/go.md": {Data: []byte("Q: What is Go?\nA: A language\n---\nQ: Who made it?\nA: Google engineers\n")},
	}
	res, err = s.reconcile(ctx, src, second)
	if err != nil {
		t.Fatalf("reconcile() error = %v", err)
	}
	if res.Files != 1 || res.Added != 1 || res.Removed != 1 || res.DeletedFiles != 1 {
		t.Errorf("second result = %+v", res)
	}

	goCells = cellsAt(t, db, base+"/lang/go")
	if len(goCells) != 2 || goCells[0].Index != 0 || goCells[1].Index != 1 {
		t.Fatalf("lang/go cells = %+v", goCells)
	}
	if goCells[0].Content != wantFirst {
		t.Errorf("kept cell content = %s", goCells[0].Content)
	}
	kept, err := life.GetUnit(ctx, reviewed.ID)
	if err != nil {
		t.Fatalf("GetUnit() error = %v", err)
	}
	if kept.Reps != 3 || kept.State != domain.StateReview {
		t.Errorf("kept unit lost its history: %+v", kept)
	}
	if cellsAt(t, db, base+"/top") != nil {
		t.Error("top was not deleted")
	}

	sources, err := s.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources() error = %v", err)
	}
	if len(sources) != 1 || sources[0].LastSynced == nil {
		t.Errorf("sources = %+v, want one synced source", sources)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, db, _ := newSyncer(t)
	src, err := s.AddSource(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("AddSource() error = %v", err)
	}
	fsys := fstest.MapFS{
		"deck.md": {Data: []byte("Q: same\nA: one\n---\nQ: same\nA: one\n")},
	}

	for range 2 {
		if _, err := s.reconcile(ctx, src, fsys); err != nil {
			t.Fatalf("reconcile() error = %v", err)
		}
	}
	if cells := cellsAt(t, db, path.Join(RootFolder, src.Name, "deck")); len(cells) != 2 {
		t.Errorf("deck has %d cells, want 2 duplicates kept", len(cells))
	}
}

func TestReconcileKeepsUnreadableDeck(t *testing.T) {
	ctx := context.Background()
	s, db, _ := newSyncer(t)
	src, err := s.AddSource(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("AddSource() error = %v", err)
	}
	deckPath := path.Join(RootFolder, src.Name, "deck")

	if _, err := s.reconcile(ctx, src, fstest.MapFS{
		"deck.md": {Data: []byte("Q: kept?\nA: yes\n")},
	}); err != nil {
		t.Fatalf("reconcile() error = %v", err)
	}
	before := cellsAt(t, db, deckPath)
	if len(before) != 1 {
		t.Fatalf("deck has %d cells, want 1", len(before))
	}

	tooLong := "Q: kept?\nA: yes\n---\nQ: huge\nA: " + strings.Repeat("x", parser.MaxLineSize+1) + "\n"
	res, err := s.reconcile(ctx, src, fstest.MapFS{
		"deck.md": {Data: []byte(tooLong)},
	})
	if err != nil {
		t.Fatalf("reconcile() error = %v", err)
	}
	if len(res.ParseErrors) != 1 || res.DeletedFiles != 0 || res.Removed != 0 {
		t.Errorf("result = %+v, want one parse error and nothing deleted", res)
	}

	after := cellsAt(t, db, deckPath)
	if len(after) != 1 || after[0].ID != before[0].ID {
		t.Errorf("deck cells after failed read = %+v, want %+v", after, before)
	}
}

func TestAddSource(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSyncer(t)

	dir := t.TempDir()
	if _, err := s.AddSource(ctx, dir); err != nil {
		t.Fatalf("AddSource() error = %v", err)
	}
	if _, err := s.AddSource(ctx, dir); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate AddSource() error = %v, want already exists", err)
	}
	if _, err := s.AddSource(ctx, dir+"/missing"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("AddSource(missing) error = %v, want validation", err)
	}
	if _, err := s.AddSource(ctx, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("AddSource(blank) error = %v, want validation", err)
	}

	git, err := s.AddSource(ctx, "https://github.com/conorfennell/cards.git")
	if err != nil {
		t.Fatalf("AddSource(git) error = %v", err)
	}
	if git.Kind != storage.SourceGit || git.Name != "cards" {
		t.Errorf("git source = %+v", git)
	}
}
