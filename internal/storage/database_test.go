package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/testutil"
)

func TestDSN(t *testing.T) {
	got := storage.DSN("/tmp/k.db", 2*time.Second)
	want := "/tmp/k.db?_pragma=foreign_keys%281%29&_pragma=busy_timeout%282000%29&_pragma=journal_mode%28WAL%29"
	if got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestInTx(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	t.Run("rolls back when fn fails", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.InTx(ctx, func(q *storage.Queries) error {
			if _, err := q.InsertFile(ctx, "rolled-back", false); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("InTx() error = %v, want boom", err)
		}

		f, err := db.Queries().FindFileByPath(ctx, "rolled-back", false)
		if err != nil {
			t.Fatalf("FindFileByPath() error = %v", err)
		}
		if f != nil {
			t.Errorf("expected no file after rollback, got %+v", f)
		}
	})

	t.Run("commits when fn succeeds", func(t *testing.T) {
		err := db.InTx(ctx, func(q *storage.Queries) error {
			_, err := q.InsertFile(ctx, "committed", false)
			return err
		})
		if err != nil {
			t.Fatalf("InTx() error = %v", err)
		}
		f, err := db.Queries().FindFileByPath(ctx, "committed", false)
		if err != nil || f == nil {
			t.Fatalf("FindFileByPath() = %v, %v", f, err)
		}
	})
}

func TestFiles(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	q := db.Queries()

	mustInsert := func(path string, folder bool) int64 {
		t.Helper()
		id, err := q.InsertFile(ctx, path, folder)
		if err != nil {
			t.Fatalf("InsertFile(%s) error = %v", path, err)
		}
		return id
	}

	xy := mustInsert("x/y", true)
	mustInsert("x/y/f", false)
	mustInsert("x/y/g/h", false)
	mustInsert("x/yz", false)

	t.Run("path is unique per kind", func(t *testing.T) {
		if _, err := q.InsertFile(ctx, "x/y", true); err == nil {
			t.Error("expected duplicate folder insert to fail")
		}
		if _, err := q.InsertFile(ctx, "x/y", false); err != nil {
			t.Errorf("file sharing a folder path should be accepted, got %v", err)
		}
	})

	t.Run("descendants use the separator boundary", func(t *testing.T) {
		nodes, err := q.ListDescendants(ctx, "x/y")
		if err != nil {
			t.Fatalf("ListDescendants() error = %v", err)
		}
		if len(nodes) != 2 || nodes[0].Path != "x/y/f" || nodes[1].Path != "x/y/g/h" {
			t.Errorf("ListDescendants() = %+v", nodes)
		}
	})

	t.Run("get returns nil for a missing id", func(t *testing.T) {
		f, err := q.GetFile(ctx, 9999)
		if err != nil || f != nil {
			t.Errorf("GetFile(9999) = %v, %v", f, err)
		}
	})

	t.Run("delete subtree keeps siblings with a shared prefix", func(t *testing.T) {
		n, err := q.DeleteSubtree(ctx, xy, "x/y")
		if err != nil {
			t.Fatalf("DeleteSubtree() error = %v", err)
		}
		if n != 3 {
			t.Errorf("DeleteSubtree() removed %d rows, want 3", n)
		}
		if f, _ := q.FindFileByPath(ctx, "x/yz", false); f == nil {
			t.Error("x/yz should survive deleting x/y")
		}
	})
}

func TestCascade(t *testing.T) {
	ctx := context.Background()
	clk := testutil.FixedClock()
	db := testutil.NewTestDB(t)
	q := db.Queries()

	fileID, err := q.InsertFile(ctx, "deck", false)
	if err != nil {
		t.Fatalf("InsertFile() error = %v", err)
	}
	cellID, err := q.InsertCell(ctx, domain.Cell{FileID: fileID, Index: 0, CellType: domain.CellFlashCard})
	if err != nil {
		t.Fatalf("InsertCell() error = %v", err)
	}
	if _, err := q.InsertUnit(ctx, domain.NewUnit(fileID, cellID, nil, clk.Now())); err != nil {
		t.Fatalf("InsertUnit() error = %v", err)
	}

	if _, err := q.DeleteFile(ctx, fileID); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}

	if c, _ := q.GetCell(ctx, cellID); c != nil {
		t.Errorf("cell survived its file: %+v", c)
	}
	units, err := q.ListUnitsForCell(ctx, cellID)
	if err != nil {
		t.Fatalf("ListUnitsForCell() error = %v", err)
	}
	if len(units) != 0 {
		t.Errorf("repetitions survived their file: %+v", units)
	}
}

func TestUnits(t *testing.T) {
	ctx := context.Background()
	clk := testutil.FixedClock()
	db := testutil.NewTestDB(t)
	q := db.Queries()

	fileID, _ := q.InsertFile(ctx, "deck", false)
	cellID, _ := q.InsertCell(ctx, domain.Cell{FileID: fileID, Index: 0, CellType: domain.CellCloze})

	key := "3"
	id, err := q.InsertUnit(ctx, domain.NewUnit(fileID, cellID, &key, clk.Now()))
	if err != nil {
		t.Fatalf("InsertUnit() error = %v", err)
	}

	t.Run("round trips times and the cloze key", func(t *testing.T) {
		u, err := q.GetUnit(ctx, id)
		if err != nil || u == nil {
			t.Fatalf("GetUnit() = %v, %v", u, err)
		}
		if !u.Due.Equal(clk.Now()) || !u.LastReview.Equal(clk.Now()) {
			t.Errorf("times = %v / %v, want %v", u.Due, u.LastReview, clk.Now())
		}
		if u.Key() != "3" || u.State != domain.StateNew {
			t.Errorf("unit = %+v", u)
		}
	})

	t.Run("the same key cannot be stored twice for a cell", func(t *testing.T) {
		if _, err := q.InsertUnit(ctx, domain.NewUnit(fileID, cellID, &key, clk.Now())); err == nil {
			t.Error("expected duplicate unit insert to fail")
		}
	})

	t.Run("due counts respect now", func(t *testing.T) {
		counts, err := q.CountDueByState(ctx, fileID, clk.Now().Add(-time.Second))
		if err != nil {
			t.Fatalf("CountDueByState() error = %v", err)
		}
		if counts.Total() != 0 {
			t.Errorf("counts before due = %+v", counts)
		}
		counts, err = q.CountDueByState(ctx, fileID, clk.Now())
		if err != nil {
			t.Fatalf("CountDueByState() error = %v", err)
		}
		if counts.New != 1 {
			t.Errorf("counts at due = %+v", counts)
		}
	})
}
