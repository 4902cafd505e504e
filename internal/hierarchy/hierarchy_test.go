package hierarchy

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/testutil"
)

func newStore(t *testing.T) *SQLStore {
	t.Helper()
	return NewSQLStore(testutil.NewTestDB(t))
}

// snapshot renders the tree as "path" for files and "path/" for folders, sorted.
func snapshot(t *testing.T, s *SQLStore) []string {
	t.Helper()
	nodes, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.IsFolder {
			out = append(out, n.Path+"/")
		} else {
			out = append(out, n.Path)
		}
	}
	sort.Strings(out)
	return out
}

func assertTree(t *testing.T, s *SQLStore, want ...string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	sort.Strings(want)
	if got := snapshot(t, s); !reflect.DeepEqual(got, want) {
		t.Errorf("tree = %v, want %v", got, want)
	}
}

func mustCreateFile(t *testing.T, s *SQLStore, path string) int64 {
	t.Helper()
	id, err := s.CreateFile(context.Background(), path)
	if err != nil {
		t.Fatalf("CreateFile(%q) error = %v", path, err)
	}
	return id
}

func folderID(t *testing.T, s *SQLStore, path string) int64 {
	t.Helper()
	nodes, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, n := range nodes {
		if n.IsFolder && n.Path == path {
			return n.ID
		}
	}
	t.Fatalf("folder %q not found", path)
	return 0
}

func mustCreateFolder(t *testing.T, s *SQLStore, path string) int64 {
	t.Helper()
	id, err := s.CreateFolder(context.Background(), path)
	if err != nil {
		t.Fatalf("CreateFolder(%q) error = %v", path, err)
	}
	return id
}

func TestCreateFile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing ancestors without duplicating existing ones", func(t *testing.T) {
		s := newStore(t)
		mustCreateFolder(t, s, "a")
		mustCreateFile(t, s, "a/b/file")
		assertTree(t, s, "a/", "a/b/", "a/b/file")
	})

	t.Run("trims surrounding separators", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFile(t, s, "  /notes/today/ ")
		n, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if n.Path != "notes/today" || n.IsFolder {
			t.Errorf("Get() = %+v", n)
		}
	})

	t.Run("rejects blank paths", func(t *testing.T) {
		s := newStore(t)
		for _, p := range []string{"", "   ", "///"} {
			if _, err := s.CreateFile(ctx, p); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("CreateFile(%q) error = %v, want validation error", p, err)
			}
		}
		if _, err := s.CreateFile(ctx, "a//b"); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("CreateFile(a//b) error = %v, want validation error", err)
		}
		assertTree(t, s)
	})

	t.Run("fails when the file exists", func(t *testing.T) {
		s := newStore(t)
		mustCreateFile(t, s, "x/f")
		if _, err := s.CreateFile(ctx, "x/f"); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("CreateFile() error = %v, want already exists", err)
		}
		assertTree(t, s, "x/", "x/f")
	})
}

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate folder fails and leaves rows alone", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFolder(t, s, "a")
		if _, err := s.CreateFolder(ctx, "a"); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("CreateFolder() error = %v, want already exists", err)
		}
		assertTree(t, s, "a/")
		n, _ := s.Get(ctx, id)
		if n.Path != "a" {
			t.Errorf("existing folder changed: %+v", n)
		}
	})

	t.Run("returns the id of the leaf folder", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFolder(t, s, "p/q/r")
		n, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if n.Path != "p/q/r" || !n.IsFolder {
			t.Errorf("Get() = %+v", n)
		}
		assertTree(t, s, "p/", "p/q/", "p/q/r/")
	})

	t.Run("file and folder may share a path", func(t *testing.T) {
		s := newStore(t)
		mustCreateFile(t, s, "same")
		mustCreateFolder(t, s, "same")
		assertTree(t, s, "same", "same/")
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("delete folder removes the whole subtree only", func(t *testing.T) {
		s := newStore(t)
		folder := mustCreateFolder(t, s, "x/y")
		mustCreateFile(t, s, "x/y/f")
		mustCreateFile(t, s, "x/y/z/g")
		mustCreateFile(t, s, "x/yz")

		if err := s.DeleteFolder(ctx, folder); err != nil {
			t.Fatalf("DeleteFolder() error = %v", err)
		}
		assertTree(t, s, "x/", "x/yz")
	})

	t.Run("delete file", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFile(t, s, "f")
		if err := s.DeleteFile(ctx, id); err != nil {
			t.Fatalf("DeleteFile() error = %v", err)
		}
		assertTree(t, s)
	})

	t.Run("missing ids are reported", func(t *testing.T) {
		s := newStore(t)
		folder := mustCreateFolder(t, s, "d")
		if err := s.DeleteFile(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("DeleteFile(42) error = %v, want not found", err)
		}
		if err := s.DeleteFile(ctx, folder); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("DeleteFile(folder) error = %v, want not found", err)
		}
		if err := s.DeleteFolder(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("DeleteFolder(42) error = %v, want not found", err)
		}
	})
}

func TestMoveFile(t *testing.T) {
	ctx := context.Background()

	t.Run("moves into a folder and back to the root", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFile(t, s, "f")
		dest := mustCreateFolder(t, s, "a/b")

		if err := s.MoveFile(ctx, id, dest); err != nil {
			t.Fatalf("MoveFile() error = %v", err)
		}
		assertTree(t, s, "a/", "a/b/", "a/b/f")

		if err := s.MoveFile(ctx, id, domain.RootFolderID); err != nil {
			t.Fatalf("MoveFile(root) error = %v", err)
		}
		assertTree(t, s, "a/", "a/b/", "f")
	})

	t.Run("same parent is a no-op", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFile(t, s, "a/f")
		mustCreateFolder(t, s, "other")
		if err := s.MoveFile(ctx, id, folderID(t, s, "a")); err != nil {
			t.Fatalf("MoveFile() error = %v", err)
		}
		assertTree(t, s, "a/", "a/f", "other/")
	})

	t.Run("collision fails", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFile(t, s, "f")
		mustCreateFile(t, s, "a/f")
		dest := mustCreateFolder(t, s, "b")
		if err := s.MoveFile(ctx, id, dest); err != nil {
			t.Fatalf("MoveFile(b) error = %v", err)
		}

		if err := s.MoveFile(ctx, id, folderID(t, s, "a")); !errors.Is(err, domain.ErrNameCollision) {
			t.Fatalf("MoveFile() error = %v, want name collision", err)
		}
		assertTree(t, s, "a/", "a/f", "b/", "b/f")
	})

	t.Run("destination must be a folder", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFile(t, s, "f")
		other := mustCreateFile(t, s, "g")
		if err := s.MoveFile(ctx, id, other); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("MoveFile(onto file) error = %v, want not found", err)
		}
	})
}

func TestMoveFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites descendants", func(t *testing.T) {
		s := newStore(t)
		src := mustCreateFolder(t, s, "x/y")
		mustCreateFile(t, s, "x/y/f")
		mustCreateFile(t, s, "x/y/g/h")
		dest := mustCreateFolder(t, s, "d")

		if err := s.MoveFolder(ctx, src, dest); err != nil {
			t.Fatalf("MoveFolder() error = %v", err)
		}
		assertTree(t, s, "x/", "d/", "d/y/", "d/y/f", "d/y/g/", "d/y/g/h")
	})

	t.Run("to the root", func(t *testing.T) {
		s := newStore(t)
		src := mustCreateFolder(t, s, "x/y")
		mustCreateFile(t, s, "x/y/f")
		if err := s.MoveFolder(ctx, src, domain.RootFolderID); err != nil {
			t.Fatalf("MoveFolder() error = %v", err)
		}
		assertTree(t, s, "x/", "y/", "y/f")
	})

	t.Run("into itself or a descendant is rejected", func(t *testing.T) {
		s := newStore(t)
		src := mustCreateFolder(t, s, "f")
		inner := mustCreateFolder(t, s, "f/a/b")
		mustCreateFile(t, s, "f/a/note")
		before := snapshot(t, s)

		for _, dest := range []int64{src, inner} {
			err := s.MoveFolder(ctx, src, dest)
			if !errors.Is(err, domain.ErrInvalidMove) {
				t.Fatalf("MoveFolder(%d) error = %v, want invalid move", dest, err)
			}
			if err.Error() != "cannot move into an inner folder" {
				t.Errorf("message = %q", err.Error())
			}
		}
		assertTree(t, s, before...)
	})

	t.Run("same parent is a no-op", func(t *testing.T) {
		s := newStore(t)
		src := mustCreateFolder(t, s, "p/c")
		if err := s.MoveFolder(ctx, src, folderID(t, s, "p")); err != nil {
			t.Fatalf("MoveFolder() error = %v", err)
		}
		assertTree(t, s, "p/", "p/c/")
	})

	t.Run("collision fails without writes", func(t *testing.T) {
		s := newStore(t)
		src := mustCreateFolder(t, s, "a/n")
		mustCreateFile(t, s, "a/n/f")
		mustCreateFolder(t, s, "b/n")
		before := snapshot(t, s)
		if err := s.MoveFolder(ctx, src, folderID(t, s, "b")); !errors.Is(err, domain.ErrNameCollision) {
			t.Fatalf("MoveFolder() error = %v, want name collision", err)
		}
		assertTree(t, s, before...)
	})
}

func TestRename(t *testing.T) {
	ctx := context.Background()

	t.Run("folder rename cascades to descendants", func(t *testing.T) {
		s := newStore(t)
		y := mustCreateFolder(t, s, "x/y")
		mustCreateFile(t, s, "x/y/f")
		mustCreateFile(t, s, "x/y/deep/g")
		mustCreateFile(t, s, "x/yy")

		if err := s.RenameFolder(ctx, y, "z"); err != nil {
			t.Fatalf("RenameFolder() error = %v", err)
		}
		assertTree(t, s, "x/", "x/z/", "x/z/f", "x/z/deep/", "x/z/deep/g", "x/yy")
	})

	t.Run("folder rename with separators creates new ancestors", func(t *testing.T) {
		s := newStore(t)
		y := mustCreateFolder(t, s, "x/y")
		mustCreateFile(t, s, "x/y/f")

		if err := s.RenameFolder(ctx, y, "new/inner"); err != nil {
			t.Fatalf("RenameFolder() error = %v", err)
		}
		assertTree(t, s, "x/", "x/new/", "x/new/inner/", "x/new/inner/f")
	})

	t.Run("folder rename into its own subtree keeps every ancestor", func(t *testing.T) {
		s := newStore(t)
		a := mustCreateFolder(t, s, "a")
		mustCreateFile(t, s, "a/c/f")

		if err := s.RenameFolder(ctx, a, "a/c/d"); err != nil {
			t.Fatalf("RenameFolder() error = %v", err)
		}
		assertTree(t, s, "a/", "a/c/", "a/c/d/", "a/c/d/c/", "a/c/d/c/f")
	})

	t.Run("folder rename collision", func(t *testing.T) {
		s := newStore(t)
		y := mustCreateFolder(t, s, "x/y")
		mustCreateFolder(t, s, "x/z")
		if err := s.RenameFolder(ctx, y, "z"); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("RenameFolder() error = %v, want already exists", err)
		}
	})

	t.Run("file rename", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFile(t, s, "dir/old")
		if err := s.RenameFile(ctx, id, " /new/ "); err != nil {
			t.Fatalf("RenameFile() error = %v", err)
		}
		assertTree(t, s, "dir/", "dir/new")

		if err := s.RenameFile(ctx, id, "sub/leaf"); err != nil {
			t.Fatalf("RenameFile() error = %v", err)
		}
		assertTree(t, s, "dir/", "dir/sub/", "dir/sub/leaf")
	})

	t.Run("file rename collision and unchanged name", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFile(t, s, "a")
		mustCreateFile(t, s, "b")
		if err := s.RenameFile(ctx, id, "b"); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("RenameFile() error = %v, want already exists", err)
		}
		if err := s.RenameFile(ctx, id, "a"); err != nil {
			t.Fatalf("RenameFile(same) error = %v", err)
		}
		assertTree(t, s, "a", "b")
	})

	t.Run("empty names are rejected", func(t *testing.T) {
		s := newStore(t)
		id := mustCreateFile(t, s, "a")
		folder := mustCreateFolder(t, s, "d")
		if err := s.RenameFile(ctx, id, " / "); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("RenameFile() error = %v, want validation", err)
		}
		if err := s.RenameFolder(ctx, folder, ""); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("RenameFolder() error = %v, want validation", err)
		}
	})
}
