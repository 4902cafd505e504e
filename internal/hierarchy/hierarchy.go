// Package hierarchy stores files and folders as materialized paths and keeps every
// descendant path consistent when a folder is moved, renamed or deleted.
package hierarchy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/knol"
	"github.com/conorfennell/knoldeck/internal/storage"
)

//go:generate mockgen -destination=../web/mocks/mock_hierarchy.go -package=mocks github.com/conorfennell/knoldeck/internal/hierarchy Store

// Store manages the file/folder tree. Folder destination id 0 is the root.
type Store interface {
	List(ctx context.Context) ([]domain.FileNode, error)
	Get(ctx context.Context, id int64) (domain.FileNode, error)
	CreateFile(ctx context.Context, path string) (int64, error)
	CreateFolder(ctx context.Context, path string) (int64, error)
	DeleteFile(ctx context.Context, id int64) error
	DeleteFolder(ctx context.Context, id int64) error
	MoveFile(ctx context.Context, id, destinationFolderID int64) error
	MoveFolder(ctx context.Context, id, destinationFolderID int64) error
	RenameFile(ctx context.Context, id int64, newName string) error
	RenameFolder(ctx context.Context, id int64, newName string) error
}

// SQLStore implements Store on top of storage.DB. Every mutation is one transaction.
type SQLStore struct {
	db *storage.DB
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *storage.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) List(ctx context.Context) ([]domain.FileNode, error) {
	nodes, err := s.db.Queries().ListFiles(ctx)
	return nodes, domain.Persistence("list files", err)
}

func (s *SQLStore) Get(ctx context.Context, id int64) (domain.FileNode, error) {
	n, err := s.db.Queries().GetFile(ctx, id)
	if err != nil {
		return domain.FileNode{}, domain.Persistence("get file", err)
	}
	if n == nil {
		return domain.FileNode{}, domain.NotFound("node", id)
	}
	return *n, nil
}

func (s *SQLStore) CreateFile(ctx context.Context, path string) (int64, error) {
	p, err := cleanPath(path)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.InTx(ctx, func(q *storage.Queries) error {
		id, err = CreateFileIn(ctx, q, p)
		return err
	})
	if err != nil {
		return 0, domain.Persistence("create file", err)
	}
	slog.Debug("file created", "id", id, "path", p)
	return id, nil
}

func (s *SQLStore) CreateFolder(ctx context.Context, path string) (int64, error) {
	p, err := cleanPath(path)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.InTx(ctx, func(q *storage.Queries) error {
		existing, err := q.FindFileByPath(ctx, p, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.AlreadyExists("folder", p)
		}
		id, err = EnsureFolder(ctx, q, p)
		return err
	})
	if err != nil {
		return 0, domain.Persistence("create folder", err)
	}
	slog.Debug("folder created", "id", id, "path", p)
	return id, nil
}

func (s *SQLStore) DeleteFile(ctx context.Context, id int64) error {
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		if _, err := loadNode(ctx, q, id, false); err != nil {
			return err
		}
		_, err := q.DeleteFile(ctx, id)
		return err
	})
	return domain.Persistence("delete file", err)
}

func (s *SQLStore) DeleteFolder(ctx context.Context, id int64) error {
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		folder, err := loadNode(ctx, q, id, true)
		if err != nil {
			return err
		}
		n, err := q.DeleteSubtree(ctx, id, folder.Path)
		if err != nil {
			return err
		}
		slog.Debug("folder deleted", "id", id, "path", folder.Path, "nodes", n)
		return nil
	})
	return domain.Persistence("delete folder", err)
}

func (s *SQLStore) MoveFile(ctx context.Context, id, destinationFolderID int64) error {
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		file, err := loadNode(ctx, q, id, false)
		if err != nil {
			return err
		}
		dest, err := destinationPath(ctx, q, destinationFolderID)
		if err != nil {
			return err
		}
		if dest == knol.ParentPath(file.Path) {
			return nil
		}

		newPath := knol.Join(dest, knol.Basename(file.Path))
		existing, err := q.FindFileByPath(ctx, newPath, false)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.NameCollision("file", newPath)
		}
		return q.UpdateFilePath(ctx, id, newPath)
	})
	return domain.Persistence("move file", err)
}

func (s *SQLStore) MoveFolder(ctx context.Context, id, destinationFolderID int64) error {
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		folder, err := loadNode(ctx, q, id, true)
		if err != nil {
			return err
		}
		dest, err := destinationPath(ctx, q, destinationFolderID)
		if err != nil {
			return err
		}
		if knol.IsWithin(dest, folder.Path) {
			return domain.InvalidMove()
		}
		if dest == knol.ParentPath(folder.Path) {
			return nil
		}

		newPath := knol.Join(dest, knol.Basename(folder.Path))
		existing, err := q.FindFileByPath(ctx, newPath, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.NameCollision("folder", newPath)
		}
		return relocateFolder(ctx, q, *folder, newPath)
	})
	return domain.Persistence("move folder", err)
}

func (s *SQLStore) RenameFile(ctx context.Context, id int64, newName string) error {
	name, err := cleanName(newName)
	if err != nil {
		return err
	}

	err = s.db.InTx(ctx, func(q *storage.Queries) error {
		file, err := loadNode(ctx, q, id, false)
		if err != nil {
			return err
		}
		newPath := knol.WithRenamedBasename(file.Path, name)
		if newPath == file.Path {
			return nil
		}

		existing, err := q.FindFileByPath(ctx, newPath, false)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.AlreadyExists("file", newPath)
		}
		if err := ensureAncestors(ctx, q, newPath); err != nil {
			return err
		}
		return q.UpdateFilePath(ctx, id, newPath)
	})
	return domain.Persistence("rename file", err)
}

func (s *SQLStore) RenameFolder(ctx context.Context, id int64, newName string) error {
	name, err := cleanName(newName)
	if err != nil {
		return err
	}

	err = s.db.InTx(ctx, func(q *storage.Queries) error {
		folder, err := loadNode(ctx, q, id, true)
		if err != nil {
			return err
		}
		newPath := knol.WithRenamedBasename(folder.Path, name)
		if newPath == folder.Path {
			return nil
		}

		existing, err := q.FindFileByPath(ctx, newPath, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.AlreadyExists("folder", newPath)
		}
		return relocateFolder(ctx, q, *folder, newPath)
	})
	return domain.Persistence("rename folder", err)
}

// CreateFileIn creates the file at an already cleaned path, and any missing ancestor
// folders, using the caller's transaction.
func CreateFileIn(ctx context.Context, q *storage.Queries, path string) (int64, error) {
	existing, err := q.FindFileByPath(ctx, path, false)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, domain.AlreadyExists("file", path)
	}
	if err := ensureAncestors(ctx, q, path); err != nil {
		return 0, err
	}
	return q.InsertFile(ctx, path, false)
}

// EnsureFolder creates every missing folder along path, top down, and returns the id
// of the folder at path itself, whether it was created or already there.
func EnsureFolder(ctx context.Context, q *storage.Queries, path string) (int64, error) {
	if err := ensureAncestors(ctx, q, path); err != nil {
		return 0, err
	}
	existing, err := q.FindFileByPath(ctx, path, true)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}
	return q.InsertFile(ctx, path, true)
}

func ensureAncestors(ctx context.Context, q *storage.Queries, path string) error {
	for _, a := range knol.Ancestors(path) {
		existing, err := q.FindFileByPath(ctx, a, true)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := q.InsertFile(ctx, a, true); err != nil {
			return err
		}
	}
	return nil
}

// relocateFolder gives the folder newPath, rewrites every descendant by swapping the
// old prefix for the new one, then fills in missing ancestors of newPath. Descendants are
// read before anything is written.
func relocateFolder(ctx context.Context, q *storage.Queries, folder domain.FileNode, newPath string) error {
	descendants, err := q.ListDescendants(ctx, folder.Path)
	if err != nil {
		return err
	}
	if err := q.UpdateFilePath(ctx, folder.ID, newPath); err != nil {
		return err
	}
	for _, d := range descendants {
		if err := q.UpdateFilePath(ctx, d.ID, knol.Rebase(d.Path, folder.Path, newPath)); err != nil {
			return err
		}
	}
	// Ancestors last: newPath may lie under the old path, where a descendant that just
	// moved away used to stand in for one of them.
	if err := ensureAncestors(ctx, q, newPath); err != nil {
		return err
	}
	slog.Debug("folder relocated", "id", folder.ID, "from", folder.Path, "to", newPath, "descendants", len(descendants))
	return nil
}

func loadNode(ctx context.Context, q *storage.Queries, id int64, folder bool) (*domain.FileNode, error) {
	kind := "file"
	if folder {
		kind = "folder"
	}
	n, err := q.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil || n.IsFolder != folder {
		return nil, domain.NotFound(kind, id)
	}
	return n, nil
}

func destinationPath(ctx context.Context, q *storage.Queries, id int64) (string, error) {
	if id == domain.RootFolderID {
		return "", nil
	}
	dest, err := loadNode(ctx, q, id, true)
	if err != nil {
		return "", err
	}
	return dest.Path, nil
}

// cleanPath trims a user supplied path and rejects blank names or empty segments.
func cleanPath(path string) (string, error) {
	p := knol.TrimPath(path)
	if p == "" {
		return "", domain.EmptyName("path")
	}
	for _, seg := range strings.Split(p, knol.Separator) {
		if strings.TrimSpace(seg) == "" {
			return "", &domain.ValidationError{Field: "path", Message: "path contains an empty segment"}
		}
	}
	return p, nil
}

func cleanName(name string) (string, error) {
	if knol.TrimPath(name) == "" {
		return "", domain.EmptyName("newName")
	}
	return cleanPath(name)
}
