package exchange

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/hierarchy"
	"github.com/conorfennell/knoldeck/internal/knol"
	"github.com/conorfennell/knoldeck/internal/storage"
)

// Import recreates the document under the folder destinationID (RootFolderID for the top).
// Everything is written in one transaction: a failure anywhere leaves the store unchanged.
// Cell content is sanitized and every schedulable cell starts with fresh units.
// It returns the id of the imported root.
func (s *Service) Import(ctx context.Context, item ExportedItem, destinationID int64) (int64, error) {
	if err := validateItem(item, ""); err != nil {
		return 0, err
	}

	batch := uuid.NewString()
	log := slog.With("import_id", batch)

	var rootID int64
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		base := ""
		if destinationID != domain.RootFolderID {
			dest, err := q.GetFile(ctx, destinationID)
			if err != nil {
				return err
			}
			if dest == nil || !dest.IsFolder {
				return domain.NotFound("folder", destinationID)
			}
			base = dest.Path
		}

		// The imported root must be new; everything under it is created fresh with it.
		rootPath := knol.Join(base, item.Path)
		existing, err := q.FindFileByPath(ctx, rootPath, item.ItemType == ItemFolder)
		if err != nil {
			return err
		}
		if existing != nil {
			kind := "file"
			if item.ItemType == ItemFolder {
				kind = "folder"
			}
			return domain.AlreadyExists(kind, rootPath)
		}

		rootID, err = s.importItem(ctx, q, base, item)
		return err
	})
	if err != nil {
		log.Warn("import failed", "error", err)
		return 0, domain.Persistence("import", err)
	}

	files, folders, cells := item.Count()
	log.Info("imported", "root_id", rootID, "files", files, "folders", folders, "cells", cells)
	return rootID, nil
}

func (s *Service) importItem(ctx context.Context, q *storage.Queries, base string, item ExportedItem) (int64, error) {
	path := knol.Join(base, item.Path)

	if item.ItemType == ItemFolder {
		id, err := hierarchy.EnsureFolder(ctx, q, path)
		if err != nil {
			return 0, err
		}
		for _, child := range item.Children {
			if _, err := s.importItem(ctx, q, base, child); err != nil {
				return 0, err
			}
		}
		return id, nil
	}

	id, err := hierarchy.CreateFileIn(ctx, q, path)
	if err != nil {
		return 0, err
	}
	for i, c := range item.Cells {
		content, err := s.sanitizer.Cell(c.CellType, c.Content)
		if err != nil {
			return 0, &domain.ValidationError{Field: "cells", Message: fmt.Sprintf("%s cell %d: %v", path, i, err)}
		}
		if _, err := s.cells.CreateCellIn(ctx, q, id, content, c.CellType, i); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// validateItem checks the whole document before anything is written. Every child path
// must sit directly under its parent's path.
func validateItem(item ExportedItem, parent string) error {
	path := knol.TrimPath(item.Path)
	if path == "" || path != item.Path {
		return &domain.ValidationError{Field: "path", Message: fmt.Sprintf("invalid path %q", item.Path)}
	}
	if knol.ParentPath(path) != parent {
		return &domain.ValidationError{Field: "path", Message: fmt.Sprintf("%q is not directly under %q", path, parent)}
	}

	switch item.ItemType {
	case ItemFile:
		if len(item.Children) > 0 {
			return &domain.ValidationError{Field: "children", Message: fmt.Sprintf("file %q cannot have children", path)}
		}
		for _, c := range item.Cells {
			if _, err := domain.ParseCellType(string(c.CellType)); err != nil {
				return err
			}
		}
	case ItemFolder:
		if len(item.Cells) > 0 {
			return &domain.ValidationError{Field: "cells", Message: fmt.Sprintf("folder %q cannot have cells", path)}
		}
		for _, child := range item.Children {
			if err := validateItem(child, path); err != nil {
				return err
			}
		}
	default:
		return &domain.ValidationError{Field: "itemType", Message: fmt.Sprintf("unknown item type %q", item.ItemType)}
	}
	return nil
}
