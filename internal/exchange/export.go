package exchange

import (
	"context"
	"log/slog"
	"strings"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/knol"
	"github.com/conorfennell/knoldeck/internal/sequencer"
	"github.com/conorfennell/knoldeck/internal/storage"
)

// Service exports subtrees and imports documents.
type Service struct {
	db        *storage.DB
	cells     *sequencer.SQLSequencer
	sanitizer *Sanitizer
}

func NewService(db *storage.DB, cells *sequencer.SQLSequencer) *Service {
	return &Service{db: db, cells: cells, sanitizer: NewSanitizer()}
}

// Export returns the document for the file or folder with the given id.
func (s *Service) Export(ctx context.Context, id int64) (ExportedItem, error) {
	var item ExportedItem
	err := s.db.InTx(ctx, func(q *storage.Queries) error {
		root, err := q.GetFile(ctx, id)
		if err != nil {
			return err
		}
		if root == nil {
			return domain.NotFound("file", id)
		}

		nodes := []domain.FileNode{*root}
		if root.IsFolder {
			descendants, err := q.ListDescendants(ctx, root.Path)
			if err != nil {
				return err
			}
			nodes = append(nodes, descendants...)
		}

		var fileIDs []int64
		for _, n := range nodes {
			if !n.IsFolder {
				fileIDs = append(fileIDs, n.ID)
			}
		}
		cells, err := q.ListCellsForFiles(ctx, fileIDs)
		if err != nil {
			return err
		}

		item = buildTree(*root, nodes, cells)
		return nil
	})
	if err != nil {
		return ExportedItem{}, domain.Persistence("export", err)
	}

	files, folders, cells := item.Count()
	slog.Info("exported", "root", item.Path, "files", files, "folders", folders, "cells", cells)
	return item, nil
}

// buildTree assembles the document. nodes must include root; cells must be ordered by
// file and index, which ListCellsForFiles guarantees.
func buildTree(root domain.FileNode, nodes []domain.FileNode, cells []domain.Cell) ExportedItem {
	strip := ""
	if parent := knol.ParentPath(root.Path); parent != "" {
		strip = parent + knol.Separator
	}

	cellsByFile := make(map[int64][]ExportedCell)
	for _, c := range cells {
		cellsByFile[c.FileID] = append(cellsByFile[c.FileID], ExportedCell{Content: c.Content, CellType: c.CellType})
	}

	// Files and folders may share a path, so children are keyed by the parent folder path only.
	childrenOf := make(map[string][]domain.FileNode)
	for _, n := range nodes {
		if n.ID == root.ID {
			continue
		}
		parent := knol.ParentPath(n.Path)
		childrenOf[parent] = append(childrenOf[parent], n)
	}

	var build func(n domain.FileNode) ExportedItem
	build = func(n domain.FileNode) ExportedItem {
		it := ExportedItem{Path: strings.TrimPrefix(n.Path, strip)}
		if !n.IsFolder {
			it.ItemType = ItemFile
			it.Cells = cellsByFile[n.ID]
			return it
		}
		it.ItemType = ItemFolder
		for _, c := range childrenOf[n.Path] {
			it.Children = append(it.Children, build(c))
		}
		return it
	}
	return build(root)
}
