// Package exchange moves folder trees in and out of the store as a portable JSON document.
package exchange

import "github.com/conorfennell/knoldeck/internal/domain"

// ItemType tells files from folders in an export document.
type ItemType string

const (
	ItemFile   ItemType = "File"
	ItemFolder ItemType = "Folder"
)

// ExportedCell is a cell without its ids or position; position is its place in the list.
type ExportedCell struct {
	Content  string          `json:"content"`
	CellType domain.CellType `json:"cellType"`
}

// ExportedItem is one node of an export document. Paths are relative to the parent of the
// exported root, so the root's path is its own basename.
type ExportedItem struct {
	Path     string         `json:"path"`
	ItemType ItemType       `json:"itemType"`
	Cells    []ExportedCell `json:"cells,omitempty"`
	Children []ExportedItem `json:"children,omitempty"`
}

// Count returns the number of files, folders and cells in the document rooted at it.
func (it ExportedItem) Count() (files, folders, cells int) {
	if it.ItemType == ItemFolder {
		folders++
	} else {
		files++
	}
	cells += len(it.Cells)
	for _, c := range it.Children {
		fi, fo, ce := c.Count()
		files += fi
		folders += fo
		cells += ce
	}
	return files, folders, cells
}
