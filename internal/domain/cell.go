package domain

import "fmt"

// CellType determines how a cell is rendered and how many repetition units it owns.
type CellType string

const (
	CellNote      CellType = "Note"
	CellFlashCard CellType = "FlashCard"
	CellCloze     CellType = "Cloze"
	CellTrueFalse CellType = "TrueFalse"
)

// Valid reports whether t is one of the known cell types.
func (t CellType) Valid() bool {
	switch t {
	case CellNote, CellFlashCard, CellCloze, CellTrueFalse:
		return true
	}
	return false
}

// ParseCellType converts a stored or user supplied string into a CellType.
func ParseCellType(s string) (CellType, error) {
	t := CellType(s)
	if !t.Valid() {
		return "", &ValidationError{Field: "cellType", Message: fmt.Sprintf("unknown cell type %q", s)}
	}
	return t, nil
}

// Cell is a single content block inside a file. Index is the dense, zero-based position.
type Cell struct {
	ID       int64    `json:"id"`
	FileID   int64    `json:"fileId"`
	Index    int      `json:"index"`
	Content  string   `json:"content"`
	CellType CellType `json:"cellType"`
}

// CellContentUpdate is one entry of a batch content update.
type CellContentUpdate struct {
	ID      int64  `json:"id" validate:"required,gt=0"`
	Content string `json:"content"`
}

// FlashCard is the JSON content stored in a FlashCard cell.
type FlashCard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// TrueFalse is the JSON content stored in a TrueFalse cell.
type TrueFalse struct {
	Question string `json:"question"`
	IsTrue   bool   `json:"isTrue"`
}
