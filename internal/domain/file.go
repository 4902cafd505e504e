package domain

// FileNode is a file or folder addressed by its materialized path.
type FileNode struct {
	ID       int64  `json:"id"`
	Path     string `json:"path"`
	IsFolder bool   `json:"isFolder"`
}

// FileWithCounts is a FileNode as listed for the sidebar. Counts are only set for files.
type FileWithCounts struct {
	FileNode
	RepetitionCounts *StudyCounts `json:"repetitionCounts,omitempty"`
}

// RootFolderID is the destination id that denotes the top of the hierarchy.
const RootFolderID int64 = 0
