package web

import (
	"net/http"

	"github.com/conorfennell/knoldeck/internal/domain"
)

type pathRequest struct {
	Path string `json:"path"`
}

type moveRequest struct {
	DestinationFolderID *int64 `json:"destinationFolderId" validate:"required,gte=0"`
}

type renameRequest struct {
	NewName string `json:"newName"`
}

// handleListFiles returns every node; files carry their due counts.
func (s *Server) handleListFiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodes, err := s.deps.Files.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		counts, err := s.deps.Units.StudyCountsByFile(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]domain.FileWithCounts, len(nodes))
		for i, n := range nodes {
			out[i] = domain.FileWithCounts{FileNode: n}
			if !n.IsFolder {
				c := counts[n.ID]
				out[i].RepetitionCounts = &c
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleCreateFile() http.HandlerFunc {
	return s.handleCreateNode(func(r *http.Request, path string) (int64, error) {
		return s.deps.Files.CreateFile(r.Context(), path)
	})
}

func (s *Server) handleCreateFolder() http.HandlerFunc {
	return s.handleCreateNode(func(r *http.Request, path string) (int64, error) {
		return s.deps.Files.CreateFolder(r.Context(), path)
	})
}

func (s *Server) handleCreateNode(create func(r *http.Request, path string) (int64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pathRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		id, err := create(r, req.Path)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, idResponse{ID: id})
	}
}

func (s *Server) handleDeleteFile() http.HandlerFunc {
	return s.handleByID(func(r *http.Request, id int64) error {
		return s.deps.Files.DeleteFile(r.Context(), id)
	})
}

func (s *Server) handleDeleteFolder() http.HandlerFunc {
	return s.handleByID(func(r *http.Request, id int64) error {
		return s.deps.Files.DeleteFolder(r.Context(), id)
	})
}

func (s *Server) handleMoveFile() http.HandlerFunc {
	return s.handleMove(func(r *http.Request, id, dest int64) error {
		return s.deps.Files.MoveFile(r.Context(), id, dest)
	})
}

func (s *Server) handleMoveFolder() http.HandlerFunc {
	return s.handleMove(func(r *http.Request, id, dest int64) error {
		return s.deps.Files.MoveFolder(r.Context(), id, dest)
	})
}

func (s *Server) handleMove(move func(r *http.Request, id, dest int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req moveRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := move(r, id, *req.DestinationFolderID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleRenameFile() http.HandlerFunc {
	return s.handleRename(func(r *http.Request, id int64, name string) error {
		return s.deps.Files.RenameFile(r.Context(), id, name)
	})
}

func (s *Server) handleRenameFolder() http.HandlerFunc {
	return s.handleRename(func(r *http.Request, id int64, name string) error {
		return s.deps.Files.RenameFolder(r.Context(), id, name)
	})
}

func (s *Server) handleRename(rename func(r *http.Request, id int64, name string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req renameRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := rename(r, id, req.NewName); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleByID runs op on the {id} parameter and answers 204.
func (s *Server) handleByID(op func(r *http.Request, id int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := op(r, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
