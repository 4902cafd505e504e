package web

import (
	"net/http"

	"github.com/conorfennell/knoldeck/internal/domain"
)

type createCellRequest struct {
	FileID   int64           `json:"fileId" validate:"gt=0"`
	Content  string          `json:"content"`
	CellType domain.CellType `json:"cellType" validate:"required"`
	Index    *int            `json:"index" validate:"required"`
}

type moveCellRequest struct {
	NewIndex *int `json:"newIndex" validate:"required"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type contentsRequest struct {
	Updates []domain.CellContentUpdate `json:"updates" validate:"required,dive"`
}

func (s *Server) handleListCells() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		cells, err := s.deps.Cells.ListOrdered(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if cells == nil {
			cells = []domain.Cell{}
		}
		writeJSON(w, http.StatusOK, cells)
	}
}

func (s *Server) handleCreateCell() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCellRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		id, err := s.deps.Cells.CreateCell(r.Context(), req.FileID, req.Content, req.CellType, *req.Index)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, idResponse{ID: id})
	}
}

func (s *Server) handleDeleteCell() http.HandlerFunc {
	return s.handleByID(func(r *http.Request, id int64) error {
		return s.deps.Cells.DeleteCell(r.Context(), id)
	})
}

func (s *Server) handleMoveCell() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req moveCellRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.deps.Cells.MoveCell(r.Context(), id, *req.NewIndex); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleUpdateCellContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req contentRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.deps.Cells.UpdateCellContent(r.Context(), id, req.Content); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleUpdateCellsContents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contentsRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.deps.Cells.UpdateCellsContents(r.Context(), req.Updates); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleResetUnits() http.HandlerFunc {
	return s.handleByID(func(r *http.Request, id int64) error {
		return s.deps.Units.ResetUnitsForCell(r.Context(), id)
	})
}
