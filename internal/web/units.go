package web

import (
	"net/http"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/repetition"
)

type unitsQuery struct {
	FileIDs []int64 `json:"fileIds" validate:"required,dive,gt=0"`
}

// reviewRequest carries scheduling values the caller already computed.
type reviewRequest struct {
	Unit      domain.RepetitionUnit `json:"unit"`
	Rating    domain.Rating         `json:"rating" validate:"required"`
	StudyTime int64                 `json:"studyTime" validate:"gte=0"`
}

type gradeRequest struct {
	Rating    domain.Rating `json:"rating" validate:"required"`
	StudyTime int64         `json:"studyTime" validate:"gte=0"`
}

func (s *Server) handleStudyCounts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		counts, err := s.deps.Units.StudyCounts(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, counts)
	}
}

func (s *Server) handleFileUnits() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		units, err := s.deps.Units.FileUnits(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeUnits(w, units)
	}
}

func (s *Server) handleUnitsForFiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req unitsQuery
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		units, err := s.deps.Units.UnitsForFiles(r.Context(), req.FileIDs)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeUnits(w, units)
	}
}

func writeUnits(w http.ResponseWriter, units []domain.RepetitionUnit) {
	if units == nil {
		units = []domain.RepetitionUnit{}
	}
	writeJSON(w, http.StatusOK, units)
}

func (s *Server) handleRegisterReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.deps.Units.RegisterReview(r.Context(), req.Unit, req.Rating, req.StudyTime); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleGrade schedules the unit with the built-in scheduler and records the review.
// It answers with the unit as stored.
func (s *Server) handleGrade() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req gradeRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		rating, err := domain.ParseRating(string(req.Rating))
		if err != nil {
			writeError(w, r, err)
			return
		}

		unit, err := s.deps.Units.GetUnit(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next := s.deps.Scheduler.Next(unit, rating, s.deps.Clock.Now())
		if err := s.deps.Units.RegisterReview(r.Context(), next, rating, req.StudyTime); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, next)
	}
}

func (s *Server) handleTodayStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.deps.Units.TodayStatistics(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Server) handleHomeStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := queryInt(r, "days", 30)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if days < 1 || days > repetition.MaxStatisticsDays {
			writeError(w, r, &domain.ValidationError{Field: "days", Message: "days must be between 1 and 366"})
			return
		}
		st, err := s.deps.Units.HomeStatistics(r.Context(), int(days))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
