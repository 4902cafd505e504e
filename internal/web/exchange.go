package web

import (
	"errors"
	"net/http"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/exchange"
	"github.com/conorfennell/knoldeck/internal/logging"
)

// PassphraseHeader carries the optional export passphrase.
const PassphraseHeader = "X-Knoldeck-Passphrase"

func (s *Server) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		item, err := s.deps.Exchange.Export(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		passphrase := r.Header.Get(PassphraseHeader)
		if passphrase != "" {
			w.Header().Set("Content-Type", "application/octet-stream")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		if err := exchange.Encode(w, item, passphrase); err != nil {
			logging.FromContext(r.Context()).Error("failed to write export", "id", id, "error", err)
		}
	}
}

func (s *Server) handleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dest, err := queryInt(r, "destination", domain.RootFolderID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		item, err := exchange.Decode(r.Body, r.Header.Get(PassphraseHeader))
		if err != nil {
			if errors.Is(err, exchange.ErrPassphraseRequired) {
				writeError(w, r, &domain.ValidationError{Field: "passphrase", Message: err.Error()})
				return
			}
			writeError(w, r, &domain.ValidationError{Field: "body", Message: err.Error()})
			return
		}
		id, err := s.deps.Exchange.Import(r.Context(), item, dest)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, idResponse{ID: id})
	}
}

func (s *Server) handleGetSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.deps.Settings.Current())
	}
}

// handlePutSettings applies new settings and swaps in the services bound to the
// resulting store. The server mutex is held, so no other request sees the switch.
func (s *Server) handlePutSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Settings
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		deps, err := s.deps.Settings.Apply(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if deps.Scheduler == nil {
			deps.Scheduler = s.deps.Scheduler
		}
		if deps.Clock == nil {
			deps.Clock = s.deps.Clock
		}
		s.deps = deps
		writeJSON(w, http.StatusOK, deps.Settings.Current())
	}
}
