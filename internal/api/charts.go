package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/exporter"
	"github.com/RowanDark/knitcipher/internal/logging"
)

// SaveChartRequest encrypts a message and stores the resulting chart.
type SaveChartRequest struct {
	Message   string `json:"message"`
	Algorithm string `json:"algorithm,omitempty"`
	Repeat    bool   `json:"repeat"`
	Label     string `json:"label,omitempty"`
}

func (s *Server) handleSaveChart(w http.ResponseWriter, r *http.Request) {
	var req SaveChartRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, status, err := s.encrypt(req.Message, req.Algorithm, req.Repeat)
	if err != nil {
		s.writeError(w, status, err.Error())
		return
	}

	saved, err := s.store.Save(r.Context(), chartstore.FromResult(res, req.Label))
	if err != nil {
		s.log.Error("save chart failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save chart")
		return
	}
	s.audit(r, logging.AuditEvent{
		EventType: logging.EventChartSaved,
		Decision:  logging.DecisionAllow,
		Metadata: map[string]any{
			"message":   req.Message,
			"id":        saved.ID,
			"cid":       saved.CID,
			"algorithm": saved.Algorithm,
		},
	})
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := chartstore.Filter{Algorithm: strings.ToLower(strings.TrimSpace(q.Get("algorithm")))}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	charts, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.log.Error("list charts failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list charts")
		return
	}
	if charts == nil {
		charts = []*chartstore.Chart{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"charts": charts})
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadChart(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, chartstore.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "chart not found")
			return
		}
		s.log.Error("delete chart failed", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete chart")
		return
	}
	s.audit(r, logging.AuditEvent{
		EventType: logging.EventChartDeleted,
		Decision:  logging.DecisionAllow,
		Metadata:  map[string]any{"id": id},
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportChart(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if strings.TrimSpace(raw) == "" {
		raw = string(exporter.FormatJSON)
	}
	format, err := exporter.ParseFormat(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, ok := s.loadChart(w, r)
	if !ok {
		return
	}

	req, err := exporter.NewRequest(c)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	body, err := exporter.Encode(format, req)
	if err != nil {
		s.log.Error("export chart failed", "id", c.ID, "format", format, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to export chart")
		return
	}
	spec, _ := exporter.Lookup(format)

	s.audit(r, logging.AuditEvent{
		EventType: logging.EventChartExported,
		Metadata:  map[string]any{"id": c.ID, "format": string(format)},
	})
	w.Header().Set("Content-Type", spec.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+c.ID+"."+spec.Extension+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) loadChart(w http.ResponseWriter, r *http.Request) (*chartstore.Chart, bool) {
	id := mux.Vars(r)["id"]
	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, chartstore.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "chart not found")
			return nil, false
		}
		s.log.Error("load chart failed", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load chart")
		return nil, false
	}
	return c, true
}
