package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/driftscope/driftscope/internal/drift"
	"github.com/driftscope/driftscope/internal/errors"
	"github.com/driftscope/driftscope/internal/ordering"
	"github.com/driftscope/driftscope/pkg/types"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	tenantID := types.TenantID(chi.URLParam(r, "tenantID"))

	infos, err := s.service.Snapshots(tenantID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": infos})
}

// handleListDrift serves the paginated drift listing. Query parameters:
// from_snapshot, to_snapshot (required), object_type, classification,
// from_date, to_date (RFC 3339), page, limit, order (canonical|display).
func (s *Server) handleListDrift(w http.ResponseWriter, r *http.Request) {
	tenantID := types.TenantID(chi.URLParam(r, "tenantID"))
	query := r.URL.Query()

	fromID := query.Get("from_snapshot")
	toID := query.Get("to_snapshot")
	if fromID == "" || toID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Kind:    string(errors.KindInvalidSnapshotPairing),
			Message: "from_snapshot and to_snapshot are required",
		})
		return
	}

	filter := ordering.Filter{
		ObjectType:     types.ObjectType(query.Get("object_type")),
		Classification: types.Classification(query.Get("classification")),
	}
	for name, dst := range map[string]**time.Time{
		"from_date": &filter.FromDate,
		"to_date":   &filter.ToDate,
	} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Kind:    "InvalidQuery",
				Message: name + " must be RFC 3339",
			})
			return
		}
		*dst = &parsed
	}

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := s.service.ListDrift(r.Context(), tenantID, drift.Query{
		FromSnapshotID: fromID,
		ToSnapshotID:   toID,
		Filter:         filter,
		Page:           page,
		Limit:          limit,
		DisplayOrder:   query.Get("order") == "display",
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeError maps the error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetKind(err) {
	case errors.KindCrossTenantAccessDenied:
		status = http.StatusForbidden
	case errors.KindInvalidSnapshotPairing:
		status = http.StatusBadRequest
	case errors.KindNotFound:
		status = http.StatusNotFound
	case errors.KindMalformedSnapshotPayload:
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.log.Error("drift read path request failed", err)
	}
	writeJSON(w, status, errorResponse{Kind: string(errors.GetKind(err)), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
