package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

type resolveRequest struct {
	Message string `json:"message"`
}

type resolveResponse struct {
	Message string `json:"message"`
	ingestion.ResolveResult
}

func (h *handler) listPending(w http.ResponseWriter, r *http.Request) {
	page, err := h.ingestion.ListPending(r.Context(), parsePage(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) countPending(w http.ResponseWriter, r *http.Request) {
	count, err := h.ingestion.CountPending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *handler) approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.ingestion.Approve, "Record approved successfully")
}

func (h *handler) reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.ingestion.Reject, "Record rejected successfully")
}

func (h *handler) resolve(
	w http.ResponseWriter,
	r *http.Request,
	run func(context.Context, ingestion.ResolveInput) (ingestion.ResolveResult, error),
	message string,
) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, inspection.ErrInvalidPendingID)
		return
	}
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, inspection.ErrApproverRequired)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}

	result, err := run(r.Context(), ingestion.ResolveInput{
		PendingID: id,
		Message:   req.Message,
		Approver:  identity.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Message: message, ResolveResult: result})
}

func (h *handler) listApprovalLog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.ingestion.ListApprovalLog(
		r.Context(),
		strings.TrimSpace(query.Get("filter")),
		strings.TrimSpace(query.Get("functional_location")),
		parsePage(r),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
