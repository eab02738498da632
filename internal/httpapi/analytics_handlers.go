package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/ports"
	"github.com/mkevin1491/fyp/internal/usecase/analytics"
)

func (h *handler) monthlyLocationCounts(w http.ResponseWriter, r *http.Request) {
	items, err := h.analytics.MonthlyLocationCounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []ports.MonthlyLocationCount{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) mapMarkers(w http.ResponseWriter, r *http.Request) {
	items, err := h.analytics.MapMarkers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []ports.MapMarker{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) statusSummary(w http.ResponseWriter, r *http.Request) {
	items, err := h.analytics.StatusSummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) listAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.analytics.ListAssets(r.Context(), analytics.AssetQuery{
		FunctionalLocation: query.Get("functional_location"),
		Status:             query.Get("status"),
		SubstationName:     query.Get("substation_name"),
		DefectOwner:        query.Get("defect_owner"),
	}, parsePage(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) getAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "invalid record id")
		return
	}
	record, err := h.analytics.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *handler) normalizedRowSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, NormalizedRowSchema())
}

// NormalizedRowSchema describes the row shape accepted by /api/batches.
func NormalizedRowSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(&inspection.NormalizedRow{})
	schema.Title = "NormalizedRow"
	return schema
}
