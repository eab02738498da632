package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
	"github.com/mkevin1491/fyp/internal/usecase/analytics"
	"github.com/mkevin1491/fyp/internal/usecase/auth"
)

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	writeJSON(w, status, apiError{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeError maps usecase errors onto HTTP statuses. Unknown failures are
// reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var parseErr *inspection.ParseError
	switch {
	case errors.As(err, &parseErr):
		writeAPIError(w, r, http.StatusBadRequest, "PARSE_ERROR", parseErr.Error())
	case errors.Is(err, inspection.ErrPendingNotFound), errors.Is(err, ports.ErrAssetNotFound):
		writeAPIError(w, r, http.StatusNotFound, "NOT_FOUND", "record not found")
	case errors.Is(err, inspection.ErrInvalidPendingID),
		errors.Is(err, inspection.ErrInvalidAction),
		errors.Is(err, inspection.ErrApproverRequired),
		errors.Is(err, inspection.ErrFunctionalLocationRequired),
		errors.Is(err, analytics.ErrInvalidStatus),
		errors.Is(err, auth.ErrEmailRequired),
		errors.Is(err, auth.ErrNameRequired),
		errors.Is(err, auth.ErrPasswordTooShort):
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
	case errors.Is(err, ports.ErrEmailTaken):
		writeAPIError(w, r, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
	default:
		logging.Error(r.Context(), "request error", slog.Any("err", errs.Loggable(errs.WithStack(err))))
		writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func parsePage(r *http.Request) ports.PageRequest {
	query := r.URL.Query()
	page, _ := strconv.Atoi(strings.TrimSpace(query.Get("page")))
	size, _ := strconv.Atoi(strings.TrimSpace(query.Get("page_size")))
	return ports.PageRequest{Page: page, PageSize: size}.Normalize()
}

func parseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
