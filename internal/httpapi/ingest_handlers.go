package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

// batchRow accepts report_date as YYYY-MM-DD instead of a full timestamp.
type batchRow struct {
	inspection.NormalizedRow
	ReportDate string `json:"report_date"`
}

type batchRequest struct {
	Source string     `json:"source"`
	Rows   []batchRow `json:"rows"`
}

type batchResponse struct {
	ingestion.BatchSummary
	Error string `json:"error,omitempty"`
}

func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", "multipart form with a file field is required")
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	summary, err := h.ingestion.IngestFile(r.Context(), ingestion.IngestFileInput{
		Name:   header.Filename,
		Reader: file,
	})
	writeBatchResult(w, r, summary, err)
}

func (h *handler) ingestBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}

	rows := make([]inspection.NormalizedRow, 0, len(req.Rows))
	for i, item := range req.Rows {
		row := item.NormalizedRow
		date, err := parseReportDate(item.ReportDate)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "rows["+strconv.Itoa(i)+"].report_date must be YYYY-MM-DD")
			return
		}
		row.ReportDate = date
		rows = append(rows, row)
	}

	source := req.Source
	if source == "" {
		source = "api"
	}
	summary, err := h.ingestion.IngestBatch(r.Context(), ingestion.IngestBatchInput{Source: source, Rows: rows})
	writeBatchResult(w, r, summary, err)
}

// writeBatchResult reports partial summaries alongside the failure that
// stopped the batch.
func writeBatchResult(w http.ResponseWriter, r *http.Request, summary ingestion.BatchSummary, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, summary)
		return
	}
	var parseErr *inspection.ParseError
	if errors.As(err, &parseErr) || summary.BatchID == "" {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusInternalServerError, batchResponse{BatchSummary: summary, Error: err.Error()})
}

func parseReportDate(raw string) (*time.Time, error) {
	if date, err := inspection.ParseDate(raw); err == nil {
		return date, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	day := inspection.DateOf(parsed)
	return &day, nil
}
