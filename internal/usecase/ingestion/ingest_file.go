package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/domain/inspection"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

// IngestFile normalizes a raw report, fills missing coordinates and runs the
// rows through IngestBatch. A file that cannot be read fails with
// *inspection.ParseError before any row is touched and nothing is published.
func (s *Service) IngestFile(ctx context.Context, input IngestFileInput) (BatchSummary, error) {
	if ctx == nil {
		return BatchSummary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return BatchSummary{}, errs.Wrap(err, "check context")
	}
	if s.normalizer == nil {
		return BatchSummary{}, errors.New("report normalizer is required")
	}
	if input.Reader == nil {
		return BatchSummary{}, &inspection.ParseError{Source: input.Name, Err: errors.New("file is required")}
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.ingestion"), slog.String("source", input.Name))

	rows, err := s.normalizer.Normalize(logCtx, input.Name, input.Reader)
	if err != nil {
		s.observeBatch(batchResultParseError)
		var parseErr *inspection.ParseError
		if !errors.As(err, &parseErr) {
			err = &inspection.ParseError{Source: input.Name, Err: err}
		}
		logging.Warn(logCtx, "report rejected", slog.Any("err", errs.Loggable(err)))
		return BatchSummary{}, err
	}

	s.fillCoordinates(logCtx, rows)

	return s.IngestBatch(ctx, IngestBatchInput{
		Source: input.Name,
		Rows:   rows,
	})
}

// fillCoordinates geocodes rows without coordinates by substation name.
// Lookups are memoized for the batch; misses leave the row untouched.
func (s *Service) fillCoordinates(ctx context.Context, rows []inspection.NormalizedRow) {
	if s.geocoder == nil {
		return
	}

	type lookup struct {
		coords ports.Coordinates
		ok     bool
	}
	seen := make(map[string]lookup)
	resolved := 0

	for i := range rows {
		if rows[i].Latitude != nil && rows[i].Longitude != nil {
			continue
		}
		address := strings.TrimSpace(rows[i].SubstationName)
		if address == "" {
			continue
		}

		hit, ok := seen[address]
		if !ok {
			coords, found := s.geocoder.Geocode(ctx, address)
			hit = lookup{coords: coords, ok: found}
			seen[address] = hit
		}
		if !hit.ok {
			logging.Debug(ctx, "substation not geocoded",
				slog.Int("row_index", i),
				slog.String("substation_name", address),
			)
			continue
		}

		lat, lon := hit.coords.Latitude, hit.coords.Longitude
		rows[i].Latitude = &lat
		rows[i].Longitude = &lon
		resolved++
	}

	if len(seen) > 0 {
		logging.Info(ctx, "geocoding finished", slog.Int("lookups", len(seen)), slog.Int("rows_resolved", resolved))
	}
}
