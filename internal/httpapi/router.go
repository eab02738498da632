package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/ports"
	"github.com/mkevin1491/fyp/internal/usecase/analytics"
	"github.com/mkevin1491/fyp/internal/usecase/auth"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

const defaultMaxUploadBytes = 32 << 20

type IngestionService interface {
	IngestFile(ctx context.Context, input ingestion.IngestFileInput) (ingestion.BatchSummary, error)
	IngestBatch(ctx context.Context, input ingestion.IngestBatchInput) (ingestion.BatchSummary, error)
	ListPending(ctx context.Context, page ports.PageRequest) (ports.Page[ports.PendingRecord], error)
	CountPending(ctx context.Context) (int64, error)
	Approve(ctx context.Context, input ingestion.ResolveInput) (ingestion.ResolveResult, error)
	Reject(ctx context.Context, input ingestion.ResolveInput) (ingestion.ResolveResult, error)
	ListApprovalLog(ctx context.Context, action string, functionalLocation string, page ports.PageRequest) (ports.Page[ports.ApprovalLogEntry], error)
}

type AuthService interface {
	Register(ctx context.Context, input auth.RegisterInput) (auth.Identity, error)
	Login(ctx context.Context, email string, password string) (string, auth.Identity, error)
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

type AnalyticsService interface {
	MonthlyLocationCounts(ctx context.Context) ([]ports.MonthlyLocationCount, error)
	MapMarkers(ctx context.Context) ([]ports.MapMarker, error)
	StatusSummary(ctx context.Context) ([]ports.StatusCount, error)
	ListAssets(ctx context.Context, query analytics.AssetQuery, page ports.PageRequest) (ports.Page[ports.AssetRecord], error)
	GetAsset(ctx context.Context, id uint64) (ports.AssetRecord, error)
}

type Dependencies struct {
	Ingestion IngestionService
	Auth      AuthService
	Analytics AnalyticsService
	// Events serves the websocket notification stream. Optional.
	Events http.Handler
	// Metrics serves the Prometheus exposition. Optional.
	Metrics http.Handler
}

type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

type handler struct {
	ingestion      IngestionService
	auth           AuthService
	analytics      AnalyticsService
	maxUploadBytes int64
}

func NewRouter(ctx context.Context, deps Dependencies, opts Options) http.Handler {
	h := &handler{
		ingestion:      deps.Ingestion,
		auth:           deps.Auth,
		analytics:      deps.Analytics,
		maxUploadBytes: opts.MaxUploadBytes,
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = defaultMaxUploadBytes
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logging.WithAttrs(ctx, slog.String("component", "httpapi"))))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Events != nil {
		r.Handle("/ws", deps.Events)
	}
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", h.upload)
		r.Post("/batches", h.ingestBatch)
		r.Get("/pending-approvals", h.listPending)
		r.Get("/pending-approvals/count", h.countPending)

		r.Get("/switchgear-data", h.monthlyLocationCounts)
		r.Get("/switchgear-info", h.mapMarkers)
		r.Get("/status-summary", h.statusSummary)
		r.Get("/switchgear", h.listAssets)
		r.Get("/switchgear/{id}", h.getAsset)
		r.Get("/schema/normalized-row", h.normalizedRowSchema)

		r.Group(func(r chi.Router) {
			r.Use(h.requireIdentity)
			r.Post("/approve/{id}", h.approve)
			r.Post("/reject/{id}", h.reject)
			r.Get("/approval-logs", h.listApprovalLog)
		})
	})

	return r
}

func requestLogger(ctx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqCtx := logging.WithRequestID(logging.Inherit(r.Context(), ctx), middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(reqCtx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
			}
			if status >= http.StatusInternalServerError {
				logging.Warn(reqCtx, "http request failed", attrs...)
				return
			}
			logging.Info(reqCtx, "http request", attrs...)
		})
	}
}
