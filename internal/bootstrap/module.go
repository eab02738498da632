package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/mkevin1491/fyp/internal/bootstrap/config"
	"github.com/mkevin1491/fyp/internal/bootstrap/database"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	cacheinfra "github.com/mkevin1491/fyp/internal/infrastructure/cache"
	"github.com/mkevin1491/fyp/internal/infrastructure/geocode"
	"github.com/mkevin1491/fyp/internal/infrastructure/lock"
	"github.com/mkevin1491/fyp/internal/infrastructure/metrics"
	"github.com/mkevin1491/fyp/internal/infrastructure/normalize"
	"github.com/mkevin1491/fyp/internal/infrastructure/notify"
	sqliterepo "github.com/mkevin1491/fyp/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/mkevin1491/fyp/internal/infrastructure/persistence/sqlite/uow"
	"github.com/mkevin1491/fyp/internal/ports"
	"github.com/mkevin1491/fyp/internal/usecase/analytics"
	"github.com/mkevin1491/fyp/internal/usecase/auth"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRecordStore,
			fx.As(new(ports.RecordReader)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAnalyticsRepository,
			fx.As(new(ports.AnalyticsRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewUserRepository,
			fx.As(new(ports.UserRepository)),
		),
	),
	fx.Provide(cacheinfra.NewSQLiteCache),
	fx.Provide(
		fx.Annotate(
			lock.NewKeyedMutex,
			fx.As(new(ports.Locker)),
		),
	),
	fx.Provide(metrics.NewRegistry),
	fx.Provide(provideNormalizer),
	fx.Provide(provideGeocoder),
	fx.Provide(provideHub),
	fx.Provide(provideNotifier),
	fx.Provide(provideIngestion),
	fx.Provide(provideAuth),
	fx.Provide(analytics.NewService),
	fx.Provide(provideApp),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	if cfg.Database.AutoMigrate {
		if err := migrate(logCtx, db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func provideNormalizer(cfg config.Config) (ports.Normalizer, error) {
	columns := normalize.DefaultColumnMap()
	if path := strings.TrimSpace(cfg.Ingest.ColumnMap); path != "" {
		loaded, err := normalize.LoadColumnMap(path)
		if err != nil {
			return nil, errs.Wrap(err, "load column map")
		}
		columns = loaded
	}
	return normalize.NewNormalizer(columns, cfg.Ingest.HeaderScanRows), nil
}

// provideGeocoder returns a nil Geocoder when lookups are disabled.
func provideGeocoder(cfg config.Config, cache *cacheinfra.SQLiteCache) ports.Geocoder {
	if !cfg.Geocode.Enabled {
		return nil
	}
	return geocode.NewClient(geocode.Options{
		BaseURL:      cfg.Geocode.BaseURL,
		UserAgent:    cfg.Geocode.UserAgent,
		RegionSuffix: cfg.Geocode.RegionSuffix,
		Timeout:      cfg.Geocode.Timeout,
		CacheTTL:     cfg.Geocode.CacheTTL,
	}, cache)
}

func provideHub(lc fx.Lifecycle, ctx context.Context, cfg config.Config) *notify.Hub {
	hub := notify.NewHub(ctx, originChecker(cfg.HTTP.AllowedOrigins))
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			hub.Close()
			return nil
		},
	})
	return hub
}

func provideNotifier(lc fx.Lifecycle, ctx context.Context, cfg config.Config, hub *notify.Hub) ports.Notifier {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	notifiers := []ports.Notifier{notify.LogNotifier{}}
	if cfg.Notify.Websocket {
		notifiers = append(notifiers, hub)
	}
	if natsURL := strings.TrimSpace(cfg.Notify.NATSURL); natsURL != "" {
		publisher, err := notify.ConnectNATS(logCtx, natsURL, cfg.Notify.NATSSubject)
		if err != nil {
			logging.Warn(logCtx, "nats notifier disabled", slog.Any("err", errs.Loggable(err)))
		} else {
			notifiers = append(notifiers, publisher)
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					return publisher.Close()
				},
			})
		}
	}
	return notify.NewFanout(notifiers...)
}

type ingestionParams struct {
	fx.In

	Reader     ports.RecordReader
	UoW        ports.UnitOfWork
	Locker     ports.Locker
	Notifier   ports.Notifier
	Normalizer ports.Normalizer
	Geocoder   ports.Geocoder
	Metrics    *metrics.Registry
}

func provideIngestion(p ingestionParams) *ingestion.Service {
	return ingestion.NewService(p.Reader, p.UoW, p.Locker, p.Notifier, p.Normalizer, p.Geocoder, p.Metrics)
}

func provideAuth(cfg config.Config, users ports.UserRepository) *auth.Service {
	return auth.NewService(users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

type appParams struct {
	fx.In

	Config    config.Config
	DB        *gorm.DB
	Ingestion *ingestion.Service
	Auth      *auth.Service
	Analytics *analytics.Service
	Hub       *notify.Hub
	Metrics   *metrics.Registry
	Cache     *cacheinfra.SQLiteCache
}

func provideApp(p appParams) *App {
	return &App{
		Config:    p.Config,
		DB:        p.DB,
		Ingestion: p.Ingestion,
		Auth:      p.Auth,
		Analytics: p.Analytics,
		Hub:       p.Hub,
		Metrics:   p.Metrics,
		Cache:     p.Cache,
	}
}

// originChecker accepts same-host requests and the configured origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		if origin != "" {
			set[strings.ToLower(origin)] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		parsed, err := url.Parse(origin)
		return err == nil && strings.EqualFold(parsed.Host, r.Host)
	}
}
