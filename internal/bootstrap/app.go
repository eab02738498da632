package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mkevin1491/fyp/internal/bootstrap/config"
	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	cacheinfra "github.com/mkevin1491/fyp/internal/infrastructure/cache"
	"github.com/mkevin1491/fyp/internal/infrastructure/metrics"
	"github.com/mkevin1491/fyp/internal/infrastructure/notify"
	"github.com/mkevin1491/fyp/internal/infrastructure/persistence/sqlite/model"
	"github.com/mkevin1491/fyp/internal/usecase/analytics"
	"github.com/mkevin1491/fyp/internal/usecase/auth"
	"github.com/mkevin1491/fyp/internal/usecase/ingestion"
)

// App is the set of services a command runs against. Module builds it.
type App struct {
	Config config.Config
	DB     *gorm.DB

	Ingestion *ingestion.Service
	Auth      *auth.Service
	Analytics *analytics.Service
	Hub       *notify.Hub
	Metrics   *metrics.Registry
	Cache     *cacheinfra.SQLiteCache
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	return migrate(ctx, a.DB)
}

func migrate(ctx context.Context, db *gorm.DB) error {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration")

	if err := db.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}
