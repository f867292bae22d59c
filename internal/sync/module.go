// Package sync provides the bulk customer sync bounded context module.
package sync

import (
	"carmantra_backend/internal/events"
	apphttp "carmantra_backend/internal/http"
	"carmantra_backend/internal/sync/handler"
	"carmantra_backend/internal/sync/repository"
	"carmantra_backend/internal/sync/service"
	"carmantra_backend/platform/config"
	"carmantra_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the sync bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the sync module. enqueuer may be nil when no worker is
// configured; starting a run then fails with a config error.
func NewModule(pool *pgxpool.Pool, res service.CustomerResolver, enqueuer service.Enqueuer, eventBus events.Bus, cfg config.ResolverConfig, log *logger.Logger) *Module {
	runs := repository.New(pool)
	svc := service.New(runs, service.NewPagers(pool), res, enqueuer, eventBus, log, cfg.GetSyncBatchSize())

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "sync" }

// RegisterRoutes mounts sync routes on the admin-only group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/sync"))
}

// Service exposes run execution for the background worker.
func (m *Module) Service() *service.Service { return m.service }
