// Package bookings provides the service booking bounded context module.
package bookings

import (
	"carmantra_backend/internal/bookings/handler"
	"carmantra_backend/internal/bookings/repository"
	"carmantra_backend/internal/bookings/service"
	"carmantra_backend/internal/events"
	apphttp "carmantra_backend/internal/http"
	"carmantra_backend/internal/storage"
	"carmantra_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the bookings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates the bookings module. store may be nil when object
// storage is disabled.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, store storage.ObjectStore, bucket string, val *validator.Validator, phoneRegion string) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, store, bucket, phoneRegion)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "bookings" }

// RegisterRoutes mounts booking routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/bookings"))
}

// Repository exposes booking persistence for cross-module readers.
func (m *Module) Repository() *repository.Repository { return m.repo }
