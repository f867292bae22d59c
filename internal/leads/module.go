// Package leads provides the CRM lead bounded context module.
package leads

import (
	"carmantra_backend/internal/events"
	apphttp "carmantra_backend/internal/http"
	"carmantra_backend/internal/leads/handler"
	"carmantra_backend/internal/leads/repository"
	"carmantra_backend/internal/leads/service"
	"carmantra_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates the leads module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, phoneRegion string) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, phoneRegion)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts lead routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Repository exposes lead persistence for cross-module readers.
func (m *Module) Repository() *repository.Repository { return m.repo }
