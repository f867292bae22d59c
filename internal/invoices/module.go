// Package invoices provides the billing bounded context module: invoices
// and quotations.
package invoices

import (
	"carmantra_backend/internal/events"
	apphttp "carmantra_backend/internal/http"
	"carmantra_backend/internal/invoices/handler"
	"carmantra_backend/internal/invoices/repository"
	"carmantra_backend/internal/invoices/service"
	"carmantra_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the invoices bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates the invoices module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, phoneRegion string) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, phoneRegion)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "invoices" }

// RegisterRoutes mounts invoice and quotation routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterInvoiceRoutes(ctx.Protected.Group("/invoices"))
	m.handler.RegisterQuotationRoutes(ctx.Protected.Group("/quotations"))
}

// Repository exposes invoice persistence for cross-module readers.
func (m *Module) Repository() *repository.Repository { return m.repo }
