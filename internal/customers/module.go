// Package customers provides the customer bounded context module: canonical
// customer records, identity resolution from source records, and the
// aggregated cross-source views.
package customers

import (
	"context"

	"carmantra_backend/internal/customers/handler"
	"carmantra_backend/internal/customers/ports"
	"carmantra_backend/internal/customers/repository"
	"carmantra_backend/internal/customers/resolver"
	"carmantra_backend/internal/customers/service"
	"carmantra_backend/internal/events"
	apphttp "carmantra_backend/internal/http"
	"carmantra_backend/platform/config"
	"carmantra_backend/platform/logger"
	"carmantra_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the customers bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	resolver *resolver.Resolver
	service  *service.Service
}

// Readers are the cross-module read dependencies the aggregation views need.
type Readers struct {
	Services ports.ServiceReader
	Leads    ports.LeadReader
	Invoices ports.InvoiceReader
}

// NewModule creates the customers module and subscribes the identity
// resolver to source-record creation events, so every new booking, lead,
// invoice and quotation feeds the canonical customer table.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, readers Readers, val *validator.Validator, cfg config.ResolverConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)

	res := resolver.New(repo, resolver.Options{
		Transactional: cfg.GetResolverTransactional(),
		PhoneRegion:   cfg.GetDefaultPhoneRegion(),
	})

	agg := service.NewAggregator(repo, readers.Services, readers.Leads, readers.Invoices)
	svc := service.New(repo, agg, cfg.GetDefaultPhoneRegion())

	resolveFragment := func(ctx context.Context, source string, fragment events.ContactFragment) error {
		_, _, err := res.Resolve(ctx, resolver.Fragment{
			FirstName: fragment.FirstName,
			LastName:  fragment.LastName,
			Email:     fragment.Email,
			Mobile:    fragment.Mobile,
			Address:   fragment.Address,
			City:      fragment.City,
			State:     fragment.State,
			Country:   fragment.Country,
		})
		if err != nil {
			log.Error("customer resolution failed", "source", source, "error", err)
		}
		return err
	}

	eventBus.Subscribe(events.BookingCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.BookingCreated)
		if !ok {
			return nil
		}
		return resolveFragment(ctx, "booking", e.Contact)
	}))
	eventBus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadCreated)
		if !ok {
			return nil
		}
		return resolveFragment(ctx, "lead", e.Contact)
	}))
	eventBus.Subscribe(events.InvoiceCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.InvoiceCreated)
		if !ok {
			return nil
		}
		return resolveFragment(ctx, "invoice", e.Contact)
	}))
	eventBus.Subscribe(events.QuotationCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.QuotationCreated)
		if !ok {
			return nil
		}
		return resolveFragment(ctx, "quotation", e.Contact)
	}))

	return &Module{
		handler:  handler.New(svc, val),
		resolver: res,
		service:  svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "customers" }

// RegisterRoutes mounts customer routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/customers"))
}

// Resolver exposes the identity resolver for the sync job.
func (m *Module) Resolver() *resolver.Resolver { return m.resolver }
