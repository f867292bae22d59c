// Package auth provides the authentication bounded context module.
package auth

import (
	"carmantra_backend/internal/auth/handler"
	"carmantra_backend/internal/auth/repository"
	"carmantra_backend/internal/auth/service"
	apphttp "carmantra_backend/internal/http"
	"carmantra_backend/platform/config"
	"carmantra_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the auth module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg config.AuthServiceConfig) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "auth" }

// RegisterRoutes mounts login and registration on the public group and the
// profile endpoint on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1, ctx.AuthRateLimiter)
	m.handler.RegisterProtectedRoutes(ctx.Protected)
}
