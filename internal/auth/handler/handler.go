package handler

import (
	"net/http"

	"carmantra_backend/internal/auth/service"
	"carmantra_backend/internal/auth/transport"
	"carmantra_backend/platform/httpkit"
	"carmantra_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes mounts the unauthenticated endpoints. The rate limiter
// keeps credential stuffing off the login endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, limiter *httpkit.AuthRateLimiter) {
	group := rg.Group("/auth")
	group.POST("/register", limiter.RateLimit(), h.Register)
	group.POST("/login", limiter.RateLimit(), h.Login)
}

// RegisterProtectedRoutes mounts the endpoints that require a valid token.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.Me)
}

func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, resp)
}

func (h *Handler) Me(c *gin.Context) {
	rawID, ok := c.Get(httpkit.ContextUserIDKey)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing token", nil)
		return
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	user, err := h.svc.Me(c.Request.Context(), userID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, user)
}
