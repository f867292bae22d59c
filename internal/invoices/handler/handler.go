package handler

import (
	"net/http"
	"strconv"

	"carmantra_backend/internal/invoices/service"
	"carmantra_backend/internal/invoices/transport"
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

func (h *Handler) RegisterInvoiceRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListInvoices)
	rg.POST("", h.CreateInvoice)
	rg.GET("/:id", h.GetInvoiceByID)
	rg.DELETE("/:id", httpkit.RequireRole("admin"), h.DeleteInvoice)
}

func (h *Handler) RegisterQuotationRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListQuotations)
	rg.POST("", h.CreateQuotation)
	rg.GET("/:id", h.GetQuotationByID)
	rg.DELETE("/:id", httpkit.RequireRole("admin"), h.DeleteQuotation)
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	var req transport.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	invoice, err := h.svc.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, invoice)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	invoices, err := h.svc.ListInvoices(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, invoices)
}

func (h *Handler) GetInvoiceByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	invoice, err := h.svc.GetInvoiceByID(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, invoice)
}

func (h *Handler) DeleteInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteInvoice(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, nil)
}

func (h *Handler) CreateQuotation(c *gin.Context) {
	var req transport.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	quotation, err := h.svc.CreateQuotation(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, quotation)
}

func (h *Handler) ListQuotations(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	quotations, err := h.svc.ListQuotations(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, quotations)
}

func (h *Handler) GetQuotationByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	quotation, err := h.svc.GetQuotationByID(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, quotation)
}

func (h *Handler) DeleteQuotation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteQuotation(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, nil)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
