package handler

import (
	"net/http"
	"strconv"

	"carmantra_backend/internal/customers/service"
	"carmantra_backend/internal/customers/transport"
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.SetStatus)
	rg.DELETE("/:id", httpkit.RequireRole("admin"), h.Delete)
	rg.GET("/:id/profile", h.Profile)
	rg.GET("/:id/services", h.ServiceHistory)
	rg.GET("/:id/vehicles", h.Vehicles)
	rg.POST("/:id/vehicles", h.AddVehicle)
	rg.DELETE("/:id/vehicles/:vehicleId", h.DeleteVehicle)
	rg.GET("/:id/leads", h.Leads)
	rg.GET("/:id/invoices", h.Invoices)
	rg.GET("/:id/activity", h.ActivityHistory)
	rg.GET("/:id/notes", h.ListNotes)
	rg.POST("/:id/notes", h.AddNote)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	customer, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, customer)
}

func (h *Handler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	customers, err := h.svc.List(c.Request.Context(), c.Query("status"), c.Query("search"), limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, customers)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, customer)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	customer, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, customer)
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transport.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, nil)
}

func (h *Handler) Profile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, profile)
}

func (h *Handler) ServiceHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.svc.ServiceHistory(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, entries)
}

func (h *Handler) Vehicles(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	vehicles, err := h.svc.Vehicles(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, vehicles)
}

func (h *Handler) AddVehicle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transport.AddVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	vehicle, err := h.svc.AddVehicle(c.Request.Context(), id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, vehicle)
}

func (h *Handler) DeleteVehicle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	vehicleID, err := uuid.Parse(c.Param("vehicleId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.DeleteVehicle(c.Request.Context(), id, vehicleID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, nil)
}

func (h *Handler) Leads(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	leads, err := h.svc.Leads(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, leads)
}

func (h *Handler) Invoices(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	invoices, err := h.svc.Invoices(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, invoices)
}

func (h *Handler) ActivityHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.svc.ActivityHistory(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, items)
}

func (h *Handler) ListNotes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	notes, err := h.svc.ListNotes(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, notes)
}

func (h *Handler) AddNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transport.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var authorID *uuid.UUID
	if raw, exists := c.Get(httpkit.ContextUserIDKey); exists {
		if uid, ok := raw.(uuid.UUID); ok {
			authorID = &uid
		}
	}

	note, err := h.svc.AddNote(c.Request.Context(), id, authorID, req.Body)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, note)
}

func pathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
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
