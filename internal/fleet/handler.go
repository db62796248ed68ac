package fleet

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fleetops/fleet-manager/internal/workflow"
	"github.com/fleetops/fleet-manager/pkg/common"
	"github.com/fleetops/fleet-manager/pkg/middleware"
)

// Handler handles HTTP requests for the fleet
type Handler struct {
	service *Service
}

// NewHandler creates a new fleet handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create registers a new vehicle
// POST /api/v1/vehicles
func (h *Handler) Create(c *gin.Context) {
	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	vehicle, err := h.service.CreateVehicle(c.Request.Context(), &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create vehicle")
		return
	}

	common.CreatedResponse(c, vehicle)
}

// List returns the whole fleet with control classifications
// GET /api/v1/vehicles?status=
func (h *Handler) List(c *gin.Context) {
	resp, err := h.service.ListVehicles(c.Request.Context(), VehicleStatus(c.Query("status")))
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list vehicles")
		return
	}

	common.SuccessResponse(c, resp)
}

// GetCritical returns vehicles with an expired or urgent required control
// GET /api/v1/vehicles/critical
func (h *Handler) GetCritical(c *gin.Context) {
	vehicles, err := h.service.CriticalVehicles(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get critical vehicles")
		return
	}

	common.SuccessResponse(c, gin.H{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// GetStats returns fleet-wide statistics
// GET /api/v1/vehicles/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetFleetStats(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get fleet stats")
		return
	}

	common.SuccessResponse(c, stats)
}

// Get returns a specific vehicle
// GET /api/v1/vehicles/:id
func (h *Handler) Get(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	vehicle, err := h.service.GetVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get vehicle")
		return
	}

	common.SuccessResponse(c, vehicle)
}

// Update updates vehicle details
// PUT /api/v1/vehicles/:id
func (h *Handler) Update(c *gin.Context) {
	role, err := middleware.GetUserRole(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	vehicle, err := h.service.UpdateVehicle(c.Request.Context(), vehicleID, role, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update vehicle")
		return
	}

	common.SuccessResponse(c, vehicle)
}

// RegisterRoutes registers fleet routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	canEdit := middleware.RequireRole(workflow.RoleDirecteur, workflow.RoleAgentParc)

	vehicles := r.Group("/api/v1/vehicles")
	vehicles.Use(middleware.AuthMiddleware(jwtSecret))
	{
		vehicles.POST("", canEdit, h.Create)
		vehicles.GET("", h.List)
		vehicles.GET("/critical", h.GetCritical)
		vehicles.GET("/stats", h.GetStats)
		vehicles.GET("/:id", h.Get)
		vehicles.PUT("/:id", canEdit, h.Update)
	}
}
