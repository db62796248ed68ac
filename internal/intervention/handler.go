package intervention

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fleetops/fleet-manager/internal/workflow"
	"github.com/fleetops/fleet-manager/pkg/common"
	"github.com/fleetops/fleet-manager/pkg/middleware"
)

// Handler handles HTTP requests for interventions
type Handler struct {
	service *Service
}

// NewHandler creates a new intervention handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create opens a new maintenance request
// POST /api/v1/interventions
func (h *Handler) Create(c *gin.Context) {
	var req CreateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	intervention, err := h.service.CreateIntervention(c.Request.Context(), &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create intervention")
		return
	}

	common.CreatedResponse(c, intervention)
}

// List returns interventions, rejected ones excluded unless asked for
// GET /api/v1/interventions?status=&immat=&vehicle_id=&include_rejected=
func (h *Handler) List(c *gin.Context) {
	filter := &ListFilter{
		Immat:           c.Query("immat"),
		IncludeRejected: c.Query("include_rejected") == "true",
	}
	if raw := c.Query("status"); raw != "" {
		status := workflow.Status(raw)
		if !workflow.ValidStatus(status) {
			common.ErrorResponse(c, http.StatusBadRequest, "unknown intervention status")
			return
		}
		filter.Status = status
		// Asking for rejected records explicitly overrides the default filter
		if status == workflow.StatusRejected {
			filter.IncludeRejected = true
		}
	}
	if raw := c.Query("vehicle_id"); raw != "" {
		vehicleID, err := uuid.Parse(raw)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid vehicle id")
			return
		}
		filter.VehicleID = &vehicleID
	}

	resp, err := h.service.ListInterventions(c.Request.Context(), filter)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list interventions")
		return
	}

	common.SuccessResponse(c, resp)
}

// GetStats returns intervention counts per workflow status
// GET /api/v1/interventions/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetInterventionStats(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get intervention stats")
		return
	}

	common.SuccessResponse(c, stats)
}

// Get returns a specific intervention
// GET /api/v1/interventions/:id
func (h *Handler) Get(c *gin.Context) {
	interventionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid intervention id")
		return
	}

	intervention, err := h.service.GetIntervention(c.Request.Context(), interventionID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get intervention")
		return
	}

	common.SuccessResponse(c, intervention)
}

// Approve validates the devis
// POST /api/v1/interventions/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	h.transition(c, workflow.ActionApprove, nil)
}

// Reject refuses the devis
// POST /api/v1/interventions/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	h.transition(c, workflow.ActionReject, nil)
}

// PlanRdv schedules the garage appointment
// POST /api/v1/interventions/:id/rdv
func (h *Handler) PlanRdv(c *gin.Context) {
	var req PlanRdvRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	h.transition(c, workflow.ActionPlanRdv, &workflow.PlanRdvPayload{
		Date:     req.Date,
		Time:     req.Time,
		Location: req.Location,
	})
}

// Complete closes out the intervention
// POST /api/v1/interventions/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, workflow.ActionComplete, nil)
}

func (h *Handler) transition(c *gin.Context, action workflow.Action, payload *workflow.PlanRdvPayload) {
	role, err := middleware.GetUserRole(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	interventionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid intervention id")
		return
	}

	intervention, err := h.service.Transition(c.Request.Context(), interventionID, action, role, payload)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to apply transition")
		return
	}

	common.SuccessResponse(c, intervention)
}

// RegisterRoutes registers intervention routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	interventions := r.Group("/api/v1/interventions")
	interventions.Use(middleware.AuthMiddleware(jwtSecret))
	{
		interventions.POST("", h.Create)
		interventions.GET("", h.List)
		interventions.GET("/stats", h.GetStats)
		interventions.GET("/:id", h.Get)
		interventions.POST("/:id/approve", h.Approve)
		interventions.POST("/:id/reject", h.Reject)
		interventions.POST("/:id/rdv", h.PlanRdv)
		interventions.POST("/:id/complete", h.Complete)
	}
}
