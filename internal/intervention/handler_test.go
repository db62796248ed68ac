package intervention

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-manager/internal/workflow"
)

// ============================================================================
// Helper Functions
// ============================================================================

func setupTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	c.Request = req

	return c, w
}

func setUserContext(c *gin.Context, role workflow.Role) {
	c.Set("user_id", uuid.New())
	c.Set("user_role", role)
	c.Set("user_email", "test@example.com")
}

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	return response
}

func createTestHandler(repo *mockRepo) *Handler {
	return NewHandler(newTestService(repo, nil, nil))
}

// ============================================================================
// Create Intervention Handler Tests
// ============================================================================

func TestHandler_Create_Success(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	reqBody := CreateInterventionRequest{
		Vehicule:    "Porteur 19T",
		Immat:       "AB-123-CD",
		Description: "Remplacement plaquettes de frein",
		Garage:      "Garage Central",
	}

	repo.On("CreateIntervention", mock.Anything, mock.AnythingOfType("*intervention.Intervention")).Return(nil)

	c, w := setupTestContext("POST", "/api/v1/interventions", reqBody)
	setUserContext(c, workflow.RoleExploitant)

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	response := parseResponse(w)
	assert.True(t, response["success"].(bool))
	repo.AssertExpectations(t)
}

func TestHandler_Create_MissingDescription(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	c, w := setupTestContext("POST", "/api/v1/interventions", CreateInterventionRequest{
		Vehicule: "Porteur 19T",
		Immat:    "AB-123-CD",
	})
	setUserContext(c, workflow.RoleExploitant)

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "CreateIntervention", mock.Anything, mock.Anything)
}

func TestHandler_Create_InvalidJSON(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	c, w := setupTestContext("POST", "/api/v1/interventions", nil)
	c.Request = httptest.NewRequest("POST", "/api/v1/interventions", bytes.NewReader([]byte("{not json")))
	setUserContext(c, workflow.RoleExploitant)

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ============================================================================
// Transition Handler Tests
// ============================================================================

func TestHandler_Approve_Success(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	existing := testIntervention(workflow.StatusPending)
	repo.On("GetInterventionByID", mock.Anything, existing.ID).Return(existing, nil)
	repo.On("UpdateInterventionState", mock.Anything, mock.Anything).Return(nil)

	c, w := setupTestContext("POST", "/api/v1/interventions/"+existing.ID.String()+"/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: existing.ID.String()}}
	setUserContext(c, workflow.RoleDirecteur)

	handler.Approve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "approved_waiting_rdv", data["status"])
	repo.AssertExpectations(t)
}

func TestHandler_Approve_ForbiddenForExploitant(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	existing := testIntervention(workflow.StatusPending)
	repo.On("GetInterventionByID", mock.Anything, existing.ID).Return(existing, nil)

	c, w := setupTestContext("POST", "/api/v1/interventions/"+existing.ID.String()+"/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: existing.ID.String()}}
	setUserContext(c, workflow.RoleExploitant)

	handler.Approve(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	repo.AssertNotCalled(t, "UpdateInterventionState", mock.Anything, mock.Anything)
}

func TestHandler_Approve_ConflictWhenAlreadyApproved(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	existing := testIntervention(workflow.StatusApprovedWaitingRdv)
	repo.On("GetInterventionByID", mock.Anything, existing.ID).Return(existing, nil)

	c, w := setupTestContext("POST", "/api/v1/interventions/"+existing.ID.String()+"/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: existing.ID.String()}}
	setUserContext(c, workflow.RoleDirecteur)

	handler.Approve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_Approve_Unauthorized(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	interventionID := uuid.New()
	c, w := setupTestContext("POST", "/api/v1/interventions/"+interventionID.String()+"/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: interventionID.String()}}
	// No user context

	handler.Approve(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_PlanRdv_Success(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	existing := testIntervention(workflow.StatusApprovedWaitingRdv)
	repo.On("GetInterventionByID", mock.Anything, existing.ID).Return(existing, nil)
	repo.On("UpdateInterventionState", mock.Anything, mock.Anything).Return(nil)

	c, w := setupTestContext("POST", "/api/v1/interventions/"+existing.ID.String()+"/rdv", PlanRdvRequest{
		Date:     "2026-02-10",
		Time:     "09:30",
		Location: "Garage Central",
	})
	c.Params = gin.Params{{Key: "id", Value: existing.ID.String()}}
	setUserContext(c, workflow.RoleAgentParc)

	handler.PlanRdv(c)

	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "planned", data["status"])
	assert.Equal(t, "Garage Central", data["rdv_lieu"])
}

func TestHandler_PlanRdv_MissingFields(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	interventionID := uuid.New()
	c, w := setupTestContext("POST", "/api/v1/interventions/"+interventionID.String()+"/rdv", PlanRdvRequest{
		Date: "2026-02-10",
	})
	c.Params = gin.Params{{Key: "id", Value: interventionID.String()}}
	setUserContext(c, workflow.RoleAgentParc)

	handler.PlanRdv(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "GetInterventionByID", mock.Anything, mock.Anything)
}

func TestHandler_Complete_Success(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	existing := testIntervention(workflow.StatusPlanned)
	repo.On("GetInterventionByID", mock.Anything, existing.ID).Return(existing, nil)
	repo.On("UpdateInterventionState", mock.Anything, mock.Anything).Return(nil)

	c, w := setupTestContext("POST", "/api/v1/interventions/"+existing.ID.String()+"/complete", nil)
	c.Params = gin.Params{{Key: "id", Value: existing.ID.String()}}
	setUserContext(c, workflow.RoleAgentParc)

	handler.Complete(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Reject_InvalidID(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	c, w := setupTestContext("POST", "/api/v1/interventions/not-a-uuid/reject", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	setUserContext(c, workflow.RoleDirecteur)

	handler.Reject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ============================================================================
// Read Endpoints
// ============================================================================

func TestHandler_Get_NotFound(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	interventionID := uuid.New()
	repo.On("GetInterventionByID", mock.Anything, interventionID).Return(nil, pgx.ErrNoRows)

	c, w := setupTestContext("GET", "/api/v1/interventions/"+interventionID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: interventionID.String()}}
	setUserContext(c, workflow.RoleExploitant)

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_List_DefaultsExcludeRejected(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	repo.On("ListInterventions", mock.Anything, mock.MatchedBy(func(f *ListFilter) bool {
		return !f.IncludeRejected && f.Immat == ""
	})).Return([]Intervention{*testIntervention(workflow.StatusPending)}, nil)

	c, w := setupTestContext("GET", "/api/v1/interventions", nil)
	setUserContext(c, workflow.RoleExploitant)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
	repo.AssertExpectations(t)
}

func TestHandler_List_RejectedStatusOverridesDefaultFilter(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	repo.On("ListInterventions", mock.Anything, mock.MatchedBy(func(f *ListFilter) bool {
		return f.Status == workflow.StatusRejected && f.IncludeRejected
	})).Return([]Intervention{*testIntervention(workflow.StatusRejected)}, nil)

	c, w := setupTestContext("GET", "/api/v1/interventions?status=rejected", nil)
	setUserContext(c, workflow.RoleDirecteur)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestHandler_List_UnknownStatus(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	c, w := setupTestContext("GET", "/api/v1/interventions?status=archived", nil)
	setUserContext(c, workflow.RoleDirecteur)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "ListInterventions", mock.Anything, mock.Anything)
}

func TestHandler_List_InvalidVehicleID(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	c, w := setupTestContext("GET", "/api/v1/interventions?vehicle_id=nope", nil)
	setUserContext(c, workflow.RoleExploitant)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "ListInterventions", mock.Anything, mock.Anything)
}

func TestHandler_GetStats(t *testing.T) {
	repo := new(mockRepo)
	handler := createTestHandler(repo)

	repo.On("GetInterventionStats", mock.Anything).Return(&InterventionStats{Total: 3, Pending: 3}, nil)

	c, w := setupTestContext("GET", "/api/v1/interventions/stats", nil)
	setUserContext(c, workflow.RoleDirecteur)

	handler.GetStats(c)

	require.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total"])
}
