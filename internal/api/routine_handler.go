package api

import (
	"errors"
	"net/http"
	"time"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineHandler holds the routine service dependency.
type RoutineHandler struct {
	routineService service.RoutineService
}

// NewRoutineHandler creates a new RoutineHandler.
func NewRoutineHandler(routineService service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// --- DTOs ---

type CreateRoutineRequest struct {
	Name string `json:"name" binding:"required"`
}

type RoutineResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapRoutineToResponse converts a domain.Routine to RoutineResponse DTO.
func MapRoutineToResponse(r *domain.Routine) RoutineResponse {
	if r == nil {
		return RoutineResponse{}
	}
	return RoutineResponse{
		ID:        r.ID.Hex(),
		Name:      r.Name,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

// --- Handler Methods ---

// CreateRoutine creates an empty routine for the authenticated user.
// Composition is added through an edit session.
func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}

	var req CreateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	routine, err := h.routineService.CreateRoutine(c.Request.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create routine")
		}
		return
	}
	c.JSON(http.StatusCreated, MapRoutineToResponse(routine))
}

// GetRoutines lists the authenticated user's routines.
func (h *RoutineHandler) GetRoutines(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}

	routines, err := h.routineService.GetRoutines(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch routines")
		return
	}

	responses := make([]RoutineResponse, len(routines))
	for i, r := range routines {
		responses[i] = MapRoutineToResponse(&r)
	}
	c.JSON(http.StatusOK, responses)
}

// GetRoutine returns a routine with its full composition.
func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	routineID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.routineService.GetRoutineDetail(c.Request.Context(), routineID)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch routine")
		}
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteRoutine removes a routine and its composition.
func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	routineID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.routineService.DeleteRoutine(c.Request.Context(), routineID); err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete routine")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// userIDFromToken resolves the authenticated user's ObjectID from the JWT
// claims set by AuthMiddleware.
func userIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}
