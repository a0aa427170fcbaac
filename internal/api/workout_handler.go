package api

import (
	"errors"
	"net/http"
	"time"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

type WorkoutResponse struct {
	ID        string    `json:"id"`
	RoutineID string    `json:"routineId,omitempty"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Duration  int       `json:"duration"`
	Volume    int       `json:"volume"`
	Sets      int       `json:"sets"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateWorkoutTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// MapWorkoutToResponse converts a domain.Workout to WorkoutResponse DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	resp := WorkoutResponse{
		ID:        w.ID.Hex(),
		Date:      w.Date,
		Title:     w.Title,
		Duration:  w.Duration,
		Volume:    w.Volume,
		Sets:      w.Sets,
		CreatedAt: w.CreatedAt,
	}
	if w.RoutineID != nil {
		resp.RoutineID = w.RoutineID.Hex()
	}
	return resp
}

// --- Handler Methods ---

// GetHistory lists the authenticated user's finished workouts.
func (h *WorkoutHandler) GetHistory(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}

	workouts, err := h.workoutService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch workout history")
		return
	}

	responses := make([]WorkoutResponse, len(workouts))
	for i, w := range workouts {
		responses[i] = MapWorkoutToResponse(&w)
	}
	c.JSON(http.StatusOK, responses)
}

// GetWorkout returns a single finished workout.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workoutID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.GetWorkoutByID(c.Request.Context(), workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch workout")
		}
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// UpdateWorkoutTitle renames a finished workout.
func (h *WorkoutHandler) UpdateWorkoutTitle(c *gin.Context) {
	workoutID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateWorkoutTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	workout, err := h.workoutService.UpdateWorkoutTitle(c.Request.Context(), workoutID, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update workout")
		}
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}
