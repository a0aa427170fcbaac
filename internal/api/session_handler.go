package api

import (
	"errors"
	"net/http"
	"strconv"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/repository"
	"mstolbov/liftlog/internal/service"
	"mstolbov/liftlog/internal/session"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler exposes the live workout and routine edit session lifecycle.
// All endpoints operate on the authenticated user's single session, owned by
// the manager.
type SessionHandler struct {
	manager        *session.Manager
	routineService service.RoutineService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(manager *session.Manager, routineService service.RoutineService) *SessionHandler {
	return &SessionHandler{manager: manager, routineService: routineService}
}

// --- DTOs ---

type StartSessionRequest struct {
	RoutineID string `json:"routineId" binding:"required"`
}

type StartEmptySessionRequest struct {
	Title string `json:"title"`
}

type SessionStateResponse struct {
	State      string              `json:"state"`
	Mode       string              `json:"mode"`
	Title      string              `json:"title"`
	RoutineID  string              `json:"routineId,omitempty"`
	Elapsed    int                 `json:"elapsed"`
	Started    bool                `json:"started"`
	Stats      session.Stats       `json:"stats"`
	Countdowns map[string]int      `json:"countdowns"`
	Entries    []session.EntryView `json:"entries"`
}

type AddExercisesRequest struct {
	ExerciseIDs []string `json:"exerciseIds" binding:"required,min=1"`
}

// UpdateSetRequest carries set-level edits. Numeric fields are strings so a
// client can distinguish "leave untouched" (field absent), "clear" (empty
// string) and an explicit value. MinReps and MaxReps travel together.
type UpdateSetRequest struct {
	Weight   *string `json:"weight"`
	Reps     *string `json:"reps"`
	MinReps  *string `json:"minReps"`
	MaxReps  *string `json:"maxReps"`
	Duration *string `json:"duration"`
	Type     *string `json:"type" binding:"omitempty,oneof=warmup normal dropset failure"`
}

type UpdateEntryRequest struct {
	Notes            *string `json:"notes"`
	RestTimerSeconds *int    `json:"restTimerSeconds" binding:"omitempty,min=0"`
	Unit             *string `json:"unit" binding:"omitempty,oneof=kg lbs"`
	RepsType         *string `json:"repsType" binding:"omitempty,oneof=reps range"`
}

type RestCountdownRequest struct {
	Key          string `json:"key" binding:"required"`
	DeltaSeconds int    `json:"deltaSeconds"`
}

type UpdateSessionTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

type FinishSessionRequest struct {
	Propagate bool `json:"propagate"`
}

type FinishSessionResponse struct {
	Workout   WorkoutResponse `json:"workout"`
	SyncError string          `json:"syncError,omitempty"`
}

type SaveAsRoutineRequest struct {
	Name string `json:"name" binding:"required"`
}

// --- Handler Methods ---

// StartSession begins a workout session from a routine. Any previous session
// of the user is discarded.
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	routineID, err := primitive.ObjectIDFromHex(req.RoutineID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routine ID format.")
		return
	}

	sess, err := h.manager.Start(c.Request.Context(), userID, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Routine not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to start session")
		}
		return
	}
	c.JSON(http.StatusCreated, mapSessionState(sess))
}

// StartEmptySession begins a workout session with no routine behind it.
func (h *SessionHandler) StartEmptySession(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}

	var req StartEmptySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	sess, err := h.manager.StartEmpty(userID, req.Title)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to start session")
		return
	}
	c.JSON(http.StatusCreated, mapSessionState(sess))
}

// StartEditSession begins a routine edit session: the same machine without
// the elapsed clock, rest countdowns and Finish.
func (h *SessionHandler) StartEditSession(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	routineID, err := primitive.ObjectIDFromHex(req.RoutineID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routine ID format.")
		return
	}

	sess, err := h.manager.StartEdit(c.Request.Context(), userID, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Routine not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to start edit session")
		}
		return
	}
	c.JSON(http.StatusCreated, mapSessionState(sess))
}

// GetSession returns the current state of the user's live session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mapSessionState(sess))
}

// UpdateSessionTitle overrides the title used for the finished workout or
// saved routine.
func (h *SessionHandler) UpdateSessionTitle(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	var req UpdateSessionTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	sess.SetTitle(req.Title)
	c.JSON(http.StatusOK, mapSessionState(sess))
}

// AddExercises appends catalog exercises to the session.
func (h *SessionHandler) AddExercises(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	var req AddExercisesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ids := make([]primitive.ObjectID, 0, len(req.ExerciseIDs))
	for _, raw := range req.ExerciseIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format: "+raw)
			return
		}
		ids = append(ids, id)
	}

	if err := sess.AddExercises(c.Request.Context(), ids); err != nil {
		if errors.Is(err, session.ErrNotActive) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add exercises")
		}
		return
	}
	c.JSON(http.StatusOK, mapSessionState(sess))
}

// UpdateEntry edits an exercise entry's configuration: notes, rest timer,
// weight unit and reps type.
func (h *SessionHandler) UpdateEntry(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if req.Notes != nil {
		sess.UpdateNotes(exerciseID, *req.Notes)
	}
	if req.RestTimerSeconds != nil {
		sess.UpdateRestTimer(exerciseID, *req.RestTimerSeconds)
	}
	if req.Unit != nil {
		sess.UpdateUnit(exerciseID, domain.WeightUnit(*req.Unit))
	}
	if req.RepsType != nil {
		sess.UpdateRepsType(exerciseID, domain.RepsType(*req.RepsType))
	}
	c.JSON(http.StatusOK, mapSessionState(sess))
}

// AddSet appends a default set to an exercise entry.
func (h *SessionHandler) AddSet(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	sess.AddSet(exerciseID)
	c.JSON(http.StatusOK, mapSessionState(sess))
}

// UpdateSet edits one set's numbers and type.
func (h *SessionHandler) UpdateSet(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	exerciseID, setIndex, ok := setParams(c)
	if !ok {
		return
	}

	var req UpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if (req.MinReps == nil) != (req.MaxReps == nil) {
		abortWithError(c, http.StatusBadRequest, "minReps and maxReps must be updated together.")
		return
	}

	if req.Weight != nil {
		sess.UpdateSetWeight(exerciseID, setIndex, domain.ParseOptionalFloat(*req.Weight))
	}
	if req.Reps != nil {
		sess.UpdateSetReps(exerciseID, setIndex, domain.ParseOptionalInt(*req.Reps))
	}
	if req.MinReps != nil {
		sess.UpdateSetRepRange(exerciseID, setIndex,
			domain.ParseOptionalInt(*req.MinReps), domain.ParseOptionalInt(*req.MaxReps))
	}
	if req.Duration != nil {
		sess.UpdateSetDuration(exerciseID, setIndex, domain.ParseOptionalInt(*req.Duration))
	}
	if req.Type != nil {
		sess.ChangeSetType(exerciseID, setIndex, domain.SetType(*req.Type))
	}
	c.JSON(http.StatusOK, mapSessionState(sess))
}

// RemoveSet deletes one set by index.
func (h *SessionHandler) RemoveSet(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	exerciseID, setIndex, ok := setParams(c)
	if !ok {
		return
	}
	sess.RemoveSet(exerciseID, setIndex)
	c.JSON(http.StatusOK, mapSessionState(sess))
}

// ToggleSetComplete flips one set's completion, starting or cancelling its
// rest countdown.
func (h *SessionHandler) ToggleSetComplete(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	exerciseID, setIndex, ok := setParams(c)
	if !ok {
		return
	}
	sess.ToggleSetComplete(exerciseID, setIndex)
	c.JSON(http.StatusOK, mapSessionState(sess))
}

// AdjustRest shifts a running rest countdown by deltaSeconds, clamped at zero.
func (h *SessionHandler) AdjustRest(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	var req RestCountdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	sess.AdjustRest(req.Key, req.DeltaSeconds)
	c.JSON(http.StatusOK, gin.H{"countdowns": sess.ActiveCountdowns()})
}

// SkipRest cancels a running rest countdown.
func (h *SessionHandler) SkipRest(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	var req RestCountdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	sess.SkipRest(req.Key)
	c.JSON(http.StatusOK, gin.H{"countdowns": sess.ActiveCountdowns()})
}

// FinishSession ends the workout: persists the workout record and, when
// propagate is set, syncs session edits back to the backing routine.
func (h *SessionHandler) FinishSession(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}
	sess, found := h.manager.Get(userID)
	if !found {
		abortWithError(c, http.StatusNotFound, "No active session")
		return
	}

	var req FinishSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	workout, err := sess.Finish(c.Request.Context(), req.Propagate)
	if workout == nil && err != nil {
		switch {
		case errors.Is(err, session.ErrNoCompletedSets):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, session.ErrNotWorkout), errors.Is(err, session.ErrNotActive), errors.Is(err, session.ErrFinishInFlight):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to finish workout")
		}
		return
	}
	h.manager.Remove(userID)

	resp := FinishSessionResponse{Workout: MapWorkoutToResponse(workout)}
	if err != nil {
		// The workout is committed; only the routine sync failed.
		resp.SyncError = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// SaveSession is the terminal transition of a routine edit session: it writes
// the edited composition back to the routine.
func (h *SessionHandler) SaveSession(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}
	sess, found := h.manager.Get(userID)
	if !found {
		abortWithError(c, http.StatusNotFound, "No active session")
		return
	}

	if err := sess.Save(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, session.ErrNotRoutineEdit), errors.Is(err, session.ErrNotActive),
			errors.Is(err, session.ErrFinishInFlight), errors.Is(err, session.ErrNoRoutine):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to save routine")
		}
		return
	}
	h.manager.Remove(userID)
	c.Status(http.StatusNoContent)
}

// DiscardSession drops the session without writing anything.
func (h *SessionHandler) DiscardSession(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}
	h.manager.Release(userID)
	c.Status(http.StatusNoContent)
}

// SaveAsRoutine persists the current session's exercises as a brand new
// routine without ending the session.
func (h *SessionHandler) SaveAsRoutine(c *gin.Context) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return
	}
	sess, found := h.manager.Get(userID)
	if !found {
		abortWithError(c, http.StatusNotFound, "No active session")
		return
	}

	var req SaveAsRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	views := sess.Entries()
	order := make([]primitive.ObjectID, 0, len(views))
	entries := make(map[primitive.ObjectID]*domain.ExerciseEntry, len(views))
	for i := range views {
		order = append(order, views[i].Entry.ExerciseID)
		entries[views[i].Entry.ExerciseID] = &views[i].Entry
	}

	routine, err := h.routineService.CreateFromEntries(c.Request.Context(), userID, req.Name, order, entries)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to save routine")
		}
		return
	}
	c.JSON(http.StatusCreated, MapRoutineToResponse(routine))
}

// --- Helpers ---

func (h *SessionHandler) currentSession(c *gin.Context) (*session.Session, bool) {
	userID, ok := userIDFromToken(c)
	if !ok {
		return nil, false
	}
	sess, found := h.manager.Get(userID)
	if !found {
		abortWithError(c, http.StatusNotFound, "No active session")
		return nil, false
	}
	return sess, true
}

func setParams(c *gin.Context) (primitive.ObjectID, int, bool) {
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return primitive.NilObjectID, 0, false
	}
	setIndex, err := strconv.Atoi(c.Param("setIndex"))
	if err != nil || setIndex < 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid set index.")
		return primitive.NilObjectID, 0, false
	}
	return exerciseID, setIndex, true
}

func mapSessionState(sess *session.Session) SessionStateResponse {
	resp := SessionStateResponse{
		State:      string(sess.State()),
		Mode:       "workout",
		Title:      sess.Title(),
		Elapsed:    sess.Elapsed(),
		Started:    sess.Started(),
		Stats:      sess.Stats(),
		Countdowns: sess.ActiveCountdowns(),
		Entries:    sess.Entries(),
	}
	if sess.Mode() == session.ModeRoutineEdit {
		resp.Mode = "routineEdit"
	}
	if id := sess.RoutineID(); id != nil {
		resp.RoutineID = id.Hex()
	}
	return resp
}
