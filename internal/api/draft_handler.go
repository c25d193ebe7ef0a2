package api

import (
	"alcyxob/fitsho/internal/draft"
	"alcyxob/fitsho/internal/service"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Client paths returned as navigation hints.
const (
	pathWorkoutStart = "/workout"
	pathWorkoutPick  = "/workout/pick"
	pathWorkoutLog   = "/workout/log"
	pathWorkoutDone  = "/workout/done"
)

// DraftHandler serves the in-progress workout of the caller's session.
type DraftHandler struct {
	drafts          *draft.Manager
	exerciseService service.ExerciseService
}

func NewDraftHandler(drafts *draft.Manager, exerciseService service.ExerciseService) *DraftHandler {
	return &DraftHandler{drafts: drafts, exerciseService: exerciseService}
}

// --- DTOs ---

type AddDraftExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

type SwitchExerciseRequest struct {
	Index *int `json:"index" binding:"required"`
}

// AddSetRequest is validated here so an invalid set never reaches the draft.
type AddSetRequest struct {
	Weight   *float64 `json:"weight" binding:"required,gte=0"`
	Reps     int      `json:"reps" binding:"required,gte=1"`
	RPE      *float64 `json:"rpe" binding:"omitempty,gte=0,lte=10"` // draft.MaxRPE
	IsWarmup bool     `json:"isWarmup"`
}

type DraftSetResponse struct {
	Weight    float64  `json:"weight"`
	Reps      int      `json:"reps"`
	RPE       *float64 `json:"rpe,omitempty"`
	IsWarmup  bool     `json:"isWarmup"`
	SetNumber *int     `json:"setNumber"` // Working set number, null for warmups
}

type DraftExerciseResponse struct {
	ExerciseID  string             `json:"exerciseId"`
	Name        string             `json:"name"`
	MuscleGroup string             `json:"muscleGroup"`
	Sets        []DraftSetResponse `json:"sets"`
	WorkingSets int                `json:"workingSets"`
}

type DraftResponse struct {
	StartedAt            time.Time               `json:"startedAt"`
	Exercises            []DraftExerciseResponse `json:"exercises"`
	CurrentExerciseIndex int                     `json:"currentExerciseIndex"`
	HasExercises         bool                    `json:"hasExercises"`
	NextPath             string                  `json:"nextPath"`
}

type CompleteDraftResponse struct {
	WorkoutID string `json:"workoutId,omitempty"`
	Discarded bool   `json:"discarded"`
	Redirect  string `json:"redirect"`
}

// MapDraftToResponse converts a draft into its API shape with derived set numbers.
func MapDraftToResponse(d *draft.WorkoutDraft) DraftResponse {
	resp := DraftResponse{
		StartedAt:            d.StartTime(),
		Exercises:            make([]DraftExerciseResponse, len(d.Exercises)),
		CurrentExerciseIndex: d.CurrentExerciseIndex,
		HasExercises:         d.HasExercises(),
		NextPath:             pathWorkoutLog,
	}
	if !resp.HasExercises {
		resp.NextPath = pathWorkoutPick
	}
	for i := range d.Exercises {
		e := &d.Exercises[i]
		numbers := e.WorkingSetNumbers()
		sets := make([]DraftSetResponse, len(e.Sets))
		for j, s := range e.Sets {
			sets[j] = DraftSetResponse{Weight: s.Weight, Reps: s.Reps, RPE: s.RPE, IsWarmup: s.IsWarmup}
			if numbers[j] > 0 {
				n := numbers[j]
				sets[j].SetNumber = &n
			}
		}
		resp.Exercises[i] = DraftExerciseResponse{
			ExerciseID:  e.ExerciseID,
			Name:        e.Name,
			MuscleGroup: e.MuscleGroup,
			Sets:        sets,
			WorkingSets: e.WorkingSets(),
		}
	}
	return resp
}

// --- Handler Methods ---

// GetDraft godoc
// @Summary Current workout draft of the session
// @Tags Workout Draft
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DraftResponse
// @Failure 404 {object} gin.H "No active workout"
// @Router /workout/draft [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	d, err := session.Read(c.Request.Context())
	h.respond(c, http.StatusOK, d, err)
}

// StartDraft godoc
// @Summary Start a new workout, replacing any draft of the session
// @Tags Workout Draft
// @Produce json
// @Security BearerAuth
// @Success 201 {object} DraftResponse
// @Router /workout/draft [post]
func (h *DraftHandler) StartDraft(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	d, err := session.Start(c.Request.Context())
	h.respond(c, http.StatusCreated, d, err)
}

// DiscardDraft godoc
// @Summary Discard the session's workout draft
// @Tags Workout Draft
// @Security BearerAuth
// @Success 204
// @Router /workout/draft [delete]
func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.Discard(c.Request.Context()); err != nil {
		log.Printf("ERROR: Discarding draft %s: %v", session.Key(), err)
		abortWithError(c, http.StatusInternalServerError, "Failed to discard workout.")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise godoc
// @Summary Add a catalog exercise to the draft and make it current
// @Tags Workout Draft
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddDraftExerciseRequest true "Exercise to add"
// @Success 200 {object} DraftResponse
// @Failure 404 {object} gin.H "No active workout or unknown exercise"
// @Router /workout/draft/exercises [post]
func (h *DraftHandler) AddExercise(c *gin.Context) {
	var req AddDraftExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exerciseID, err := parseObjectID(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}

	// Name and muscle group are copied now and never re-synced with the catalog.
	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), userID, exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("ERROR: Loading exercise %s for draft: %v", exerciseID.Hex(), err)
		abortWithError(c, http.StatusInternalServerError, "Failed to load exercise.")
		return
	}

	d, err := session.AddExercise(c.Request.Context(), draft.ExerciseRef{
		ExerciseID:  exercise.ID.Hex(),
		Name:        exercise.Name,
		MuscleGroup: exercise.MuscleGroup,
	})
	h.respond(c, http.StatusOK, d, err)
}

// SwitchExercise godoc
// @Summary Make another exercise of the draft current
// @Description Out-of-range indices leave the draft unchanged.
// @Tags Workout Draft
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SwitchExerciseRequest true "Exercise index"
// @Success 200 {object} DraftResponse
// @Router /workout/draft/current [put]
func (h *DraftHandler) SwitchExercise(c *gin.Context) {
	var req SwitchExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	d, err := session.SwitchExercise(c.Request.Context(), *req.Index)
	h.respond(c, http.StatusOK, d, err)
}

// AddSet godoc
// @Summary Log a set for the current exercise
// @Tags Workout Draft
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddSetRequest true "Set details"
// @Success 200 {object} DraftResponse
// @Failure 400 {object} gin.H "Invalid set"
// @Router /workout/draft/sets [post]
func (h *DraftHandler) AddSet(c *gin.Context) {
	var req AddSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	set := draft.DraftSet{Weight: *req.Weight, Reps: req.Reps, RPE: req.RPE, IsWarmup: req.IsWarmup}
	if !set.Valid() {
		abortWithError(c, http.StatusBadRequest, "Weight must be a non-negative number and reps at least 1.")
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	d, err := session.AddSet(c.Request.Context(), set)
	h.respond(c, http.StatusOK, d, err)
}

// RemoveSet godoc
// @Summary Remove a set of the current exercise
// @Description Later sets shift down by one. Out-of-range indices leave the draft unchanged.
// @Tags Workout Draft
// @Produce json
// @Security BearerAuth
// @Param index path int true "Set index"
// @Success 200 {object} DraftResponse
// @Router /workout/draft/sets/{index} [delete]
func (h *DraftHandler) RemoveSet(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Set index must be an integer.")
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	d, err := session.RemoveSet(c.Request.Context(), index)
	h.respond(c, http.StatusOK, d, err)
}

// CompleteDraft godoc
// @Summary Finish the workout
// @Description Exercises without sets are dropped. With nothing logged the draft is discarded and no workout is written.
// @Tags Workout Draft
// @Produce json
// @Security BearerAuth
// @Success 201 {object} CompleteDraftResponse "Workout saved"
// @Success 200 {object} CompleteDraftResponse "Nothing logged, draft discarded"
// @Failure 404 {object} gin.H "No active workout"
// @Failure 409 {object} gin.H "Another request is already saving this workout"
// @Failure 502 {object} gin.H "Workout could not be saved; the draft is kept"
// @Router /workout/draft/complete [post]
func (h *DraftHandler) CompleteDraft(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	result, err := session.Complete(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, draft.ErrPersistFailed):
			log.Printf("ERROR: Saving workout from draft %s: %v", session.Key(), err)
			abortWithError(c, http.StatusBadGateway, "Failed to save workout. Your workout is still in progress, please try again.")
		case errors.Is(err, draft.ErrCompletionInProgress):
			abortWithError(c, http.StatusConflict, "This workout is already being saved.")
		case errors.Is(err, draft.ErrInvalidExerciseID):
			log.Printf("ERROR: Draft %s cannot be converted: %v", session.Key(), err)
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Printf("ERROR: Completing draft %s: %v", session.Key(), err)
			abortWithError(c, http.StatusInternalServerError, "Failed to complete workout.")
		}
		return
	}
	if result == nil {
		abortNoDraft(c)
		return
	}

	if result.Discarded {
		c.JSON(http.StatusOK, CompleteDraftResponse{Discarded: true, Redirect: pathWorkoutStart})
		return
	}
	c.JSON(http.StatusCreated, CompleteDraftResponse{WorkoutID: result.WorkoutID.Hex(), Redirect: pathWorkoutDone})
}

func (h *DraftHandler) session(c *gin.Context) (*draft.Session, bool) {
	userID, ok := mustUserID(c)
	if !ok {
		return nil, false
	}
	sessionID, err := getSessionIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Session not initialized.")
		return nil, false
	}
	return h.drafts.Session(userID, sessionID), true
}

func (h *DraftHandler) respond(c *gin.Context, status int, d *draft.WorkoutDraft, err error) {
	if err != nil {
		log.Printf("ERROR: Workout draft storage: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Workout draft storage is unavailable.")
		return
	}
	if d == nil {
		abortNoDraft(c)
		return
	}
	c.JSON(status, MapDraftToResponse(d))
}

func abortNoDraft(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
		"error":    "No active workout",
		"redirect": pathWorkoutStart,
	})
}
