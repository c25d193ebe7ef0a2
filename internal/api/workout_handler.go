package api

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/service"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves completed workout history.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type SetResponse struct {
	SetNumber   int       `json:"setNumber"`
	Weight      float64   `json:"weight"`
	Reps        int       `json:"reps"`
	RPE         *float64  `json:"rpe,omitempty"`
	IsWarmup    bool      `json:"isWarmup"`
	CompletedAt time.Time `json:"completedAt"`
}

// WorkoutExerciseResponse carries the catalog details of the entry. They are
// omitted when the exercise has since been removed from the catalog.
type WorkoutExerciseResponse struct {
	ExerciseID  string        `json:"exerciseId"`
	Name        string        `json:"name,omitempty"`
	MuscleGroup string        `json:"muscleGroup,omitempty"`
	Equipment   string        `json:"equipment,omitempty"`
	Order       int           `json:"order"`
	Sets        []SetResponse `json:"sets"`
}

type WorkoutResponse struct {
	ID          string                    `json:"id"`
	Name        *string                   `json:"name,omitempty"`
	StartedAt   time.Time                 `json:"startedAt"`
	CompletedAt *time.Time                `json:"completedAt,omitempty"`
	Notes       *string                   `json:"notes,omitempty"`
	Exercises   []WorkoutExerciseResponse `json:"exercises"`
}

type LastPerformanceResponse struct {
	WorkoutID *string       `json:"workoutId"`
	Date      *time.Time    `json:"date"`
	Sets      []SetResponse `json:"sets"`
}

func mapSets(sets []domain.Set) []SetResponse {
	out := make([]SetResponse, len(sets))
	for i, s := range sets {
		out[i] = SetResponse{
			SetNumber:   s.SetNumber,
			Weight:      s.Weight,
			Reps:        s.Reps,
			RPE:         s.RPE,
			IsWarmup:    s.IsWarmup,
			CompletedAt: s.CompletedAt,
		}
	}
	return out
}

// MapWorkoutToResponse converts a service.WorkoutView to WorkoutResponse DTO.
func MapWorkoutToResponse(w *service.WorkoutView) WorkoutResponse {
	resp := WorkoutResponse{
		ID:          w.ID.Hex(),
		Name:        w.Name,
		StartedAt:   w.StartedAt,
		CompletedAt: w.CompletedAt,
		Notes:       w.Notes,
		Exercises:   make([]WorkoutExerciseResponse, len(w.Entries)),
	}
	for i, e := range w.Entries {
		entry := WorkoutExerciseResponse{
			ExerciseID: e.ExerciseID.Hex(),
			Order:      e.Order,
			Sets:       mapSets(e.Sets),
		}
		if e.Exercise != nil {
			entry.Name = e.Exercise.Name
			entry.MuscleGroup = e.Exercise.MuscleGroup
			entry.Equipment = e.Exercise.Equipment
		}
		resp.Exercises[i] = entry
	}
	return resp
}

func MapWorkoutsToResponse(workouts []service.WorkoutView) []WorkoutResponse {
	out := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		out[i] = MapWorkoutToResponse(&workouts[i])
	}
	return out
}

// MapLastPerformanceToResponse renders a missing history as null fields and no sets.
func MapLastPerformanceToResponse(perf *domain.LastPerformance) LastPerformanceResponse {
	if perf == nil {
		return LastPerformanceResponse{Sets: []SetResponse{}}
	}
	id := perf.WorkoutID.Hex()
	date := perf.Date
	return LastPerformanceResponse{WorkoutID: &id, Date: &date, Sets: mapSets(perf.Sets)}
}

// requestLocation reads the optional IANA "tz" query parameter. Defaults to UTC.
func requestLocation(c *gin.Context) (*time.Location, bool) {
	tz := c.Query("tz")
	if tz == "" {
		return time.UTC, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Unknown time zone.")
		return nil, false
	}
	return loc, true
}

// ListWorkouts godoc
// @Summary Workouts of one calendar day
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param tz query string false "IANA time zone of the day, UTC by default"
// @Success 200 {array} WorkoutResponse
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	loc, ok := requestLocation(c)
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		date = time.Now().In(loc).Format(domain.DateLayout)
	}

	workouts, err := h.workoutService.WorkoutsOnDate(c.Request.Context(), userID, date, loc)
	if err != nil {
		h.handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// WorkoutDays godoc
// @Summary Days of a month that have workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param month query string true "Month (YYYY-MM)"
// @Param tz query string false "IANA time zone, UTC by default"
// @Success 200 {array} string
// @Router /workouts/days [get]
func (h *WorkoutHandler) WorkoutDays(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	loc, ok := requestLocation(c)
	if !ok {
		return
	}
	month := c.Query("month")
	if month == "" {
		month = time.Now().In(loc).Format(service.MonthLayout)
	}

	days, err := h.workoutService.WorkoutDays(c.Request.Context(), userID, month, loc)
	if err != nil {
		h.handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

// RecentWorkouts godoc
// @Summary Most recent workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of workouts (default 10)"
// @Success 200 {array} WorkoutResponse
// @Router /workouts/recent [get]
func (h *WorkoutHandler) RecentWorkouts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	workouts, err := h.workoutService.RecentWorkouts(c.Request.Context(), userID, limit)
	if err != nil {
		h.handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// GetWorkout godoc
// @Summary Get one workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.GetWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		h.handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

func (h *WorkoutHandler) handleWorkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: Workout request failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workouts.")
	}
}
