package api

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/service"
	"alcyxob/fitsho/internal/storage"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	workoutService  service.WorkoutService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, workoutService service.WorkoutService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, workoutService: workoutService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating a custom exercise.
type CreateExerciseRequest struct {
	Name             string    `json:"name" binding:"required,max=100"`
	MuscleGroup      string    `json:"muscleGroup" binding:"required"`
	Equipment        string    `json:"equipment" binding:"required"`
	SecondaryMuscles *[]string `json:"secondaryMuscles"`
	Instructions     *[]string `json:"instructions"`
}

type ImageUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmImageRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	MuscleGroup      string    `json:"muscleGroup"`
	Equipment        string    `json:"equipment"`
	ImageURL         *string   `json:"imageUrl,omitempty"`
	Instructions     *[]string `json:"instructions,omitempty"`
	SecondaryMuscles *[]string `json:"secondaryMuscles,omitempty"`
	IsCustom         bool      `json:"isCustom"`
	UserID           *string   `json:"userId,omitempty"`
}

// ExercisePageResponse is one page of the catalog.
type ExercisePageResponse struct {
	Page           []ExerciseResponse `json:"page"`
	ContinueCursor string             `json:"continueCursor,omitempty"`
	IsDone         bool               `json:"isDone"`
	Status         domain.PageStatus  `json:"status"`
}

// MapExerciseToResponse converts a service.ExerciseView to ExerciseResponse DTO.
func MapExerciseToResponse(ex *service.ExerciseView) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	resp := ExerciseResponse{
		ID:               ex.ID.Hex(),
		Name:             ex.Name,
		MuscleGroup:      ex.MuscleGroup,
		Equipment:        ex.Equipment,
		ImageURL:         ex.ImageURL,
		Instructions:     ex.Instructions,
		SecondaryMuscles: ex.SecondaryMuscles,
		IsCustom:         ex.IsCustom,
	}
	if ex.UserID != nil {
		owner := ex.UserID.Hex()
		resp.UserID = &owner
	}
	return resp
}

// MapExercisesToResponse converts a slice of views to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []service.ExerciseView) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// ListExercises godoc
// @Summary List the exercise catalog
// @Description Cursor-paginated catalog, optionally filtered by muscle group and equipment.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param muscleGroup query string false "Muscle group filter"
// @Param equipment query string false "Equipment filter"
// @Param cursor query string false "Continue cursor from the previous page"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} ExercisePageResponse
// @Failure 400 {object} gin.H "Invalid cursor or page size"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	pageSize := 0
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			abortWithError(c, http.StatusBadRequest, "pageSize must be a positive integer.")
			return
		}
		pageSize = n
	}

	page, err := h.exerciseService.ListPage(c.Request.Context(), userID, c.Query("muscleGroup"), c.Query("equipment"), c.Query("cursor"), pageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCursor) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR: Listing exercises: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}

	c.JSON(http.StatusOK, ExercisePageResponse{
		Page:           MapExercisesToResponse(page.Exercises),
		ContinueCursor: page.ContinueCursor,
		IsDone:         page.IsDone,
		Status:         page.Status,
	})
}

// PickerExercises godoc
// @Summary Exercises for the workout picker
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param muscleGroup query string false "Muscle group filter"
// @Param q query string false "Name search"
// @Success 200 {array} ExerciseResponse
// @Router /exercises/picker [get]
func (h *ExerciseHandler) PickerExercises(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exercises, err := h.exerciseService.Picker(c.Request.Context(), userID, c.Query("muscleGroup"), c.Query("q"))
	if err != nil {
		log.Printf("ERROR: Loading picker exercises: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// MuscleGroups godoc
// @Summary Distinct muscle groups of the catalog
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Router /exercises/muscle-groups [get]
func (h *ExerciseHandler) MuscleGroups(c *gin.Context) {
	groups, err := h.exerciseService.MuscleGroups(c.Request.Context())
	if err != nil {
		log.Printf("ERROR: Loading muscle groups: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve muscle groups.")
		return
	}
	c.JSON(http.StatusOK, groups)
}

// Equipment godoc
// @Summary Distinct equipment of the catalog
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Router /exercises/equipment [get]
func (h *ExerciseHandler) Equipment(c *gin.Context) {
	equipment, err := h.exerciseService.EquipmentList(c.Request.Context())
	if err != nil {
		log.Printf("ERROR: Loading equipment list: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve equipment.")
		return
	}
	c.JSON(http.StatusOK, equipment)
}

// GetExercise godoc
// @Summary Get one exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} gin.H "Not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), userID, exerciseID)
	if err != nil {
		h.handleExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// CreateExercise godoc
// @Summary Create a custom exercise
// @Description Adds an exercise visible only to the authenticated user.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateCustomExercise(c.Request.Context(), userID, service.CustomExerciseInput{
		Name:             req.Name,
		MuscleGroup:      req.MuscleGroup,
		Equipment:        req.Equipment,
		SecondaryMuscles: req.SecondaryMuscles,
		Instructions:     req.Instructions,
	})
	if err != nil {
		h.handleExerciseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// RequestImageUploadURL godoc
// @Summary Presigned upload URL for a custom exercise image
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param request body ImageUploadURLRequest true "Image content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 403 {object} gin.H "Not a custom exercise of the user"
// @Failure 503 {object} gin.H "Image storage not configured"
// @Router /exercises/{id}/image-upload-url [post]
func (h *ExerciseHandler) RequestImageUploadURL(c *gin.Context) {
	var req ImageUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	resp, err := h.exerciseService.RequestImageUploadURL(c.Request.Context(), userID, exerciseID, req.ContentType)
	if err != nil {
		h.handleExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmImageUpload godoc
// @Summary Attach an uploaded image to a custom exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param request body ConfirmImageRequest true "Uploaded object key"
// @Success 200 {object} ExerciseResponse
// @Router /exercises/{id}/image [put]
func (h *ExerciseHandler) ConfirmImageUpload(c *gin.Context) {
	var req ConfirmImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.ConfirmImageUpload(c.Request.Context(), userID, exerciseID, req.ObjectKey)
	if err != nil {
		h.handleExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// LastPerformance godoc
// @Summary Sets logged for the exercise in the most recent completed workout
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} LastPerformanceResponse
// @Router /exercises/{id}/last-performance [get]
func (h *ExerciseHandler) LastPerformance(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	perf, err := h.workoutService.LastPerformance(c.Request.Context(), userID, exerciseID)
	if err != nil {
		log.Printf("ERROR: Loading last performance of %s: %v", exerciseID.Hex(), err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercise history.")
		return
	}
	c.JSON(http.StatusOK, MapLastPerformanceToResponse(perf))
}

func (h *ExerciseHandler) handleExerciseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExerciseAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrInvalidObjectKey),
		errors.Is(err, storage.ErrUnsupportedContentType):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrImageNotUploaded):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStorageDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("ERROR: Exercise request failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
