package service

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/repository" // Import repository package
	"alcyxob/fitsho/internal/storage"
	"context"
	"errors"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify this exercise")
	ErrValidationFailed     = errors.New("exercise validation failed")
	ErrInvalidCursor        = errors.New("invalid pagination cursor")
	ErrStorageDisabled      = errors.New("exercise image storage is not configured")
	ErrInvalidObjectKey     = errors.New("object key was not issued for this exercise")
	ErrUploadURLError       = errors.New("failed to generate upload URL")
	ErrImageNotUploaded     = errors.New("image has not been uploaded yet")
)

// MaxPageSize caps the catalog page size a client may ask for.
const MaxPageSize = 100

// ExerciseView is a catalog exercise with its image presigned for display.
type ExerciseView struct {
	domain.Exercise
	ImageURL *string
}

// CatalogPage is one page of the paginated catalog.
type CatalogPage struct {
	Exercises      []ExerciseView
	ContinueCursor string
	IsDone         bool
	Status         domain.PageStatus
}

// CustomExerciseInput carries the fields of a user-defined exercise.
type CustomExerciseInput struct {
	Name             string
	MuscleGroup      string
	Equipment        string
	SecondaryMuscles *[]string
	Instructions     *[]string
}

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type ExerciseService interface {
	ListPage(ctx context.Context, userID primitive.ObjectID, muscleGroup, equipment, cursor string, pageSize int) (*CatalogPage, error)
	Picker(ctx context.Context, userID primitive.ObjectID, muscleGroup, query string) ([]ExerciseView, error)
	MuscleGroups(ctx context.Context) ([]string, error)
	EquipmentList(ctx context.Context) ([]string, error)
	GetExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*ExerciseView, error)
	CreateCustomExercise(ctx context.Context, userID primitive.ObjectID, input CustomExerciseInput) (*ExerciseView, error)
	RequestImageUploadURL(ctx context.Context, userID, exerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmImageUpload(ctx context.Context, userID, exerciseID primitive.ObjectID, objectKey string) (*ExerciseView, error)
	SeedCatalog(ctx context.Context) (int, error)
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo    repository.ExerciseRepository
	fileStorage     storage.FileStorage // nil when no bucket is configured
	defaultPageSize int
}

// NewExerciseService creates a new instance of exerciseService.
// fileStorage may be nil, in which case exercises are served without images.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage, defaultPageSize int) ExerciseService {
	if defaultPageSize <= 0 || defaultPageSize > MaxPageSize {
		defaultPageSize = 20
	}
	return &exerciseService{
		exerciseRepo:    exerciseRepo,
		fileStorage:     fileStorage,
		defaultPageSize: defaultPageSize,
	}
}

// ListPage returns one page of the catalog visible to userID.
func (s *exerciseService) ListPage(ctx context.Context, userID primitive.ObjectID, muscleGroup, equipment, cursor string, pageSize int) (*CatalogPage, error) {
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	filter := domain.ExerciseFilter{MuscleGroup: muscleGroup, Equipment: equipment, ViewerID: userID}
	page, err := s.exerciseRepo.ListPage(ctx, filter, cursor, pageSize)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}

	return &CatalogPage{
		Exercises:      s.views(ctx, page.Results),
		ContinueCursor: page.ContinueCursor,
		IsDone:         page.IsDone,
		Status:         page.Status(),
	}, nil
}

// Picker returns the exercises offered when adding one to a workout, sorted
// by name and optionally narrowed by a case-insensitive name search.
func (s *exerciseService) Picker(ctx context.Context, userID primitive.ObjectID, muscleGroup, query string) ([]ExerciseView, error) {
	exercises, err := s.exerciseRepo.List(ctx, domain.ExerciseFilter{MuscleGroup: muscleGroup, ViewerID: userID})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, filterByName(exercises, query)), nil
}

func filterByName(exercises []domain.Exercise, query string) []domain.Exercise {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return exercises
	}
	matched := make([]domain.Exercise, 0, len(exercises))
	for _, e := range exercises {
		if strings.Contains(strings.ToLower(e.Name), query) {
			matched = append(matched, e)
		}
	}
	return matched
}

func (s *exerciseService) MuscleGroups(ctx context.Context) ([]string, error) {
	return s.exerciseRepo.MuscleGroups(ctx)
}

func (s *exerciseService) EquipmentList(ctx context.Context) ([]string, error) {
	return s.exerciseRepo.EquipmentList(ctx)
}

// GetExercise retrieves a single exercise. Another user's custom exercise reads as not found.
func (s *exerciseService) GetExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*ExerciseView, error) {
	exercise, err := s.visibleExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	view := s.view(ctx, *exercise)
	return &view, nil
}

// CreateCustomExercise adds a user-owned exercise to the catalog.
func (s *exerciseService) CreateCustomExercise(ctx context.Context, userID primitive.ObjectID, input CustomExerciseInput) (*ExerciseView, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required to create an exercise")
	}
	name := strings.TrimSpace(input.Name)
	muscleGroup := strings.ToLower(strings.TrimSpace(input.MuscleGroup))
	equipment := strings.ToLower(strings.TrimSpace(input.Equipment))
	if name == "" || muscleGroup == "" || equipment == "" {
		return nil, ErrValidationFailed
	}

	owner := userID
	exercise := &domain.Exercise{
		Name:             name,
		MuscleGroup:      muscleGroup,
		Equipment:        equipment,
		SecondaryMuscles: input.SecondaryMuscles,
		Instructions:     input.Instructions,
		IsCustom:         true,
		UserID:           &owner,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	return &ExerciseView{Exercise: *exercise}, nil
}

// RequestImageUploadURL generates a pre-signed URL for uploading an image of a custom exercise.
func (s *exerciseService) RequestImageUploadURL(ctx context.Context, userID, exerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if _, err := s.ownedExercise(ctx, userID, exerciseID); err != nil {
		return nil, err
	}

	objectKey, err := storage.ExerciseImageKey(exerciseID, contentType)
	if err != nil {
		return nil, err
	}

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmImageUpload attaches an uploaded object to the exercise and removes the image it replaces.
func (s *exerciseService) ConfirmImageUpload(ctx context.Context, userID, exerciseID primitive.ObjectID, objectKey string) (*ExerciseView, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	exercise, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if !storage.IsExerciseImageKey(exerciseID, objectKey) {
		return nil, ErrInvalidObjectKey
	}
	exists, err := s.fileStorage.ObjectExists(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrImageNotUploaded
	}

	if err := s.exerciseRepo.SetImageKey(ctx, exerciseID, objectKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	previous := exercise.ImageKey
	exercise.ImageKey = &objectKey
	if previous != nil && *previous != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, *previous); err != nil {
			log.Printf("WARN: Failed to delete replaced image %s of exercise %s: %v", *previous, exerciseID.Hex(), err)
		}
	}

	view := s.view(ctx, *exercise)
	return &view, nil
}

// SeedCatalog inserts the built-in catalog into an empty collection.
func (s *exerciseService) SeedCatalog(ctx context.Context) (int, error) {
	return s.exerciseRepo.Seed(ctx, DefaultCatalog())
}

func (s *exerciseService) visibleExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.IsCustom && (exercise.UserID == nil || *exercise.UserID != userID) {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}

func (s *exerciseService) ownedExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.visibleExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if !exercise.IsCustom {
		return nil, ErrExerciseAccessDenied
	}
	return exercise, nil
}

func (s *exerciseService) views(ctx context.Context, exercises []domain.Exercise) []ExerciseView {
	out := make([]ExerciseView, len(exercises))
	for i, e := range exercises {
		out[i] = s.view(ctx, e)
	}
	return out
}

// view presigns the exercise image. A signing failure only drops the image.
func (s *exerciseService) view(ctx context.Context, e domain.Exercise) ExerciseView {
	v := ExerciseView{Exercise: e}
	if s.fileStorage == nil || e.ImageKey == nil || *e.ImageKey == "" {
		return v
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, *e.ImageKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		log.Printf("WARN: Could not presign image for exercise %s: %v", e.ID.Hex(), err)
		return v
	}
	v.ImageURL = &url
	return v
}
