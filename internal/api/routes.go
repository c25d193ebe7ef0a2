package api

import (
	"alcyxob/fitsho/internal/draft"
	"alcyxob/fitsho/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Auth       service.AuthService
	Exercise   service.ExerciseService
	Workout    service.WorkoutService
	Profile    service.ProfileService
	Supplement service.SupplementService
	Drafts     *draft.Manager
}

func SetupRoutes(router *gin.Engine, jwtSecret string, secureCookie bool, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	exerciseHandler := NewExerciseHandler(svc.Exercise, svc.Workout)
	draftHandler := NewDraftHandler(svc.Drafts, svc.Exercise)
	workoutHandler := NewWorkoutHandler(svc.Workout)
	profileHandler := NewProfileHandler(svc.Profile)
	supplementHandler := NewSupplementHandler(svc.Supplement)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret), SessionMiddleware(secureCookie))
	{
		protected.GET("/me", profileHandler.GetMe)
		protected.PUT("/me", profileHandler.UpdateMe)
		protected.GET("/me/preferences", profileHandler.GetPreferences)
		protected.PUT("/me/preferences", profileHandler.UpdatePreferences)

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("/picker", exerciseHandler.PickerExercises)
			exerciseGroup.GET("/muscle-groups", exerciseHandler.MuscleGroups)
			exerciseGroup.GET("/equipment", exerciseHandler.Equipment)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.GET("/:id/last-performance", exerciseHandler.LastPerformance)
			exerciseGroup.POST("/:id/image-upload-url", exerciseHandler.RequestImageUploadURL)
			exerciseGroup.PUT("/:id/image", exerciseHandler.ConfirmImageUpload)
		}

		// --- Workout Draft Routes (one draft per browser session) ---
		draftGroup := protected.Group("/workout/draft")
		{
			draftGroup.GET("", draftHandler.GetDraft)
			draftGroup.POST("", draftHandler.StartDraft)
			draftGroup.DELETE("", draftHandler.DiscardDraft)
			draftGroup.POST("/exercises", draftHandler.AddExercise)
			draftGroup.PUT("/current", draftHandler.SwitchExercise)
			draftGroup.POST("/sets", draftHandler.AddSet)
			draftGroup.DELETE("/sets/:index", draftHandler.RemoveSet)
			draftGroup.POST("/complete", draftHandler.CompleteDraft)
		}

		// --- Completed Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/days", workoutHandler.WorkoutDays)
			workoutGroup.GET("/recent", workoutHandler.RecentWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
		}

		// --- Supplement Routes ---
		supplementGroup := protected.Group("/supplements")
		{
			supplementGroup.GET("", supplementHandler.ListSupplements)
			supplementGroup.POST("", supplementHandler.AddSupplement)
			supplementGroup.GET("/logs", supplementHandler.LogsForDate)
			supplementGroup.GET("/checklist", supplementHandler.Checklist)
			supplementGroup.DELETE("/:id", supplementHandler.RemoveSupplement)
			supplementGroup.POST("/:id/toggle", supplementHandler.ToggleSupplement)
		}
	}
}
