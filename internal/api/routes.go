package api

import (
	"net/http"

	"mstolbov/liftlog/internal/service"
	"mstolbov/liftlog/internal/session"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	exerciseService service.ExerciseService,
	routineService service.RoutineService,
	workoutService service.WorkoutService,
	sessionManager *session.Manager,
) {

	authHandler := NewAuthHandler(authService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	routineHandler := NewRoutineHandler(routineService)
	workoutHandler := NewWorkoutHandler(workoutService)
	sessionHandler := NewSessionHandler(sessionManager, routineService)

	authMiddleware := AuthMiddleware(jwtSecret)

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
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr})
		})

		// --- Exercise Catalog Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)

			// Demonstration media (image or short video per exercise).
			exerciseGroup.POST("/:id/media/upload-url", exerciseHandler.RequestMediaUpload)
			exerciseGroup.POST("/:id/media/confirm", exerciseHandler.ConfirmMediaUpload)
			exerciseGroup.GET("/:id/media-url", exerciseHandler.GetMediaURL)
		}

		// --- Routine Routes ---
		routineGroup := protected.Group("/routines")
		{
			routineGroup.POST("", routineHandler.CreateRoutine)
			routineGroup.GET("", routineHandler.GetRoutines)
			routineGroup.GET("/:id", routineHandler.GetRoutine)
			routineGroup.DELETE("/:id", routineHandler.DeleteRoutine)
		}

		// --- Workout History Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("", workoutHandler.GetHistory)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:id/title", workoutHandler.UpdateWorkoutTitle)
		}

		// --- Live Session Routes ---
		// One session per user; starting a new one discards the previous.
		sessionGroup := protected.Group("/session")
		{
			sessionGroup.POST("/start", sessionHandler.StartSession)
			sessionGroup.POST("/start-empty", sessionHandler.StartEmptySession)
			sessionGroup.POST("/edit", sessionHandler.StartEditSession)

			sessionGroup.GET("", sessionHandler.GetSession)
			sessionGroup.PUT("/title", sessionHandler.UpdateSessionTitle)
			sessionGroup.POST("/exercises", sessionHandler.AddExercises)
			sessionGroup.PATCH("/exercises/:exerciseId", sessionHandler.UpdateEntry)
			sessionGroup.POST("/exercises/:exerciseId/sets", sessionHandler.AddSet)
			sessionGroup.PATCH("/exercises/:exerciseId/sets/:setIndex", sessionHandler.UpdateSet)
			sessionGroup.DELETE("/exercises/:exerciseId/sets/:setIndex", sessionHandler.RemoveSet)
			sessionGroup.POST("/exercises/:exerciseId/sets/:setIndex/toggle", sessionHandler.ToggleSetComplete)

			sessionGroup.POST("/rest/adjust", sessionHandler.AdjustRest)
			sessionGroup.POST("/rest/skip", sessionHandler.SkipRest)

			sessionGroup.POST("/finish", sessionHandler.FinishSession)
			sessionGroup.POST("/save", sessionHandler.SaveSession)
			sessionGroup.POST("/save-as-routine", sessionHandler.SaveAsRoutine)
			sessionGroup.DELETE("", sessionHandler.DiscardSession)
		}
	}
}
