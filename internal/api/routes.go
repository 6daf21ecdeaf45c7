package api

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/metrics"
	"aloop3/flow/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Catalog      service.CatalogService
	Blocks       service.BlockService
	Workouts     service.WorkoutService
	Exercises    service.ExerciseService
	Analytics    service.AnalyticsService
	Notification service.NotificationService
	Export       service.ExportService
	Access       service.AccessChecker
}

// SetupRoutes registers every endpoint on router. metricsManager may be nil.
func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services, metricsManager *metrics.Manager) {
	authHandler := NewAuthHandler(svc.Auth)
	catalogHandler := NewCatalogHandler(svc.Catalog)
	blockHandler := NewBlockHandler(svc.Blocks, svc.Access)
	workoutHandler := NewWorkoutHandler(svc.Workouts, svc.Blocks, svc.Access)
	exerciseHandler := NewExerciseHandler(svc.Exercises, svc.Workouts)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics)
	notificationHandler := NewNotificationHandler(svc.Notification)
	exportHandler := NewExportHandler(svc.Export)

	router.Use(RequestLogger())
	if metricsManager != nil {
		router.Use(MetricsMiddleware(metricsManager))
	}

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

	coachOnly := RoleMiddleware(domain.RoleCoach)

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me/preferences", authHandler.UpdateWeightPreference)

		coachGroup := protected.Group("/coach", coachOnly)
		{
			coachGroup.POST("/athletes", authHandler.LinkAthlete)
			coachGroup.GET("/athletes", authHandler.ListAthletes)
		}

		// --- Catalog ---
		protected.GET("/exercise-types", catalogHandler.ListExerciseTypes)
		protected.POST("/exercise-types/custom", catalogHandler.CreateCustomExercise)

		// --- Athlete scoped ---
		athleteGroup := protected.Group("/athletes/:athleteId")
		{
			athleteGroup.GET("/blocks", blockHandler.ListAthleteBlocks)
			athleteGroup.GET("/workouts", workoutHandler.ListAthleteWorkouts)
			athleteGroup.POST("/exports", exportHandler.ExportHistory)
		}

		// --- Blocks and days ---
		blockGroup := protected.Group("/blocks")
		{
			blockGroup.POST("", coachOnly, blockHandler.CreateBlock)
			blockGroup.GET("/:blockId", blockHandler.GetSchedule)
			blockGroup.DELETE("/:blockId", coachOnly, blockHandler.DeleteBlock)
		}
		dayGroup := protected.Group("/days/:dayId")
		{
			dayGroup.PATCH("", coachOnly, blockHandler.UpdateDay)
			dayGroup.POST("/exercises", coachOnly, blockHandler.AddDayExercise)
			dayGroup.GET("/exercises", blockHandler.ListDayExercises)

			dayGroup.POST("/workout", workoutHandler.CreateWorkoutFromDay)
			dayGroup.GET("/workout", workoutHandler.GetWorkoutForDay)
			dayGroup.PUT("/log", workoutHandler.LogWorkout)
		}
		dayExerciseGroup := protected.Group("/day-exercises/:dayExerciseId", coachOnly)
		{
			dayExerciseGroup.PATCH("", blockHandler.UpdateDayExercise)
			dayExerciseGroup.DELETE("", blockHandler.DeleteDayExercise)
		}

		// --- Workouts ---
		workoutGroup := protected.Group("/workouts/:workoutId")
		{
			workoutGroup.GET("", workoutHandler.GetWorkout)
			workoutGroup.PATCH("", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("", workoutHandler.DeleteWorkout)
			workoutGroup.POST("/start", workoutHandler.StartSession)
			workoutGroup.POST("/finish", workoutHandler.FinishSession)
			workoutGroup.GET("/volume", workoutHandler.GetVolume)
			workoutGroup.POST("/exercises", exerciseHandler.CreateExercise)
			workoutGroup.GET("/exercises", exerciseHandler.ListWorkoutExercises)
		}

		// --- Exercises and sets ---
		exerciseGroup := protected.Group("/exercises/:exerciseId")
		{
			exerciseGroup.GET("", exerciseHandler.GetExercise)
			exerciseGroup.PATCH("", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("", exerciseHandler.DeleteExercise)
			exerciseGroup.PUT("/status", exerciseHandler.UpdateExerciseStatus)
			exerciseGroup.POST("/sets", exerciseHandler.TrackSet)
			exerciseGroup.DELETE("/sets/:setNumber", exerciseHandler.DeleteSet)
			exerciseGroup.PUT("/sets/order", exerciseHandler.ReorderSets)
		}

		// --- Analytics ---
		analyticsGroup := protected.Group("/analytics")
		{
			analyticsGroup.GET("/max-weight", analyticsHandler.MaxWeightHistory)
			analyticsGroup.GET("/volume", analyticsHandler.VolumeOverTime)
			analyticsGroup.GET("/frequency", analyticsHandler.ExerciseFrequency)
			analyticsGroup.GET("/all-time-max", analyticsHandler.AllTimeMaxWeight)
			analyticsGroup.GET("/blocks/compare", analyticsHandler.CompareBlocks)
			analyticsGroup.GET("/blocks/:blockId/volume", analyticsHandler.BlockVolume)
		}

		// --- Notifications ---
		notificationGroup := protected.Group("/notifications", coachOnly)
		{
			notificationGroup.GET("", notificationHandler.ListNotifications)
			notificationGroup.POST("/:notificationId/read", notificationHandler.MarkRead)
		}
	}
}
