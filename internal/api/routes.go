package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Admin        service.AdminService
	Exercise     service.ExerciseService
	Trainer      service.TrainerService
	Client       service.ClientService
	Workout      service.WorkoutService
	Notification service.NotificationService
	Habit        service.HabitService
	Challenge    service.ChallengeService
}

var (
	adminOnly    = []domain.Role{domain.RoleAdmin}
	trainerLevel = []domain.Role{domain.RoleAdmin, domain.RoleTrainer}
	anyRole      = []domain.Role{domain.RoleAdmin, domain.RoleTrainer, domain.RoleClient}
)

func SetupRoutes(router *gin.Engine, svc Services, m *metrics.Manager) {
	authHandler := NewAuthHandler(svc.Auth)
	adminHandler := NewAdminHandler(svc.Auth, svc.Admin)
	exerciseHandler := NewExerciseHandler(svc.Exercise)
	trainerHandler := NewTrainerHandler(svc.Trainer)
	clientHandler := NewClientHandler(svc.Client)
	workoutHandler := NewWorkoutHandler(svc.Workout)
	notificationHandler := NewNotificationHandler(svc.Notification)
	habitHandler := NewHabitHandler(svc.Habit)
	challengeHandler := NewChallengeHandler(svc.Challenge)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	apiV1 := router.Group("/api/v1")
	apiV1.Use(AuthMiddleware(svc.Auth))

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	apiV1.GET("/me", RequireRoles(anyRole...), authHandler.Me)

	// --- Admin Routes ---
	adminGroup := apiV1.Group("/admin", RequireRoles(adminOnly...))
	{
		adminGroup.POST("/users", adminHandler.CreateUser)
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.GET("/users/:userId", adminHandler.GetUser)
		adminGroup.PATCH("/users/:userId/status", adminHandler.UpdateUserStatus)
		adminGroup.GET("/trainers", adminHandler.ListTrainers)
		adminGroup.GET("/mappings", adminHandler.ListMappings)
		adminGroup.POST("/mappings", adminHandler.AssignClient)
		adminGroup.DELETE("/mappings/:mappingId", adminHandler.RemoveMapping)
	}

	// --- Exercise Routes ---
	exerciseGroup := apiV1.Group("/exercises", RequireRoles(anyRole...))
	{
		exerciseGroup.GET("", exerciseHandler.ListExercises)
		exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
		// The exercise library is curated by admins
		exerciseGroup.POST("", RequireRoles(adminOnly...), exerciseHandler.CreateExercise)
		exerciseGroup.PUT("/:id", RequireRoles(adminOnly...), exerciseHandler.UpdateExercise)
		exerciseGroup.DELETE("/:id", RequireRoles(adminOnly...), exerciseHandler.DeleteExercise)
	}

	// --- Trainer Specific Routes ---
	trainerGroup := apiV1.Group("/trainer", RequireRoles(trainerLevel...))
	{
		trainerGroup.GET("/profile", trainerHandler.GetProfile)
		trainerGroup.PUT("/profile", trainerHandler.UpdateProfile)
		trainerGroup.GET("/clients", trainerHandler.GetManagedClients)
		trainerGroup.GET("/clients/:clientId", trainerHandler.GetClient)
	}

	// --- Client Specific Routes ---
	clientGroup := apiV1.Group("/client", RequireRoles(anyRole...))
	{
		clientGroup.GET("/profile", clientHandler.GetProfile)
		clientGroup.PUT("/profile", clientHandler.UpdateProfile)
		clientGroup.GET("/trainer", clientHandler.GetMyTrainer)
	}

	// --- Workout Routes ---
	workoutGroup := apiV1.Group("/workouts", RequireRoles(anyRole...))
	{
		workoutGroup.GET("", workoutHandler.ListWorkouts)
		workoutGroup.GET("/stats", workoutHandler.GetStats)
		workoutGroup.GET("/:id", workoutHandler.GetWorkout)
		workoutGroup.POST("", workoutHandler.LogWorkout)
		workoutGroup.POST("/assign", RequireRoles(trainerLevel...), workoutHandler.AssignWorkout)
		workoutGroup.POST("/:id/start", workoutHandler.StartWorkout)
		workoutGroup.POST("/:id/complete", workoutHandler.CompleteWorkout)
		workoutGroup.POST("/:id/skip", workoutHandler.SkipWorkout)
		workoutGroup.DELETE("/:id", RequireRoles(trainerLevel...), workoutHandler.DeleteWorkout)
	}

	// --- Notification Routes ---
	notificationGroup := apiV1.Group("/notifications", RequireRoles(anyRole...))
	{
		notificationGroup.GET("", notificationHandler.ListNotifications)
		notificationGroup.GET("/unread-count", notificationHandler.UnreadCount)
		notificationGroup.POST("/read-all", notificationHandler.MarkAllRead)
		notificationGroup.POST("/:id/read", notificationHandler.MarkRead)
	}

	// --- Habit Routes ---
	// Entries belong to the caller's client profile
	habitGroup := apiV1.Group("/habits", RequireRoles(anyRole...))
	{
		habitGroup.GET("", habitHandler.ListHabits)
		habitGroup.POST("", habitHandler.LogHabit)
	}

	// --- Challenge Routes ---
	challengeGroup := apiV1.Group("/challenges", RequireRoles(anyRole...))
	{
		challengeGroup.GET("", challengeHandler.ListChallenges)
		challengeGroup.POST("", RequireRoles(adminOnly...), challengeHandler.CreateChallenge)
		challengeGroup.POST("/:id/join", challengeHandler.JoinChallenge)
	}
}
