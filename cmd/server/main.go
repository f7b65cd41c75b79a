package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/mihira/deskpulse/internal/config"
	"github.com/mihira/deskpulse/internal/handlers"
	"github.com/mihira/deskpulse/internal/repository"
	"github.com/mihira/deskpulse/internal/scheduler"
	"github.com/mihira/deskpulse/internal/services"
	"github.com/mihira/deskpulse/pkg/email"
	"github.com/mihira/deskpulse/pkg/logger"
	"github.com/mihira/deskpulse/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Load configuration from .env file
	cfg := config.LoadConfig()

	// --- Repositories ---
	roleRepo, err := repository.NewRoleRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("Role store error: %v", err)
	}
	widgetRepo, err := repository.NewWidgetRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("Widget store error: %v", err)
	}
	userRepo, err := repository.NewUserRepository(cfg.DataDir, roleRepo)
	if err != nil {
		log.Fatalf("User store error: %v", err)
	}
	goalRepo, err := repository.NewGoalRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("Goal store error: %v", err)
	}
	noteRepo, err := repository.NewNoteRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("Note store error: %v", err)
	}
	habitRepo, err := repository.NewHabitRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("Habit store error: %v", err)
	}
	timeEntryRepo, err := repository.NewTimeEntryRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("Time entry store error: %v", err)
	}

	// --- Services ---
	userService := services.NewUserService(userRepo, roleRepo, &email.SMTPSender{})
	roleService := services.NewRoleService(roleRepo, widgetRepo)
	goalService := services.NewGoalService(goalRepo)
	noteService := services.NewNoteService(noteRepo)
	habitService := services.NewHabitService(habitRepo)
	timeTrackerService := services.NewTimeTrackerService(timeEntryRepo)
	dashboardService := services.NewDashboardService(userService, noteService, habitService, goalService)
	weatherService := services.NewWeatherService(cfg.WeatherAPIKey, cfg.HTTPTimeout)
	newsService := services.NewNewsService(cfg.NewsAPIKey, cfg.NewsAPIBase, cfg.HTTPTimeout)
	translationService := services.NewTranslationService(cfg.TranslateURL, cfg.HTTPTimeout)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, roleService, cfg)
	roleHandler := handlers.NewRoleHandler(roleService)
	widgetHandler := handlers.NewWidgetHandler(widgetRepo)
	goalHandler := handlers.NewGoalHandler(goalService)
	timeTrackerHandler := handlers.NewTimeTrackerHandler(timeTrackerService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, userService, noteService, habitService, cfg)
	widgetAPIHandler := handlers.NewWidgetAPIHandler(weatherService, newsService, translationService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/verify-otp", userHandler.VerifyOTPHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}/history", userHandler.LoginHistoryHandler).Methods("GET")

	// Goal routes
	protectedGoalRoutes := router.PathPrefix("/goals").Subrouter()
	protectedGoalRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedGoalRoutes.HandleFunc("", goalHandler.CreateGoalHandler).Methods("POST")
	protectedGoalRoutes.HandleFunc("", goalHandler.GetGoalsHandler).Methods("GET")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.GetGoalHandler).Methods("GET")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.UpdateGoalHandler).Methods("PUT")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.DeleteGoalHandler).Methods("DELETE")
	protectedGoalRoutes.HandleFunc("/{id}/progress", goalHandler.UpdateProgressHandler).Methods("PATCH")
	protectedGoalRoutes.HandleFunc("/{id}/metrics", goalHandler.GetMetricsHandler).Methods("GET")
	protectedGoalRoutes.HandleFunc("/{id}/sync-logs", goalHandler.SyncLogsHandler).Methods("POST")
	protectedGoalRoutes.HandleFunc("/{id}/toggle-complete", goalHandler.ToggleCompleteHandler).Methods("POST")

	// Time tracker routes
	protectedTrackerRoutes := router.PathPrefix("/timetracker").Subrouter()
	protectedTrackerRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedTrackerRoutes.HandleFunc("/status", timeTrackerHandler.StatusHandler).Methods("GET")
	protectedTrackerRoutes.HandleFunc("/start", timeTrackerHandler.StartHandler).Methods("POST")
	protectedTrackerRoutes.HandleFunc("/stop", timeTrackerHandler.StopHandler).Methods("POST")
	protectedTrackerRoutes.HandleFunc("/entries", timeTrackerHandler.ListEntriesHandler).Methods("GET")
	protectedTrackerRoutes.HandleFunc("/entries", timeTrackerHandler.SaveEntryHandler).Methods("POST")
	protectedTrackerRoutes.HandleFunc("/entries/{id}", timeTrackerHandler.UpdateEntryHandler).Methods("PUT")
	protectedTrackerRoutes.HandleFunc("/entries/{id}", timeTrackerHandler.DeleteEntryHandler).Methods("DELETE")

	// Dashboard, notes and habits
	protectedDashboardRoutes := router.PathPrefix("/dashboard").Subrouter()
	protectedDashboardRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedDashboardRoutes.HandleFunc("", dashboardHandler.GetDashboardHandler).Methods("GET")
	protectedDashboardRoutes.HandleFunc("/verify-pin", dashboardHandler.VerifyPinHandler).Methods("POST")

	protectedNoteRoutes := router.PathPrefix("/notes").Subrouter()
	protectedNoteRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNoteRoutes.HandleFunc("", dashboardHandler.ListNotesHandler).Methods("GET")
	protectedNoteRoutes.HandleFunc("", dashboardHandler.AddNoteHandler).Methods("POST")
	protectedNoteRoutes.HandleFunc("/{id}", dashboardHandler.EditNoteHandler).Methods("PUT")
	protectedNoteRoutes.HandleFunc("/{id}", dashboardHandler.DeleteNoteHandler).Methods("DELETE")

	protectedHabitRoutes := router.PathPrefix("/habits").Subrouter()
	protectedHabitRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedHabitRoutes.HandleFunc("", dashboardHandler.ListHabitsHandler).Methods("GET")
	protectedHabitRoutes.HandleFunc("", dashboardHandler.AddHabitHandler).Methods("POST")
	protectedHabitRoutes.HandleFunc("/{id}/toggle", dashboardHandler.ToggleHabitHandler).Methods("POST")
	protectedHabitRoutes.HandleFunc("/{id}", dashboardHandler.DeleteHabitHandler).Methods("DELETE")

	// Widget catalog
	protectedWidgetRoutes := router.PathPrefix("/widgets").Subrouter()
	protectedWidgetRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedWidgetRoutes.HandleFunc("", widgetHandler.ListWidgetsHandler).Methods("GET")

	// External data widgets
	apiRoutes := router.PathPrefix("/api").Subrouter()
	apiRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	apiRoutes.HandleFunc("/weather", widgetAPIHandler.GetWeatherHandler).Methods("GET")
	apiRoutes.HandleFunc("/news", widgetAPIHandler.GetNewsHandler).Methods("GET")
	apiRoutes.HandleFunc("/translation/translate", widgetAPIHandler.TranslateHandler).Methods("POST")

	// Admin routes: capability flags are checked per handler against
	// the caller's role, so a renamed or customized role keeps working.
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.HandleFunc("/users", userHandler.ListUsersHandler).Methods("GET")
	adminRoutes.HandleFunc("/users", userHandler.CreateUserHandler).Methods("POST")
	adminRoutes.HandleFunc("/users/{id}", userHandler.UpdateUserHandler).Methods("PUT")
	adminRoutes.HandleFunc("/users/{id}", userHandler.DeleteUserHandler).Methods("DELETE")
	adminRoutes.HandleFunc("/roles", roleHandler.GetPermissionsHandler).Methods("GET")
	adminRoutes.HandleFunc("/roles/{id}/permissions", roleHandler.UpdatePermissionsHandler).Methods("PUT")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Periodic maintenance
	scheduler.StartCronJobs(userService, goalService)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
