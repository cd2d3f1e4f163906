package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"edunova-server/internal/auth"
	"edunova-server/internal/config"
	"edunova-server/internal/course"
	"edunova-server/internal/logging"
	"edunova-server/internal/metrics"
	"edunova-server/internal/models"
	"edunova-server/internal/notification"
	"edunova-server/internal/quiz"
	"edunova-server/internal/store"
	"edunova-server/pkg/cache"
	"edunova-server/pkg/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logging: %v", err)
	}
	defer logger.Closer()
	slog := logger.Sugar

	// Seed the in-memory store from the embedded fixtures.
	st, err := store.Open()
	if err != nil {
		slog.Fatalw("failed to seed store", "err", err)
	}

	sessions := cache.NewSessionCache(cfg.RedisAddr)
	if err := sessions.Ping(); err != nil {
		slog.Fatalw("failed to connect to redis", "addr", cfg.RedisAddr, "err", err)
	}

	authService := auth.NewService(st, sessions, cfg.JWTSecret, cfg.SessionTTL, slog)

	wsHub := websocket.NewHub(func(token string) (string, error) {
		user, err := authService.UserFromToken(token)
		if err != nil {
			return "", err
		}
		return user.ID, nil
	}, slog)
	go wsHub.Run()

	notifyService := notification.NewService(st, wsHub, slog)
	courseService := course.NewService(st, notifyService, slog)
	quizService := quiz.NewService(st, notifyService, slog)

	authHandler := auth.NewHandler(authService)
	courseHandler := course.NewHandler(courseService)
	quizHandler := quiz.NewHandler(quizService)
	notifyHandler := notification.NewHandler(notifyService)

	router := mux.NewRouter()
	router.Use(metrics.Middleware)
	router.Handle("/metrics", metrics.Handler())

	// Auth routes - no token required.
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Everything else requires a live session.
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.Middleware(authService))

	apiRouter.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	// Catalog and student-facing routes.
	apiRouter.HandleFunc("/courses", courseHandler.ListCourses).Methods("GET")
	apiRouter.HandleFunc("/courses/{id}", courseHandler.GetCourse).Methods("GET")
	apiRouter.HandleFunc("/courses/{id}/lessons", courseHandler.ListLessons).Methods("GET")
	apiRouter.HandleFunc("/courses/{id}/enroll", courseHandler.Enroll).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/courses/{id}/lessons/{lessonId}/complete", courseHandler.CompleteLesson).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/courses/{id}/quizzes", quizHandler.ListByCourse).Methods("GET")
	apiRouter.HandleFunc("/my/courses", courseHandler.MyCourses).Methods("GET")
	apiRouter.HandleFunc("/my/progress", courseHandler.MyProgress).Methods("GET")
	apiRouter.HandleFunc("/my/dashboard", courseHandler.Dashboard).Methods("GET")
	apiRouter.HandleFunc("/my/grades", quizHandler.MyGrades).Methods("GET")

	// Quiz taking.
	apiRouter.HandleFunc("/quizzes/{id}", quizHandler.Get).Methods("GET")
	apiRouter.HandleFunc("/quizzes/{id}/questions", quizHandler.ListQuestions).Methods("GET")
	apiRouter.HandleFunc("/quizzes/{id}/attempt", quizHandler.Status).Methods("GET")
	apiRouter.HandleFunc("/quizzes/{id}/attempt", quizHandler.Start).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{id}/attempt/answer", quizHandler.SaveAnswer).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{id}/attempt/submit", quizHandler.Submit).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{id}/attempt/retake", quizHandler.Retake).Methods("POST", "OPTIONS")

	// Notifications.
	apiRouter.HandleFunc("/notifications", notifyHandler.List).Methods("GET")
	apiRouter.HandleFunc("/notifications/read-all", notifyHandler.MarkAllRead).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/notifications/{id}/read", notifyHandler.MarkRead).Methods("POST", "OPTIONS")

	// Teacher management routes.
	teacherRouter := apiRouter.PathPrefix("/manage").Subrouter()
	teacherRouter.Use(auth.RequireRole(models.RoleTeacher))

	teacherRouter.HandleFunc("/courses", courseHandler.CreateCourse).Methods("POST", "OPTIONS")
	teacherRouter.HandleFunc("/courses/{id}", courseHandler.UpdateCourse).Methods("PUT", "OPTIONS")
	teacherRouter.HandleFunc("/courses/{id}", courseHandler.DeleteCourse).Methods("DELETE", "OPTIONS")
	teacherRouter.HandleFunc("/courses/{id}/lessons", courseHandler.CreateLesson).Methods("POST", "OPTIONS")
	teacherRouter.HandleFunc("/courses/{id}/lessons/{lessonId}", courseHandler.UpdateLesson).Methods("PUT", "OPTIONS")
	teacherRouter.HandleFunc("/courses/{id}/lessons/{lessonId}", courseHandler.DeleteLesson).Methods("DELETE", "OPTIONS")
	teacherRouter.HandleFunc("/courses/{id}/students", courseHandler.EnrolledStudents).Methods("GET")
	teacherRouter.HandleFunc("/courses/{id}/students/{studentId}", courseHandler.RemoveEnrollment).Methods("DELETE", "OPTIONS")
	teacherRouter.HandleFunc("/quizzes", quizHandler.Create).Methods("POST", "OPTIONS")
	teacherRouter.HandleFunc("/quizzes/{id}", quizHandler.Update).Methods("PUT", "OPTIONS")
	teacherRouter.HandleFunc("/quizzes/{id}", quizHandler.Delete).Methods("DELETE", "OPTIONS")
	teacherRouter.HandleFunc("/quizzes/{id}/questions", quizHandler.CreateQuestion).Methods("POST", "OPTIONS")
	teacherRouter.HandleFunc("/questions/{questionId}", quizHandler.UpdateQuestion).Methods("PUT", "OPTIONS")
	teacherRouter.HandleFunc("/questions/{questionId}", quizHandler.DeleteQuestion).Methods("DELETE", "OPTIONS")
	teacherRouter.HandleFunc("/options/{optionId}", quizHandler.UpdateOption).Methods("PUT", "OPTIONS")

	// Admin-only user management.
	adminRouter := apiRouter.PathPrefix("/admin").Subrouter()
	adminRouter.Use(auth.RequireRole(models.RoleAdmin))

	adminRouter.HandleFunc("/users", authHandler.ListUsers).Methods("GET")
	adminRouter.HandleFunc("/users", authHandler.CreateUser).Methods("POST", "OPTIONS")
	adminRouter.HandleFunc("/users/{id}/role", authHandler.UpdateRole).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/users/{id}/active", authHandler.ToggleActive).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/users/{id}", authHandler.DeleteUser).Methods("DELETE", "OPTIONS")

	// WebSocket endpoint for live notifications.
	router.HandleFunc("/ws/notifications", wsHub.HandleWebSocket)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		slog.Infow("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Fatalw("server failed", "err", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Errorw("forced shutdown", "err", err)
	}
	slog.Infow("server shut down gracefully")
}
