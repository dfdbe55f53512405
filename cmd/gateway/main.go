package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/backpack-edu/backpack/internal/api/http"
	auth "github.com/backpack-edu/backpack/internal/auth/middleware"
	"github.com/backpack-edu/backpack/internal/catalog"
	"github.com/backpack-edu/backpack/internal/config"
	"github.com/backpack-edu/backpack/internal/db"
	"github.com/backpack-edu/backpack/internal/progress"
	"github.com/backpack-edu/backpack/internal/quiz"
	"github.com/backpack-edu/backpack/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	catalogStore := catalog.NewSQLStore(dbh)
	quizSvc := quiz.NewService(quiz.NewSQLStore(dbh), quiz.Options{
		QuestionCount:        cfg.QuizQuestionCount,
		IncorrectPerQuestion: cfg.QuizIncorrectPerQuestion,
		TopicPoolSize:        cfg.QuizTopicPoolSize,
	})
	progressSvc := progress.NewService(dbh)

	authSvc := auth.NewAuthService(cfg.JWTSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public auth surface
	r.Post("/auth/register", auth.RegisterHandler(dbh, authSvc))
	r.Post("/auth/login", auth.LoginHandler(dbh, authSvc))

	// Protected API (JWT → identity+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Catalog browsing
		pr.With(rbac.Require("catalog:view")).Get("/subjects", api.ListSubjectsHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).Get("/subjects/{subjectID}", api.GetSubjectHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).Get("/lessons", api.ListLessonsHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).Get("/lessons/{lessonID}", api.GetLessonHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).Get("/summaries", api.ListSummariesHandler(catalogStore))
		pr.With(rbac.Require("catalog:view")).Get("/summaries/{summaryID}", api.GetSummaryHandler(catalogStore))

		// Catalog maintenance (admin)
		pr.With(rbac.Require("catalog:manage")).Post("/subjects", api.CreateSubjectHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Put("/subjects/{subjectID}", api.UpdateSubjectHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Delete("/subjects/{subjectID}", api.DeleteSubjectHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Post("/lessons", api.CreateLessonHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Put("/lessons/{lessonID}", api.UpdateLessonHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Delete("/lessons/{lessonID}", api.DeleteLessonHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Post("/summaries", api.CreateSummaryHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Put("/summaries/{summaryID}", api.UpdateSummaryHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Delete("/summaries/{summaryID}", api.DeleteSummaryHandler(catalogStore))

		// Question bank maintenance (admin)
		pr.With(rbac.Require("catalog:manage")).Post("/topics", api.CreateTopicHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Get("/subjects/{subjectID}/topics", api.ListTopicsHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Delete("/topics/{topicID}", api.DeleteTopicHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Post("/topics/{topicID}/options", api.CreateOptionHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Get("/topics/{topicID}/options", api.ListOptionsHandler(catalogStore))
		pr.With(rbac.Require("catalog:manage")).Delete("/options/{optionID}", api.DeleteOptionHandler(catalogStore))

		// Mock-exam flow
		pr.With(rbac.Require("quiz:generate")).
			Post("/quiz/subjects/{subjectID}/generate", api.GenerateExamHandler(quizSvc))
		pr.With(rbac.Require("quiz:submit")).
			Post("/quiz/attempts/{attemptID}/submit", api.SubmitExamHandler(quizSvc))
		pr.With(rbac.Require("quiz:history-own")).
			Get("/quiz/attempts", api.ListAttemptsHandler(quizSvc))

		// Progress tracking
		pr.With(rbac.Require("progress:update-own")).
			Put("/progress/lessons/{lessonID}", api.SetLessonProgressHandler(progressSvc))
		pr.With(rbac.Require("progress:update-own")).
			Put("/progress/summaries/{summaryID}", api.MarkSummaryHandler(progressSvc))
		pr.With(rbac.Require("progress:update-own")).
			Get("/progress/lessons", api.ListLessonProgressHandler(progressSvc))
		pr.With(rbac.Require("stats:view-own")).
			Get("/stats/me", api.MyStatsHandler(progressSvc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
