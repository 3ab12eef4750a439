package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/lessondeck/internal/api/middleware"
	"github.com/phrazzld/lessondeck/internal/api/shared"
	"github.com/phrazzld/lessondeck/internal/service"
	"github.com/phrazzld/lessondeck/internal/service/auth"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps holds what the HTTP surface needs.
type RouterDeps struct {
	JWT         auth.JWTService
	LessonPlans service.LessonPlanService
	Decks       service.DeckService
	// DB is pinged by /health when set.
	DB     Pinger
	Logger *slog.Logger
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.NewTraceMiddleware(log))
	r.Use(chimw.Recoverer)

	authMiddleware := middleware.NewAuthMiddleware(deps.JWT)
	lessonHandler := NewLessonPlanHandler(deps.LessonPlans, deps.Decks, log)
	deckHandler := NewDeckHandler(deps.Decks, log)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/lesson-plans", func(r chi.Router) {
			r.Get("/", lessonHandler.ListLessonPlans)
			r.Post("/", lessonHandler.CreateLessonPlan)
			r.Get("/{id}", lessonHandler.GetLessonPlan)
			r.Get("/{id}/export.pdf", lessonHandler.ExportLessonPlanPDF)
			r.Post("/{id}/decks", lessonHandler.CreateDeck)
		})

		r.Route("/decks/{id}", func(r chi.Router) {
			r.Get("/", deckHandler.GetDeck)
			r.Get("/slides/{index}", deckHandler.GetSlide)
			r.Get("/export.pdf", deckHandler.ExportPDF)
			r.Get("/export.doc", deckHandler.ExportDoc)
		})
	})

	r.Get("/health", healthHandler(deps.DB))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, shared.CodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, shared.CodeValidation, "Method not allowed")
	})

	return r
}

// healthHandler reports liveness, and database reachability when db is set.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, shared.CodeInternal,
					"Database unavailable", err)
				return
			}
		}
		shared.RespondOK(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
