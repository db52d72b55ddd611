package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     Store
	log       *slog.Logger
	jwtSecret string
	router    chi.Router
}

// New creates a new Server with all routes configured. An empty jwtSecret
// runs the server in dev mode where every request acts as user 1.
func New(store Store, jwtSecret string, log *slog.Logger) *Server {
	s := &Server{
		store:     store,
		log:       log,
		jwtSecret: jwtSecret,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(BearerAuth(s.jwtSecret))

	s.router.Get("/api/me", s.handleMe)

	s.router.Route("/api/exercises", func(r chi.Router) {
		r.Get("/", s.handleListExercises)
		r.Post("/", s.handleCreateExercise)
	})

	s.router.Route("/api/workouts/templates", func(r chi.Router) {
		r.Get("/", s.handleListTemplates)
		r.Post("/", s.handleCreateTemplate)
		r.Get("/{id}", s.handleGetTemplate)
		r.Put("/{id}", s.handleReplaceTemplate)
		r.Delete("/{id}", s.handleDeleteTemplate)
		r.Post("/{id}/start_session", s.handleStartSession)
	})

	s.router.Route("/api/workouts/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Get("/stats", s.handleAccountStats)
		r.Get("/{id}", s.handleGetSession)
		r.Delete("/{id}", s.handleDeleteSession)
		r.Patch("/{id}/update_session", s.handleUpdateSession)
		r.Post("/{id}/add_set", s.handleAddSet)
		r.Patch("/{id}/update_set", s.handleUpdateSet)
		r.Delete("/{id}/delete_set", s.handleDeleteSet)
		r.Patch("/{id}/update_exercise", s.handleUpdateExercise)
		r.Delete("/{id}/delete_exercise", s.handleDeleteExercise)
		r.Post("/{id}/complete", s.handleComplete)
	})
}
