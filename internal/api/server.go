// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kyomu-reader/kyomu/internal/core"
	"github.com/kyomu-reader/kyomu/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	db    *sql.DB
	store *store.Store
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		db:    app.DB,
		store: store.New(app.DB),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS headers on every response; answers OPTIONS before routing so
	// preflight never depends on a route match.
	r.Use(corsMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, http.StatusNotFound, "Route not found")
	})

	r.Get("/manga", s.handleListManga)
	r.Get("/manga/latest", s.handleLatestManga)
	r.Get("/manga/slug/{slug}", s.handleGetMangaBySlug)
	r.Get("/manga/slug/{slug}/chapter/{num}", s.handleGetChapterByNumber)
	r.Get("/manga/{mangaID}", s.handleGetManga)
	r.Get("/manga/{mangaID}/chapters", s.handleListChapters)
	r.Get("/chapters/{chapterID}", s.handleGetChapterDetails)

	r.Post("/manga", s.handleCreateManga)
	r.Post("/chapters", s.handleCreateChapter)

	return r
}
