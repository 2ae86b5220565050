package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kyomu-reader/kyomu/internal/events"
	"github.com/kyomu-reader/kyomu/internal/models"
	"github.com/kyomu-reader/kyomu/internal/store"
)

// handleListManga returns all manga ordered by title. With ?popular=true
// only the first N rows are returned (N from configuration).
func (s *Server) handleListManga(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if r.URL.Query().Get("popular") == "true" {
		limit = s.app.Config.PopularLimit
	}

	mangaList, err := s.store.ListManga(limit)
	if err != nil {
		s.respondStoreError(w, err, "")
		return
	}
	for _, m := range mangaList {
		s.resolveCover(m)
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"manga": mangaList})
}

// handleLatestManga returns manga ordered by most recent chapter creation
// time, falling back to the manga's own creation time.
func (s *Server) handleLatestManga(w http.ResponseWriter, r *http.Request) {
	mangaList, err := s.store.ListLatestManga(s.app.Config.LatestLimit)
	if err != nil {
		s.respondStoreError(w, err, "")
		return
	}
	for _, m := range mangaList {
		s.resolveCover(&m.Manga)
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"manga": mangaList})
}

// handleGetManga fetches one manga by its ID.
func (s *Server) handleGetManga(w http.ResponseWriter, r *http.Request) {
	mangaID := chi.URLParam(r, "mangaID")
	if mangaID == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing manga ID")
		return
	}

	manga, err := s.store.GetMangaByID(mangaID)
	if err != nil {
		s.respondStoreError(w, err, "Manga not found")
		return
	}
	s.resolveCover(manga)
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"manga": manga})
}

// handleGetMangaBySlug fetches one manga by slug with its ordered chapters.
func (s *Server) handleGetMangaBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing manga slug")
		return
	}

	manga, err := s.store.GetMangaBySlug(slug)
	if err != nil {
		s.respondStoreError(w, err, "Manga not found")
		return
	}
	s.resolveCover(manga)
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"manga": manga})
}

// handleCreateManga creates a new manga series and emits manga.created.
func (s *Server) handleCreateManga(w http.ResponseWriter, r *http.Request) {
	var input store.CreateMangaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if input.Title == "" || input.Slug == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing required fields: title, slug")
		return
	}

	manga, err := s.store.CreateManga(input)
	if err != nil {
		s.respondStoreError(w, err, "")
		return
	}

	// The creation is authoritative; a failed event publish is logged and
	// never rolls it back or fails the response.
	s.publishEvent(r.Context(), events.NewMangaCreated(manga))

	s.resolveCover(manga)
	RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"manga": manga})
}

// resolveCover rewrites a bare cover storage key into a delivery URL.
// Values that are already absolute URLs pass through unchanged. Resolution
// failures are logged and leave the stored value in place.
func (s *Server) resolveCover(m *models.Manga) {
	if m.CoverImageURL == nil || *m.CoverImageURL == "" {
		return
	}
	url, err := s.app.Resolver.ResolveURL(*m.CoverImageURL)
	if err != nil {
		log.Printf("Failed to resolve cover URL for manga %s: %v", m.ID, err)
		return
	}
	m.CoverImageURL = &url
}

// publishEvent sends a domain event, logging failures without affecting
// the caller.
func (s *Server) publishEvent(ctx context.Context, ev events.Event) {
	if s.app.Publisher == nil {
		return
	}
	if err := s.app.Publisher.Publish(ctx, ev); err != nil {
		log.Printf("Failed to publish %s event: %v", ev.Type, err)
	}
}

// respondStoreError maps store errors onto HTTP statuses. Raw database
// errors are logged server-side and surfaced as an opaque 500.
func (s *Server) respondStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrMangaNotFound), errors.Is(err, store.ErrChapterNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "Not found"
		}
		RespondWithError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrDuplicateSlug):
		RespondWithError(w, http.StatusConflict, "Manga slug already exists")
	case errors.Is(err, store.ErrDuplicateChapter):
		RespondWithError(w, http.StatusConflict, "Chapter number already exists for this manga")
	default:
		log.Printf("Database error: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Database error")
	}
}
