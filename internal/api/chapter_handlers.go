package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kyomu-reader/kyomu/internal/events"
	"github.com/kyomu-reader/kyomu/internal/models"
	"github.com/kyomu-reader/kyomu/internal/store"
)

// handleListChapters lists a manga's chapters ordered by chapter number.
func (s *Server) handleListChapters(w http.ResponseWriter, r *http.Request) {
	mangaID := chi.URLParam(r, "mangaID")
	if mangaID == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing manga ID")
		return
	}

	chapters, err := s.store.ListChapters(mangaID)
	if err != nil {
		s.respondStoreError(w, err, "")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"chapters": chapters})
}

// handleGetChapterDetails retrieves one chapter by ID with its ordered
// pages and prev/next neighbors.
func (s *Server) handleGetChapterDetails(w http.ResponseWriter, r *http.Request) {
	chapterID := chi.URLParam(r, "chapterID")
	if chapterID == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing chapter ID")
		return
	}

	chapter, err := s.store.GetChapterByID(chapterID)
	if err != nil {
		s.respondStoreError(w, err, "Chapter not found")
		return
	}
	s.resolvePages(chapter)
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"chapter": chapter})
}

// handleGetChapterByNumber retrieves one chapter by manga slug and chapter
// number.
func (s *Server) handleGetChapterByNumber(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	numStr := chi.URLParam(r, "num")
	if slug == "" || numStr == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing manga slug or chapter number")
		return
	}
	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid chapter number")
		return
	}

	chapter, err := s.store.GetChapterBySlugAndNumber(slug, models.ChapterNumber(num))
	if err != nil {
		s.respondStoreError(w, err, "Chapter not found")
		return
	}
	s.resolvePages(chapter)
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"chapter": chapter})
}

// handleCreateChapter creates a chapter, optionally with its pages, and
// emits chapter.created.
func (s *Server) handleCreateChapter(w http.ResponseWriter, r *http.Request) {
	var input store.CreateChapterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if input.MangaID == "" || input.Number == nil || input.PageCount == nil {
		RespondWithError(w, http.StatusBadRequest, "Missing required fields: manga_id, chapter_number, page_count")
		return
	}

	// The referenced manga must exist; its slug also feeds the event.
	manga, err := s.store.GetMangaByID(input.MangaID)
	if err != nil {
		s.respondStoreError(w, err, "Manga not found")
		return
	}

	chapter, err := s.store.CreateChapter(input)
	if err != nil {
		s.respondStoreError(w, err, "")
		return
	}

	s.publishEvent(r.Context(), events.NewChapterCreated(manga, chapter.Number))

	RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"chapter": chapter})
}

// resolvePages fills in each page's delivery URL from its storage key.
// A page whose URL cannot be resolved keeps an empty image_url rather than
// failing the whole request.
func (s *Server) resolvePages(chapter *models.ChapterDetail) {
	for _, page := range chapter.Pages {
		url, err := s.app.Resolver.ResolveURL(page.ImageKey)
		if err != nil {
			log.Printf("Failed to resolve page URL for chapter %s page %d: %v", chapter.ID, page.PageNumber, err)
			continue
		}
		page.ImageURL = url
	}
}
