// This file defines the core data structures (models) for the application.
// These structs represent the manga series, chapters, and pages served by
// the content API. JSON field names follow the public API contract.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Manga represents a single manga series.
type Manga struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   *string    `json:"description"`
	CoverImageURL *string    `json:"cover_image_url"`
	Status        string     `json:"status"`
	Genres        []string   `json:"genres"`
	Author        *string    `json:"author"`
	Artist        *string    `json:"artist"`
	Year          *int       `json:"year"`
	Chapters      []*Chapter `json:"chapters,omitempty"` // omitempty hides it when not loaded
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MangaWithLatest is a manga row enriched with its most recent chapter,
// used by the latest-updates listing.
type MangaWithLatest struct {
	Manga
	LatestChapterNumber *ChapterNumber `json:"latest_chapter_number"`
	LatestChapterTitle  *string        `json:"latest_chapter_title"`
	LatestChapterDate   *time.Time     `json:"latest_chapter_date"`
}

// Chapter represents a single chapter of a manga.
type Chapter struct {
	ID        string        `json:"id"`
	MangaID   string        `json:"manga_id"`
	Number    ChapterNumber `json:"chapter_number"`
	Title     *string       `json:"title"`
	PageCount int           `json:"page_count"`
	CreatedAt time.Time     `json:"created_at"`
}

// ChapterDetail is a chapter with its manga context, ordered pages and
// prev/next neighbor numbers for reader navigation.
type ChapterDetail struct {
	Chapter
	MangaTitle  string         `json:"manga_title"`
	MangaSlug   string         `json:"manga_slug"`
	PrevChapter *ChapterNumber `json:"prev_chapter"`
	NextChapter *ChapterNumber `json:"next_chapter"`
	Pages       []*ChapterPage `json:"pages"`
}

// ChapterPage represents a single page within a chapter. ImageKey is the
// raw object-storage key; ImageURL is filled in at response time with a
// delivery URL and is never persisted.
type ChapterPage struct {
	ID         string `json:"id"`
	PageNumber int    `json:"page_number"`
	ImageKey   string `json:"image_key"`
	ImageURL   string `json:"image_url,omitempty"`
}

// ChapterNumber is a decimal chapter number. Fractional numbering ("10.5")
// is common for side stories, so it cannot be an integer. It marshals as a
// trimmed decimal string ("10", "10.5") to match the API contract, and
// accepts either a JSON string or a JSON number on input.
type ChapterNumber float64

func (n ChapterNumber) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (n ChapterNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

func (n *ChapterNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid chapter number %q: %w", string(data), err)
	}
	*n = ChapterNumber(f)
	return nil
}
