package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kyomu-reader/kyomu/internal/models"
)

// ListChapters returns all chapters of a manga, ordered ascending by
// chapter number.
func (s *Store) ListChapters(mangaID string) ([]*models.Chapter, error) {
	query := `
		SELECT id, manga_id, chapter_number, title, page_count, created_at
		FROM chapters
		WHERE manga_id = ?
		ORDER BY chapter_number
	`
	rows, err := s.db.Query(query, mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chapters := make([]*models.Chapter, 0)
	for rows.Next() {
		var c models.Chapter
		var title sql.NullString
		if err := rows.Scan(&c.ID, &c.MangaID, &c.Number, &title, &c.PageCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Title = nullableString(title)
		chapters = append(chapters, &c)
	}
	return chapters, rows.Err()
}

// GetChapterByID fetches a single chapter with its manga context, ordered
// pages and prev/next neighbor numbers.
func (s *Store) GetChapterByID(id string) (*models.ChapterDetail, error) {
	query := `
		SELECT c.id, c.manga_id, c.chapter_number, c.title, c.page_count, c.created_at,
		       m.title, m.slug
		FROM chapters c
		JOIN manga m ON c.manga_id = m.id
		WHERE c.id = ?
	`
	return s.getChapterDetail(query, id)
}

// GetChapterBySlugAndNumber fetches a chapter by its manga's slug and the
// chapter number, with pages and prev/next neighbor numbers.
func (s *Store) GetChapterBySlugAndNumber(slug string, number models.ChapterNumber) (*models.ChapterDetail, error) {
	query := `
		SELECT c.id, c.manga_id, c.chapter_number, c.title, c.page_count, c.created_at,
		       m.title, m.slug
		FROM chapters c
		JOIN manga m ON c.manga_id = m.id
		WHERE m.slug = ? AND c.chapter_number = ?
	`
	return s.getChapterDetail(query, slug, float64(number))
}

func (s *Store) getChapterDetail(query string, args ...interface{}) (*models.ChapterDetail, error) {
	var detail models.ChapterDetail
	var title sql.NullString
	err := s.db.QueryRow(query, args...).Scan(
		&detail.ID, &detail.MangaID, &detail.Number, &title, &detail.PageCount, &detail.CreatedAt,
		&detail.MangaTitle, &detail.MangaSlug,
	)
	if err == sql.ErrNoRows {
		return nil, ErrChapterNotFound
	}
	if err != nil {
		return nil, err
	}
	detail.Title = nullableString(title)

	pages, err := s.listPages(detail.ID)
	if err != nil {
		return nil, err
	}
	detail.Pages = pages

	prev, next, err := s.neighborNumbers(detail.MangaID, detail.Number)
	if err != nil {
		return nil, err
	}
	detail.PrevChapter = prev
	detail.NextChapter = next
	return &detail, nil
}

// listPages returns a chapter's pages ordered ascending by page number.
func (s *Store) listPages(chapterID string) ([]*models.ChapterPage, error) {
	query := `
		SELECT id, page_number, image_key
		FROM chapter_pages
		WHERE chapter_id = ?
		ORDER BY page_number
	`
	rows, err := s.db.Query(query, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := make([]*models.ChapterPage, 0)
	for rows.Next() {
		var p models.ChapterPage
		if err := rows.Scan(&p.ID, &p.PageNumber, &p.ImageKey); err != nil {
			return nil, err
		}
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}

// neighborNumbers finds the nearest lower and higher chapter numbers for
// the same manga. Either may be nil when no neighbor exists.
func (s *Store) neighborNumbers(mangaID string, number models.ChapterNumber) (prev, next *models.ChapterNumber, err error) {
	var prevNum, nextNum sql.NullFloat64
	err = s.db.QueryRow(
		"SELECT MAX(chapter_number) FROM chapters WHERE manga_id = ? AND chapter_number < ?",
		mangaID, float64(number),
	).Scan(&prevNum)
	if err != nil {
		return nil, nil, err
	}
	err = s.db.QueryRow(
		"SELECT MIN(chapter_number) FROM chapters WHERE manga_id = ? AND chapter_number > ?",
		mangaID, float64(number),
	).Scan(&nextNum)
	if err != nil {
		return nil, nil, err
	}
	if prevNum.Valid {
		n := models.ChapterNumber(prevNum.Float64)
		prev = &n
	}
	if nextNum.Valid {
		n := models.ChapterNumber(nextNum.Float64)
		next = &n
	}
	return prev, next, nil
}

// CreatePageInput is one page of a new chapter.
type CreatePageInput struct {
	PageNumber int    `json:"page_number"`
	ImageKey   string `json:"image_key"`
}

// CreateChapterInput holds the accepted fields for a new chapter. Pages are
// optional; when present they are inserted with the chapter in one
// transaction.
type CreateChapterInput struct {
	MangaID   string                `json:"manga_id"`
	Number    *models.ChapterNumber `json:"chapter_number"`
	Title     *string               `json:"title"`
	PageCount *int                  `json:"page_count"`
	Pages     []CreatePageInput     `json:"pages"`
}

// CreateChapter inserts a chapter and its pages atomically. Pages are
// inserted in page-number order regardless of input order. The commit
// happens only after every insert succeeds.
func (s *Store) CreateChapter(input CreateChapterInput) (*models.Chapter, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = tx.Exec(
		"INSERT INTO chapters (id, manga_id, chapter_number, title, page_count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, input.MangaID, float64(*input.Number), input.Title, *input.PageCount, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateChapter
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return nil, ErrMangaNotFound
		}
		return nil, err
	}

	pages := make([]CreatePageInput, len(input.Pages))
	copy(pages, input.Pages)
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })
	for _, page := range pages {
		_, err = tx.Exec(
			"INSERT INTO chapter_pages (id, chapter_id, page_number, image_key) VALUES (?, ?, ?, ?)",
			uuid.NewString(), id, page.PageNumber, page.ImageKey,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert page %d: %w", page.PageNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.Chapter{
		ID:        id,
		MangaID:   input.MangaID,
		Number:    *input.Number,
		Title:     input.Title,
		PageCount: *input.PageCount,
		CreatedAt: now,
	}, nil
}
