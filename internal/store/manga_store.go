package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kyomu-reader/kyomu/internal/models"
)

const mangaColumns = `id, title, slug, description, cover_image_url, status, genres,
       author, artist, year, created_at, updated_at`

// scanManga reads one manga row. The caller picks row vs rows; both satisfy
// this interface.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanManga(row rowScanner) (*models.Manga, error) {
	var m models.Manga
	var description, coverURL, author, artist sql.NullString
	var year sql.NullInt64
	var genres string
	err := row.Scan(
		&m.ID, &m.Title, &m.Slug, &description, &coverURL, &m.Status, &genres,
		&author, &artist, &year, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Description = nullableString(description)
	m.CoverImageURL = nullableString(coverURL)
	m.Author = nullableString(author)
	m.Artist = nullableString(artist)
	m.Year = nullableInt(year)
	m.Genres = unmarshalGenres(genres)
	return &m, nil
}

// ListManga returns all manga ordered by title. When limit > 0 only the
// first limit rows are returned (the "popular" subset).
func (s *Store) ListManga(limit int) ([]*models.Manga, error) {
	query := "SELECT " + mangaColumns + " FROM manga ORDER BY title"
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mangaList := make([]*models.Manga, 0)
	for rows.Next() {
		m, err := scanManga(rows)
		if err != nil {
			return nil, err
		}
		mangaList = append(mangaList, m)
	}
	return mangaList, rows.Err()
}

// ListLatestManga returns manga ordered by the creation time of their most
// recent chapter, falling back to the manga's own creation time when it has
// no chapters yet. Each row carries the latest chapter's number, title and
// date for the updates feed.
func (s *Store) ListLatestManga(limit int) ([]*models.MangaWithLatest, error) {
	query := `
		SELECT m.id, m.title, m.slug, m.description, m.cover_image_url, m.status, m.genres,
		       m.author, m.artist, m.year, m.created_at, m.updated_at,
		       c.chapter_number, c.title, c.created_at
		FROM manga m
		LEFT JOIN chapters c ON c.id = (
			SELECT c2.id FROM chapters c2
			WHERE c2.manga_id = m.id
			ORDER BY c2.created_at DESC, c2.chapter_number DESC
			LIMIT 1
		)
		ORDER BY COALESCE(c.created_at, m.created_at) DESC
		LIMIT ?
	`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*models.MangaWithLatest, 0)
	for rows.Next() {
		item := new(models.MangaWithLatest)
		var description, coverURL, author, artist sql.NullString
		var year sql.NullInt64
		var genres string
		var latestNumber sql.NullFloat64
		var latestTitle sql.NullString
		var latestDate sql.NullTime
		err := rows.Scan(
			&item.ID, &item.Title, &item.Slug, &description, &coverURL, &item.Status, &genres,
			&author, &artist, &year, &item.CreatedAt, &item.UpdatedAt,
			&latestNumber, &latestTitle, &latestDate,
		)
		if err != nil {
			return nil, err
		}
		item.Description = nullableString(description)
		item.CoverImageURL = nullableString(coverURL)
		item.Author = nullableString(author)
		item.Artist = nullableString(artist)
		item.Year = nullableInt(year)
		item.Genres = unmarshalGenres(genres)
		if latestNumber.Valid {
			n := models.ChapterNumber(latestNumber.Float64)
			item.LatestChapterNumber = &n
		}
		item.LatestChapterTitle = nullableString(latestTitle)
		if latestDate.Valid {
			d := latestDate.Time
			item.LatestChapterDate = &d
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// GetMangaByID fetches a single manga by its ID.
func (s *Store) GetMangaByID(id string) (*models.Manga, error) {
	row := s.db.QueryRow("SELECT "+mangaColumns+" FROM manga WHERE id = ?", id)
	m, err := scanManga(row)
	if err == sql.ErrNoRows {
		return nil, ErrMangaNotFound
	}
	return m, err
}

// GetMangaBySlug fetches a single manga by its slug, with its chapter list
// ordered by chapter number.
func (s *Store) GetMangaBySlug(slug string) (*models.Manga, error) {
	row := s.db.QueryRow("SELECT "+mangaColumns+" FROM manga WHERE slug = ?", slug)
	m, err := scanManga(row)
	if err == sql.ErrNoRows {
		return nil, ErrMangaNotFound
	}
	if err != nil {
		return nil, err
	}
	chapters, err := s.ListChapters(m.ID)
	if err != nil {
		return nil, err
	}
	m.Chapters = chapters
	return m, nil
}

// CreateMangaInput holds the accepted fields for a new manga series.
type CreateMangaInput struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Description   *string  `json:"description"`
	CoverImageURL *string  `json:"cover_image_url"`
	Status        string   `json:"status"`
	Genres        []string `json:"genres"`
	Author        *string  `json:"author"`
	Artist        *string  `json:"artist"`
	Year          *int     `json:"year"`
}

// CreateManga inserts a new manga record and returns the stored row.
func (s *Store) CreateManga(input CreateMangaInput) (*models.Manga, error) {
	if input.Status == "" {
		input.Status = "ongoing"
	}
	genres, err := marshalGenres(input.Genres)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	now := time.Now().UTC()
	query := `
		INSERT INTO manga (id, title, slug, description, cover_image_url, status, genres,
		                   author, artist, year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		id, input.Title, input.Slug, input.Description, input.CoverImageURL, input.Status, genres,
		input.Author, input.Artist, input.Year, now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return s.GetMangaByID(id)
}
