// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
)

var (
	ErrMangaNotFound    = errors.New("manga not found")
	ErrChapterNotFound  = errors.New("chapter not found")
	ErrDuplicateSlug    = errors.New("manga slug already exists")
	ErrDuplicateChapter = errors.New("chapter number already exists for this manga")
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// marshalGenres encodes a genre list into the TEXT column representation.
// A nil slice is stored as an empty JSON array so reads never see NULL.
func marshalGenres(genres []string) (string, error) {
	if genres == nil {
		genres = []string{}
	}
	data, err := json.Marshal(genres)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalGenres decodes the genres TEXT column back into a slice.
func unmarshalGenres(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var genres []string
	if err := json.Unmarshal([]byte(raw), &genres); err != nil {
		return []string{}
	}
	if genres == nil {
		genres = []string{}
	}
	return genres
}

// nullableString converts a NullString into the *string our models use.
func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullableInt converts a NullInt64 into an *int.
func nullableInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
