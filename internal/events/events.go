// Package events defines the domain events published by the content API
// and consumed by the invalidation worker. Events are a closed set of
// types with one typed detail payload, decoded exactly once at the bus
// boundary.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/kyomu-reader/kyomu/internal/models"
)

// Type tags one domain event.
type Type string

const (
	TypeMangaCreated    Type = "manga.created"
	TypeMangaUpdated    Type = "manga.updated"
	TypeMangaDeleted    Type = "manga.deleted"
	TypeChapterCreated  Type = "chapter.created"
	TypeRankingsUpdated Type = "rankings.updated"
	TypeCoverUpdated    Type = "cover.updated"
)

// Detail carries the event payload. Which fields are set depends on the
// event type; absent fields are omitted on the wire.
type Detail struct {
	MangaID       string                `json:"manga_id,omitempty"`
	MangaSlug     string                `json:"manga_slug,omitempty"`
	ChapterNumber *models.ChapterNumber `json:"chapter_number,omitempty"`
	ImagePath     string                `json:"image_path,omitempty"`
}

// Event is one domain event. Delivery is at-least-once; consumers must be
// idempotent. ID doubles as the transport message ID for deduplication.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Detail     Detail    `json:"detail"`
}

// New builds an event with a fresh ID and timestamp.
func New(t Type, detail Detail) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Detail:     detail,
	}
}

// NewMangaCreated signals that a manga series was created.
func NewMangaCreated(m *models.Manga) Event {
	return New(TypeMangaCreated, Detail{MangaID: m.ID, MangaSlug: m.Slug})
}

// NewChapterCreated signals that a chapter was added to a manga.
func NewChapterCreated(m *models.Manga, number models.ChapterNumber) Event {
	return New(TypeChapterCreated, Detail{
		MangaID:       m.ID,
		MangaSlug:     m.Slug,
		ChapterNumber: &number,
	})
}

// Encode serializes an event into a bus message. The event ID becomes the
// message UUID so JetStream can deduplicate redeliveries.
func Encode(ev Event) (*message.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(ev.ID, payload)
	msg.Metadata.Set("event_type", string(ev.Type))
	return msg, nil
}

// Decode parses a bus message back into an event. Unknown event types are
// preserved as-is; the consumer decides what to do with them.
func Decode(msg *message.Message) (Event, error) {
	var ev Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event payload: %w", err)
	}
	if ev.ID == "" {
		ev.ID = msg.UUID
	}
	return ev, nil
}
