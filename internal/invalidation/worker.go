package invalidation

import (
	"context"
	"errors"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/kyomu-reader/kyomu/internal/events"
)

// ErrMissingEventType marks an event that arrived without a type tag.
// There is nothing to retry, so the consumer acks it after logging.
var ErrMissingEventType = errors.New("event has no type")

// Result reports which channels were actually invalidated for one event.
// A failed channel shows up as an empty list, never as an error: partial
// downstream failure must not look like a poison-pill to the transport.
// The JSON keys match the payload the front-end tooling already consumes.
type Result struct {
	EventType         string   `json:"event_type"`
	OriginRevalidated []string `json:"nextjs_revalidated"`
	CDNInvalidated    []string `json:"cloudfront_invalidated"`
}

// Worker handles one event at a time: compute the affected paths, then fan
// out the two downstream calls. There is no state between events and no
// retry loop; redelivery by the event transport is the only retry.
type Worker struct {
	origin OriginRevalidator
	cdn    CDNInvalidator
}

// NewWorker wires the two downstream channels.
func NewWorker(origin OriginRevalidator, cdn CDNInvalidator) *Worker {
	return &Worker{origin: origin, cdn: cdn}
}

// Handle processes a single event. An empty path set skips the
// corresponding downstream call entirely; the two calls are independent
// and a failure of one does not prevent the other.
func (w *Worker) Handle(ctx context.Context, ev events.Event) (Result, error) {
	if ev.Type == "" {
		return Result{}, ErrMissingEventType
	}

	origin, cdn := PathsForEvent(ev)
	log.Printf("Event %s (%s): origin paths %v, CDN paths %v", ev.ID, ev.Type, origin, cdn)

	result := Result{
		EventType:         string(ev.Type),
		OriginRevalidated: []string{},
		CDNInvalidated:    []string{},
	}

	if len(origin) > 0 {
		if err := w.origin.Revalidate(ctx, origin); err != nil {
			log.Printf("Origin revalidation failed for event %s: %v", ev.ID, err)
		} else {
			result.OriginRevalidated = origin
		}
	}

	if len(cdn) > 0 {
		if err := w.cdn.Invalidate(ctx, cdn); err != nil {
			log.Printf("CDN invalidation failed for event %s: %v", ev.ID, err)
		} else {
			result.CDNInvalidated = cdn
		}
	}

	log.Printf("Invalidation result for event %s: %+v", ev.ID, result)
	return result, nil
}

// Consume drains the message channel until it closes or the context ends.
// Every message is acked after handling: messages that cannot be decoded
// or carry no type have no retry value, and partial downstream failures
// are already absorbed by Handle.
func (w *Worker) Consume(ctx context.Context, messages <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			ev, err := events.Decode(msg)
			if err != nil {
				log.Printf("Dropping undecodable event message %s: %v", msg.UUID, err)
				msg.Ack()
				continue
			}
			if _, err := w.Handle(ctx, ev); err != nil {
				log.Printf("Dropping event %s: %v", msg.UUID, err)
			}
			msg.Ack()
		}
	}
}
