package invalidation

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyomu-reader/kyomu/internal/events"
)

type fakeOrigin struct {
	calls [][]string
	err   error
}

func (f *fakeOrigin) Revalidate(ctx context.Context, paths []string) error {
	f.calls = append(f.calls, paths)
	return f.err
}

type fakeCDN struct {
	calls [][]string
	err   error
}

func (f *fakeCDN) Invalidate(ctx context.Context, paths []string) error {
	f.calls = append(f.calls, paths)
	return f.err
}

func TestWorkerHandleBothChannels(t *testing.T) {
	origin := &fakeOrigin{}
	cdn := &fakeCDN{}
	w := NewWorker(origin, cdn)

	ev := events.New(events.TypeCoverUpdated, events.Detail{MangaSlug: "foo", ImagePath: "covers/x.jpg"})
	result, err := w.Handle(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, "cover.updated", result.EventType)
	assert.Equal(t, []string{"/manga/foo", "/"}, result.OriginRevalidated)
	assert.Equal(t, []string{"/covers/x.jpg"}, result.CDNInvalidated)
	assert.Len(t, origin.calls, 1)
	assert.Len(t, cdn.calls, 1)
}

func TestWorkerSkipsEmptyChannel(t *testing.T) {
	origin := &fakeOrigin{}
	cdn := &fakeCDN{}
	w := NewWorker(origin, cdn)

	ev := events.New(events.TypeRankingsUpdated, events.Detail{})
	result, err := w.Handle(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, []string{"/"}, result.OriginRevalidated)
	assert.Empty(t, result.CDNInvalidated)
	assert.Len(t, origin.calls, 1)
	assert.Empty(t, cdn.calls, "empty CDN path set must skip the downstream call")
}

func TestWorkerPartialFailure(t *testing.T) {
	origin := &fakeOrigin{err: errors.New("origin down")}
	cdn := &fakeCDN{}
	w := NewWorker(origin, cdn)

	ev := events.New(events.TypeCoverUpdated, events.Detail{MangaSlug: "foo", ImagePath: "covers/x.jpg"})
	result, err := w.Handle(context.Background(), ev)
	require.NoError(t, err, "downstream failure must not surface as a handler error")

	assert.Empty(t, result.OriginRevalidated, "failed channel reports empty")
	assert.Equal(t, []string{"/covers/x.jpg"}, result.CDNInvalidated, "other channel still runs")
}

func TestWorkerUnknownEventIsNoOp(t *testing.T) {
	origin := &fakeOrigin{}
	cdn := &fakeCDN{}
	w := NewWorker(origin, cdn)

	result, err := w.Handle(context.Background(), events.New(events.Type("weird.event"), events.Detail{}))
	require.NoError(t, err)

	assert.Empty(t, result.OriginRevalidated)
	assert.Empty(t, result.CDNInvalidated)
	assert.Empty(t, origin.calls)
	assert.Empty(t, cdn.calls)
}

func TestWorkerRejectsMissingType(t *testing.T) {
	w := NewWorker(&fakeOrigin{}, &fakeCDN{})
	_, err := w.Handle(context.Background(), events.Event{ID: "x"})
	assert.ErrorIs(t, err, ErrMissingEventType)
}

func TestConsumeAcksUndecodableMessage(t *testing.T) {
	w := NewWorker(&fakeOrigin{}, &fakeCDN{})

	msg := message.NewMessage("bad-message", []byte("{not json"))
	messages := make(chan *message.Message, 1)
	messages <- msg
	close(messages)

	w.Consume(context.Background(), messages)

	select {
	case <-msg.Acked():
	default:
		t.Error("Undecodable message must be acked, not redelivered")
	}
}

func TestConsumeHandlesAndAcks(t *testing.T) {
	origin := &fakeOrigin{}
	w := NewWorker(origin, &fakeCDN{})

	ev := events.New(events.TypeRankingsUpdated, events.Detail{})
	msg, err := events.Encode(ev)
	require.NoError(t, err)

	messages := make(chan *message.Message, 1)
	messages <- msg
	close(messages)

	w.Consume(context.Background(), messages)

	assert.Len(t, origin.calls, 1)
	select {
	case <-msg.Acked():
	default:
		t.Error("Handled message must be acked")
	}
}
