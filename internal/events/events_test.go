package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyomu-reader/kyomu/internal/events"
	"github.com/kyomu-reader/kyomu/internal/models"
)

func TestEncodeDecode(t *testing.T) {
	num := models.ChapterNumber(10.5)
	ev := events.New(events.TypeChapterCreated, events.Detail{
		MangaID:       "m1",
		MangaSlug:     "foo",
		ChapterNumber: &num,
	})

	msg, err := events.Encode(ev)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, msg.UUID, "message UUID must carry the event ID for deduplication")
	assert.Equal(t, "chapter.created", msg.Metadata.Get("event_type"))

	decoded, err := events.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, events.TypeChapterCreated, decoded.Type)
	assert.Equal(t, "foo", decoded.Detail.MangaSlug)
	require.NotNil(t, decoded.Detail.ChapterNumber)
	assert.Equal(t, "10.5", decoded.Detail.ChapterNumber.String())
}

func TestDetailOmitsAbsentFields(t *testing.T) {
	ev := events.New(events.TypeRankingsUpdated, events.Detail{})
	msg, err := events.Encode(ev)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &raw))
	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(raw["detail"], &detail))
	assert.Empty(t, detail, "absent detail fields must be omitted on the wire")
}

func TestBusPublisherRoundTrip(t *testing.T) {
	logger := watermill.NewStdLogger(false, false)
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, logger)
	defer pubsub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubsub.Subscribe(ctx, "content.test")
	require.NoError(t, err)

	publisher := events.NewBusPublisher(pubsub, "content.test")
	ev := events.New(events.TypeMangaCreated, events.Detail{MangaID: "m1", MangaSlug: "foo"})
	require.NoError(t, publisher.Publish(ctx, ev))

	select {
	case msg := <-messages:
		decoded, err := events.Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, ev.ID, decoded.ID)
		assert.Equal(t, events.TypeMangaCreated, decoded.Type)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("Timed out waiting for published event")
	}
}
