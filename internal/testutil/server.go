// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/kyomu-reader/kyomu/internal/api"
	"github.com/kyomu-reader/kyomu/internal/config"
	"github.com/kyomu-reader/kyomu/internal/core"
	"github.com/kyomu-reader/kyomu/internal/events"
	"github.com/kyomu-reader/kyomu/internal/images"
)

// RecordingPublisher captures published events for assertions instead of
// talking to a real bus.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *RecordingPublisher) Publish(ctx context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, ev)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Published returns a copy of the captured events.
func (p *RecordingPublisher) Published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.Events))
	copy(out, p.Events)
	return out
}

// SetupTestApp builds a core.App over an in-memory database, a CDN-domain
// image resolver and a recording event publisher.
func SetupTestApp(t *testing.T) (*core.App, *RecordingPublisher) {
	t.Helper()
	database := SetupTestDB(t)

	cfg := &config.Config{}
	cfg.PopularLimit = 10
	cfg.LatestLimit = 20
	cfg.Images.Strategy = "cdn"
	cfg.Images.CDNDomain = "cdn.test"

	publisher := &RecordingPublisher{}
	app := &core.App{
		Config:    cfg,
		DB:        database,
		Publisher: publisher,
		Resolver:  &images.CDNResolver{Domain: cfg.Images.CDNDomain},
	}
	return app, publisher
}

// SetupTestServer initializes a full core.App and api.Server for
// integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB, *RecordingPublisher) {
	t.Helper()
	app, publisher := SetupTestApp(t)
	server := api.NewServer(app)
	return server, app.DB, publisher
}
