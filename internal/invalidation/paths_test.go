package invalidation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyomu-reader/kyomu/internal/events"
	"github.com/kyomu-reader/kyomu/internal/models"
)

func TestPathsForEvent(t *testing.T) {
	num := models.ChapterNumber(12)

	tests := []struct {
		name       string
		event      events.Event
		wantOrigin []string
		wantCDN    []string
	}{
		{
			name:       "manga created touches only the homepage",
			event:      events.New(events.TypeMangaCreated, events.Detail{MangaID: "m1", MangaSlug: "foo"}),
			wantOrigin: []string{"/"},
			wantCDN:    []string{},
		},
		{
			name:       "manga updated touches manga page and homepage",
			event:      events.New(events.TypeMangaUpdated, events.Detail{MangaSlug: "foo"}),
			wantOrigin: []string{"/manga/foo", "/"},
			wantCDN:    []string{},
		},
		{
			name:       "manga updated without slug still touches homepage",
			event:      events.New(events.TypeMangaUpdated, events.Detail{}),
			wantOrigin: []string{"/"},
			wantCDN:    []string{},
		},
		{
			name:       "manga deleted touches manga page and homepage",
			event:      events.New(events.TypeMangaDeleted, events.Detail{MangaSlug: "foo"}),
			wantOrigin: []string{"/manga/foo", "/"},
			wantCDN:    []string{},
		},
		{
			name:       "chapter created touches manga page and homepage",
			event:      events.New(events.TypeChapterCreated, events.Detail{MangaSlug: "foo", ChapterNumber: &num}),
			wantOrigin: []string{"/manga/foo", "/"},
			wantCDN:    []string{},
		},
		{
			name:       "rankings updated touches only the homepage",
			event:      events.New(events.TypeRankingsUpdated, events.Detail{}),
			wantOrigin: []string{"/"},
			wantCDN:    []string{},
		},
		{
			name:       "cover updated invalidates image on the CDN",
			event:      events.New(events.TypeCoverUpdated, events.Detail{MangaSlug: "foo", ImagePath: "covers/x.jpg"}),
			wantOrigin: []string{"/manga/foo", "/"},
			wantCDN:    []string{"/covers/x.jpg"},
		},
		{
			name:       "cover updated does not double an existing slash",
			event:      events.New(events.TypeCoverUpdated, events.Detail{MangaSlug: "foo", ImagePath: "/covers/x.jpg"}),
			wantOrigin: []string{"/manga/foo", "/"},
			wantCDN:    []string{"/covers/x.jpg"},
		},
		{
			name:       "unknown event type yields empty sets",
			event:      events.New(events.Type("mystery.event"), events.Detail{MangaSlug: "foo"}),
			wantOrigin: []string{},
			wantCDN:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin, cdn := PathsForEvent(tt.event)
			assert.Equal(t, tt.wantOrigin, origin)
			assert.Equal(t, tt.wantCDN, cdn)
		})
	}
}
