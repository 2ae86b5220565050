// Package invalidation propagates content changes to the caches in front
// of the site: the CDN serving images and the front-end's on-demand
// revalidation endpoint. One event maps deterministically onto two path
// sets; each set is invalidated independently and the combined outcome is
// reported as a partial-success result.
package invalidation

import (
	"strings"

	"github.com/kyomu-reader/kyomu/internal/events"
)

// PathsForEvent maps one event onto the origin-revalidation paths and the
// CDN paths it affects. Unknown event types yield two empty sets, which
// the worker treats as a no-op rather than an error.
func PathsForEvent(ev events.Event) (origin, cdn []string) {
	origin = []string{}
	cdn = []string{}

	switch ev.Type {
	case events.TypeMangaCreated, events.TypeRankingsUpdated:
		origin = append(origin, "/")

	case events.TypeMangaUpdated, events.TypeMangaDeleted, events.TypeChapterCreated:
		if ev.Detail.MangaSlug != "" {
			origin = append(origin, "/manga/"+ev.Detail.MangaSlug)
		}
		// The homepage shows latest updates, so it is always stale.
		origin = append(origin, "/")

	case events.TypeCoverUpdated:
		if ev.Detail.ImagePath != "" {
			cdn = append(cdn, leadingSlash(ev.Detail.ImagePath))
		}
		if ev.Detail.MangaSlug != "" {
			origin = append(origin, "/manga/"+ev.Detail.MangaSlug)
		}
		origin = append(origin, "/")
	}

	return origin, cdn
}

// leadingSlash ensures exactly one leading slash. CDN invalidation paths
// must start with "/" and must not double it.
func leadingSlash(path string) string {
	return "/" + strings.TrimPrefix(path, "/")
}
