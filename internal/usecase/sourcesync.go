package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"CampusEvents/internal/domain"
	"CampusEvents/internal/metrics"
	"CampusEvents/internal/ports"
)

// SourceSync reconciles the persisted post set against the scraping
// service snapshot. Marking every post not-live first and flipping
// survivors back lets one pass both add new posts and detect vanished
// ones without a diff step; the transient all-not-live window is
// acceptable because syncs do not run concurrently with themselves.
type SourceSync struct {
	source ports.SnapshotSource
	posts  ports.PostRepository
	events ports.EventRepository
	logger *slog.Logger
}

// NewSourceSync wires the sync use case.
func NewSourceSync(source ports.SnapshotSource, posts ports.PostRepository, events ports.EventRepository, logger *slog.Logger) *SourceSync {
	return &SourceSync{source: source, posts: posts, events: events, logger: logger}
}

// Run performs one reconciliation cycle. A snapshot fetch failure
// aborts before any mutation; later storage failures surface to the
// pipeline driver, which does not retry within the same invocation.
func (s *SourceSync) Run(ctx context.Context) error {
	items, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		metrics.SyncFailures.Inc()
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	if err := s.posts.MarkAllNotLive(ctx); err != nil {
		return fmt.Errorf("mark posts not live: %w", err)
	}

	upserted := 0
	for _, item := range items {
		id := deriveID(item)
		if id == "" && item.ImageURL == "" {
			s.logger.Debug("skipping unidentifiable item", "url", item.URL)
			continue
		}
		if id == "" {
			id = uuid.NewString()
		}

		post := domain.Post{
			ID:        id,
			ImageURL:  item.ImageURL,
			Caption:   item.Caption,
			PostURL:   item.URL,
			Timestamp: item.Timestamp,
			IsLive:    true,
		}
		if err := s.posts.Upsert(ctx, post); err != nil {
			return fmt.Errorf("upsert post %s: %w", id, err)
		}
		upserted++
	}

	// Posts still not-live vanished from the source: retire them along
	// with every event they own.
	stale, err := s.posts.NotLive(ctx)
	if err != nil {
		return fmt.Errorf("load vanished posts: %w", err)
	}
	for _, post := range stale {
		if err := s.events.DeleteByPost(ctx, post.ID); err != nil {
			return fmt.Errorf("delete events for post %s: %w", post.ID, err)
		}
		if err := s.posts.Delete(ctx, post.ID); err != nil {
			return fmt.Errorf("delete post %s: %w", post.ID, err)
		}
		metrics.PostsRetired.Inc()
	}

	metrics.PostsSynced.Add(float64(upserted))
	s.logger.Info("source sync complete", "items", len(items), "upserted", upserted, "retired", len(stale))
	return nil
}

// deriveID resolves a stable post identifier from whichever source
// field is available: provider id, short code, then the last path
// segment of the post URL. Empty means nothing source-derived exists.
func deriveID(item domain.SourceItem) string {
	if item.ID != "" {
		return item.ID
	}
	if item.ShortCode != "" {
		return item.ShortCode
	}
	return lastPathSegment(item.URL)
}

func lastPathSegment(rawURL string) string {
	trimmed := strings.Trim(strings.TrimSpace(rawURL), "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.LastIndex(trimmed, "/"); idx != -1 {
		trimmed = trimmed[idx+1:]
	}
	if strings.Contains(trimmed, ":") {
		// A scheme with no path (e.g. "https:") yields no usable segment.
		return ""
	}
	return trimmed
}
