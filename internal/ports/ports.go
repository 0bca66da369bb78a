package ports

import (
	"context"
	"time"

	"CampusEvents/internal/domain"
)

// SnapshotSource fetches the complete current item set from the
// external scraping service in one call.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) ([]domain.SourceItem, error)
}

// PostRepository persists posts and their coordination flags.
type PostRepository interface {
	Pending(ctx context.Context) ([]domain.Post, error)
	NotLive(ctx context.Context) ([]domain.Post, error)
	Upsert(ctx context.Context, post domain.Post) error
	MarkAllNotLive(ctx context.Context) error
	SetProcessed(ctx context.Context, id string, processed bool) error
	ResetAllProcessed(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context) (domain.PostCounts, error)
}

// EventRepository persists extracted calendar events.
type EventRepository interface {
	Insert(ctx context.Context, event domain.Event) error
	DeleteByPost(ctx context.Context, postID string) error
	ExistsByTitleAndDate(ctx context.Context, title, date string) (bool, error)
	DeleteAll(ctx context.Context) error
	ListByDate(ctx context.Context) ([]domain.Event, error)
	ListRecent(ctx context.Context) ([]domain.Event, error)
}

// ExtractionModel runs the vision-language model over raw image bytes
// with an instruction prompt.
type ExtractionModel interface {
	Run(ctx context.Context, image []byte, prompt string) (domain.ModelOutput, error)
}

// ImageFetcher downloads raw image bytes for a post.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Notifier streams extraction digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
