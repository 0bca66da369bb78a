package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"CampusEvents/internal/domain"
	"CampusEvents/internal/metrics"
	"CampusEvents/internal/ports"
)

// Pipeline runs one full scrape-then-extract cycle. The ordering is
// mandatory: a sync may retire or reset posts that extraction would
// otherwise act on.
type Pipeline struct {
	sync      *SourceSync
	extractor *ExtractionWorker
	posts     ports.PostRepository
	notifier  ports.Notifier
	logger    *slog.Logger
}

// PipelineDeps wires the pipeline's collaborators. Notifier is optional.
type PipelineDeps struct {
	Sync      *SourceSync
	Extractor *ExtractionWorker
	Posts     ports.PostRepository
	Notifier  ports.Notifier
	Logger    *slog.Logger
}

// NewPipeline constructs the pipeline driver.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		sync:      deps.Sync,
		extractor: deps.Extractor,
		posts:     deps.Posts,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
	}
}

// Run executes sync then extraction. A sync failure aborts the
// invocation and is not retried within it.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.sync.Run(ctx); err != nil {
		return fmt.Errorf("source sync: %w", err)
	}

	created, err := p.extractor.Run(ctx)
	if err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	if p.notifier != nil && len(created) > 0 {
		if err := p.notifier.PublishDigest(ctx, buildDigest(created)); err != nil {
			p.logger.Warn("digest notification failed", "error", err)
		}
	}

	if p.posts != nil {
		if counts, err := p.posts.Counts(ctx); err == nil {
			metrics.PendingPosts.Set(float64(counts.Pending))
		}
	}

	return nil
}

func buildDigest(events []domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d new events extracted:\n\n", len(events))

	for _, event := range events {
		date := event.Date
		if date == "" {
			date = "TBD"
		}
		clock := event.Time
		if clock == "" {
			clock = "TBD"
		}
		fmt.Fprintf(&b, "- %s\n%s at %s\n%s\n\n", event.Title, date, clock, event.PostURL)
	}

	return strings.TrimSpace(b.String())
}
