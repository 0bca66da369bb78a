package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"CampusEvents/internal/domain"
	"CampusEvents/internal/extract"
	"CampusEvents/internal/infrastructure/images"
	"CampusEvents/internal/metrics"
	"CampusEvents/internal/ports"
)

// ExtractionWorker drives each pending post through image fetch, model
// invocation, parsing, de-duplication and commit. Failures are isolated
// per post: a failed post is logged, reset to unprocessed for the next
// run, and never aborts the rest of the batch.
type ExtractionWorker struct {
	posts   ports.PostRepository
	events  ports.EventRepository
	deduper *extract.Deduper
	images  ports.ImageFetcher
	model   ports.ExtractionModel
	logger  *slog.Logger
}

// NewExtractionWorker wires the extraction use case.
func NewExtractionWorker(posts ports.PostRepository, events ports.EventRepository, deduper *extract.Deduper, fetcher ports.ImageFetcher, model ports.ExtractionModel, logger *slog.Logger) *ExtractionWorker {
	return &ExtractionWorker{
		posts:   posts,
		events:  events,
		deduper: deduper,
		images:  fetcher,
		model:   model,
		logger:  logger,
	}
}

// Run processes all posts currently marked unprocessed and returns the
// events committed across the batch.
func (w *ExtractionWorker) Run(ctx context.Context) ([]domain.Event, error) {
	pending, err := w.posts.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending posts: %w", err)
	}
	if len(pending) == 0 {
		w.logger.Debug("no pending posts")
		return nil, nil
	}

	w.logger.Info("processing pending posts", "count", len(pending))

	var created []domain.Event
	for _, post := range pending {
		events, err := w.processPost(ctx, post)
		if err != nil {
			metrics.ExtractionFailures.Inc()
			w.logger.Error("post extraction failed, scheduling retry", "post", post.ID, "error", err)
			if resetErr := w.posts.SetProcessed(ctx, post.ID, false); resetErr != nil {
				w.logger.Error("cannot reset processed flag", "post", post.ID, "error", resetErr)
			}
			continue
		}
		created = append(created, events...)
	}

	return created, nil
}

func (w *ExtractionWorker) processPost(ctx context.Context, post domain.Post) ([]domain.Event, error) {
	// Claim the post before doing any work so an overlapping pipeline
	// run skips it. Best-effort optimistic marker, not a lock.
	if err := w.posts.SetProcessed(ctx, post.ID, true); err != nil {
		return nil, fmt.Errorf("claim post: %w", err)
	}

	image, err := w.images.Fetch(ctx, post.ImageURL)
	if err != nil {
		if errors.Is(err, images.ErrUnexpectedStatus) {
			// A dead image link will not heal on retry; keep the claim
			// and move on.
			w.logger.Warn("image fetch rejected, skipping post", "post", post.ID, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("fetch image: %w", err)
	}

	output, err := w.model.Run(ctx, image, BuildPrompt(post.Caption))
	if err != nil {
		return nil, fmt.Errorf("run extraction model: %w", err)
	}

	candidates := w.deduper.WithinPost(extract.Parse(output.Answer()))

	// Replace this post's events wholesale so reprocessing stays idempotent.
	if err := w.events.DeleteByPost(ctx, post.ID); err != nil {
		return nil, fmt.Errorf("clear previous events: %w", err)
	}

	var created []domain.Event
	for _, cand := range candidates {
		dup, err := w.deduper.IsCrossPostDuplicate(ctx, cand.Title, cand.Date)
		if err != nil {
			return nil, fmt.Errorf("cross-post lookup: %w", err)
		}
		if dup {
			metrics.DuplicatesSkipped.Inc()
			w.logger.Debug("skipping cross-post duplicate", "post", post.ID, "title", cand.Title, "date", cand.Date)
			continue
		}

		event := domain.Event{
			PostID:      post.ID,
			Title:       cand.Title,
			Description: cand.About,
			Date:        cand.Date,
			Time:        cand.Time,
			PostURL:     post.PostURL,
		}
		if event.Title == "" {
			event.Title = domain.UntitledEvent
		}
		if event.Description == "" {
			event.Description = post.Caption
		}

		if err := w.events.Insert(ctx, event); err != nil {
			return nil, fmt.Errorf("insert event %q: %w", event.Title, err)
		}
		metrics.EventsExtracted.Inc()
		created = append(created, event)
	}

	w.logger.Info("post processed", "post", post.ID, "events", len(created))
	return created, nil
}
