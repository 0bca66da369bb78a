package extract

import (
	"context"
	"strings"

	"CampusEvents/internal/domain"
	"CampusEvents/internal/ports"
)

// Deduper applies the two independent duplicate filters: a within-post
// pass over one model response, and a cross-post lookup against the
// committed event store. They stay separate because within-post
// duplicates come from the model repeating itself in a single answer,
// while cross-post duplicates come from the same real-world event being
// posted again (reminder reposts), possibly with a different time typo.
type Deduper struct {
	events ports.EventRepository
}

// NewDeduper wires the committed-event lookup used by the cross-post pass.
func NewDeduper(events ports.EventRepository) *Deduper {
	return &Deduper{events: events}
}

// WithinPost keeps the first candidate for each non-empty (date, time)
// slot and drops later repeats without merging fields. Candidates whose
// date and time are both empty have no reliable slot key and are never
// treated as duplicates of each other.
func (d *Deduper) WithinPost(candidates []domain.CandidateEvent) []domain.CandidateEvent {
	unique := make([]domain.CandidateEvent, 0, len(candidates))
	seen := map[string]struct{}{}

	for _, cand := range candidates {
		date := strings.TrimSpace(cand.Date)
		clock := strings.TrimSpace(cand.Time)
		key := date + "|" + clock

		if _, ok := seen[key]; ok && date != "" && clock != "" {
			continue
		}

		seen[key] = struct{}{}
		unique = append(unique, cand)
	}

	return unique
}

// IsCrossPostDuplicate reports whether any post already committed an
// event with exactly this (title, date) pair. A hit is a normal skip
// outcome, not an error; the stored original is left untouched.
func (d *Deduper) IsCrossPostDuplicate(ctx context.Context, title, date string) (bool, error) {
	if d.events == nil {
		return false, nil
	}
	return d.events.ExistsByTitleAndDate(ctx, title, date)
}
