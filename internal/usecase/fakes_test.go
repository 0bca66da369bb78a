package usecase

import (
	"context"
	"io"
	"log/slog"

	"CampusEvents/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryRepo implements both repository ports over in-memory state,
// mirroring the Postgres adapter's contract.
type memoryRepo struct {
	posts  map[string]domain.Post
	order  []string
	events []domain.Event
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{posts: map[string]domain.Post{}}
}

func (m *memoryRepo) Pending(ctx context.Context) ([]domain.Post, error) {
	var pending []domain.Post
	for _, id := range m.order {
		if post := m.posts[id]; !post.Processed {
			pending = append(pending, post)
		}
	}
	return pending, nil
}

func (m *memoryRepo) NotLive(ctx context.Context) ([]domain.Post, error) {
	var stale []domain.Post
	for _, id := range m.order {
		if post := m.posts[id]; !post.IsLive {
			stale = append(stale, post)
		}
	}
	return stale, nil
}

func (m *memoryRepo) Upsert(ctx context.Context, post domain.Post) error {
	existing, ok := m.posts[post.ID]
	if !ok {
		// Inserts always land live and unprocessed, as in the Postgres
		// adapter; the caller's flag values are ignored.
		post.IsLive = true
		post.Processed = false
		m.posts[post.ID] = post
		m.order = append(m.order, post.ID)
		return nil
	}

	// Reappearing posts keep their processed flag unless content changed.
	processed := existing.Processed &&
		existing.ImageURL == post.ImageURL &&
		existing.Caption == post.Caption
	post.Processed = processed
	post.IsLive = true
	m.posts[post.ID] = post
	return nil
}

func (m *memoryRepo) MarkAllNotLive(ctx context.Context) error {
	for id, post := range m.posts {
		post.IsLive = false
		m.posts[id] = post
	}
	return nil
}

func (m *memoryRepo) SetProcessed(ctx context.Context, id string, processed bool) error {
	if post, ok := m.posts[id]; ok {
		post.Processed = processed
		m.posts[id] = post
	}
	return nil
}

func (m *memoryRepo) ResetAllProcessed(ctx context.Context) error {
	for id, post := range m.posts {
		post.Processed = false
		m.posts[id] = post
	}
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, id string) error {
	delete(m.posts, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryRepo) Counts(ctx context.Context) (domain.PostCounts, error) {
	counts := domain.PostCounts{Total: len(m.posts)}
	for _, post := range m.posts {
		if !post.Processed {
			counts.Pending++
		}
	}
	return counts, nil
}

func (m *memoryRepo) Insert(ctx context.Context, event domain.Event) error {
	m.nextID++
	event.ID = m.nextID
	m.events = append(m.events, event)
	return nil
}

func (m *memoryRepo) DeleteByPost(ctx context.Context, postID string) error {
	kept := m.events[:0]
	for _, event := range m.events {
		if event.PostID != postID {
			kept = append(kept, event)
		}
	}
	m.events = kept
	return nil
}

func (m *memoryRepo) ExistsByTitleAndDate(ctx context.Context, title, date string) (bool, error) {
	for _, event := range m.events {
		if event.Title == title && event.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) DeleteAll(ctx context.Context) error {
	m.events = nil
	return nil
}

func (m *memoryRepo) ListByDate(ctx context.Context) ([]domain.Event, error) {
	out := make([]domain.Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

func (m *memoryRepo) ListRecent(ctx context.Context) ([]domain.Event, error) {
	out := make([]domain.Event, len(m.events))
	for i, event := range m.events {
		out[len(m.events)-1-i] = event
	}
	return out, nil
}

type stubSource struct {
	items []domain.SourceItem
	err   error
	calls int
}

func (s *stubSource) FetchSnapshot(ctx context.Context) ([]domain.SourceItem, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type modelReply struct {
	output domain.ModelOutput
	err    error
}

type stubModel struct {
	replies []modelReply
	prompts []string
}

func (m *stubModel) Run(ctx context.Context, image []byte, prompt string) (domain.ModelOutput, error) {
	m.prompts = append(m.prompts, prompt)
	if len(m.replies) == 0 {
		return domain.ModelOutput{}, nil
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply.output, reply.err
}

type stubNotifier struct {
	digests []string
	err     error
}

func (n *stubNotifier) PublishDigest(ctx context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}
