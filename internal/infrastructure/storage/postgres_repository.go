package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"CampusEvents/internal/domain"
	"CampusEvents/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
    id         TEXT PRIMARY KEY,
    image_url  TEXT NOT NULL,
    caption    TEXT NOT NULL DEFAULT '',
    post_url   TEXT NOT NULL DEFAULT '',
    posted_at  TIMESTAMPTZ,
    is_live    BOOLEAN NOT NULL DEFAULT TRUE,
    processed  BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS events (
    id          BIGSERIAL PRIMARY KEY,
    post_id     TEXT REFERENCES posts (id) ON DELETE SET NULL,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    event_date  TEXT,
    event_time  TEXT,
    post_url    TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// PostgresRepository persists posts and events into Postgres. It
// implements both repository ports since the two tables share one
// ownership model (posts exclusively own their events).
type PostgresRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.PostRepository = (*PostgresRepository)(nil)
var _ ports.EventRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates both tables when missing. Safe to run on every start.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Pending returns all posts not yet claimed by the extraction worker.
func (r *PostgresRepository) Pending(ctx context.Context) ([]domain.Post, error) {
	query := r.sb.
		Select("id", "image_url", "caption", "post_url", "posted_at", "is_live", "processed").
		From("posts").
		Where(sq.Eq{"processed": false}).
		OrderBy("posted_at ASC NULLS LAST", "id ASC")

	return r.queryPosts(ctx, query)
}

// NotLive returns posts absent from the most recent source snapshot.
func (r *PostgresRepository) NotLive(ctx context.Context) ([]domain.Post, error) {
	query := r.sb.
		Select("id", "image_url", "caption", "post_url", "posted_at", "is_live", "processed").
		From("posts").
		Where(sq.Eq{"is_live": false})

	return r.queryPosts(ctx, query)
}

func (r *PostgresRepository) queryPosts(ctx context.Context, query sq.SelectBuilder) ([]domain.Post, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build posts query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var (
			post     domain.Post
			postedAt sql.NullTime
		)
		if err := rows.Scan(&post.ID, &post.ImageURL, &post.Caption, &post.PostURL, &postedAt, &post.IsLive, &post.Processed); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		if postedAt.Valid {
			post.Timestamp = postedAt.Time
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return posts, nil
}

// Upsert inserts a new post or revives an existing one. A reappearing
// post keeps its processed flag unless its image or caption changed,
// in which case it drops back to unprocessed for re-extraction.
func (r *PostgresRepository) Upsert(ctx context.Context, post domain.Post) error {
	var postedAt any
	if !post.Timestamp.IsZero() {
		postedAt = post.Timestamp
	}

	sqlStr, args, err := r.sb.
		Insert("posts").
		Columns("id", "image_url", "caption", "post_url", "posted_at", "is_live", "processed").
		Values(post.ID, post.ImageURL, post.Caption, post.PostURL, postedAt, true, false).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
            is_live   = TRUE,
            image_url = EXCLUDED.image_url,
            caption   = EXCLUDED.caption,
            post_url  = EXCLUDED.post_url,
            posted_at = EXCLUDED.posted_at,
            processed = posts.processed
                        AND posts.image_url = EXCLUDED.image_url
                        AND posts.caption = EXCLUDED.caption`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert post %s: %w", post.ID, err)
	}

	return nil
}

// MarkAllNotLive flags every post as absent ahead of a snapshot pass.
func (r *PostgresRepository) MarkAllNotLive(ctx context.Context) error {
	sqlStr, args, err := r.sb.Update("posts").Set("is_live", false).ToSql()
	if err != nil {
		return fmt.Errorf("build mark not live: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("mark posts not live: %w", err)
	}

	return nil
}

// SetProcessed updates a single post's processed flag.
func (r *PostgresRepository) SetProcessed(ctx context.Context, id string, processed bool) error {
	sqlStr, args, err := r.sb.
		Update("posts").
		Set("processed", processed).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set processed: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("set processed %s: %w", id, err)
	}

	return nil
}

// ResetAllProcessed reverts every post to unprocessed.
func (r *PostgresRepository) ResetAllProcessed(ctx context.Context) error {
	sqlStr, args, err := r.sb.Update("posts").Set("processed", false).ToSql()
	if err != nil {
		return fmt.Errorf("build reset processed: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("reset processed: %w", err)
	}

	return nil
}

// Delete removes a post row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := r.sb.Delete("posts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete post: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}

	return nil
}

// Counts aggregates dashboard totals.
func (r *PostgresRepository) Counts(ctx context.Context) (domain.PostCounts, error) {
	sqlStr, args, err := r.sb.
		Select("COUNT(*)", "COUNT(*) FILTER (WHERE NOT processed)").
		From("posts").
		ToSql()
	if err != nil {
		return domain.PostCounts{}, fmt.Errorf("build counts: %w", err)
	}

	var counts domain.PostCounts
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&counts.Total, &counts.Pending); err != nil {
		return domain.PostCounts{}, fmt.Errorf("query counts: %w", err)
	}

	return counts, nil
}

// Insert stores one extracted event. Empty date/time become NULL.
func (r *PostgresRepository) Insert(ctx context.Context, event domain.Event) error {
	sqlStr, args, err := r.sb.
		Insert("events").
		Columns("post_id", "title", "description", "event_date", "event_time", "post_url").
		Values(event.PostID, event.Title, event.Description, nullable(event.Date), nullable(event.Time), event.PostURL).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert event: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert event %q: %w", event.Title, err)
	}

	return nil
}

// DeleteByPost removes all events owned by one post.
func (r *PostgresRepository) DeleteByPost(ctx context.Context, postID string) error {
	sqlStr, args, err := r.sb.Delete("events").Where(sq.Eq{"post_id": postID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete events: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("delete events for post %s: %w", postID, err)
	}

	return nil
}

// ExistsByTitleAndDate reports whether any post already committed an
// event with this exact title and date.
func (r *PostgresRepository) ExistsByTitleAndDate(ctx context.Context, title, date string) (bool, error) {
	sqlStr, args, err := r.sb.
		Select("1").
		From("events").
		Where(sq.Eq{"title": title, "event_date": nullable(date)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build event lookup: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query event lookup: %w", err)
	}

	return true, nil
}

// DeleteAll wipes the events table (reset endpoint).
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	sqlStr, args, err := r.sb.Delete("events").ToSql()
	if err != nil {
		return fmt.Errorf("build delete all events: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("delete all events: %w", err)
	}

	return nil
}

// ListByDate returns all events, newest event date first.
func (r *PostgresRepository) ListByDate(ctx context.Context) ([]domain.Event, error) {
	return r.queryEvents(ctx, r.selectEvents().OrderBy("event_date DESC NULLS LAST", "created_at DESC"))
}

// ListRecent returns all events, most recently extracted first.
func (r *PostgresRepository) ListRecent(ctx context.Context) ([]domain.Event, error) {
	return r.queryEvents(ctx, r.selectEvents().OrderBy("created_at DESC", "id DESC"))
}

func (r *PostgresRepository) selectEvents() sq.SelectBuilder {
	return r.sb.
		Select("id", "post_id", "title", "description", "event_date", "event_time", "post_url", "created_at").
		From("events")
}

func (r *PostgresRepository) queryEvents(ctx context.Context, query sq.SelectBuilder) ([]domain.Event, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			event     domain.Event
			postID    sql.NullString
			date      sql.NullString
			clock     sql.NullString
			createdAt time.Time
		)
		if err := rows.Scan(&event.ID, &postID, &event.Title, &event.Description, &date, &clock, &event.PostURL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.PostID = postID.String
		event.Date = date.String
		event.Time = clock.String
		event.CreatedAt = createdAt
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return events, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
