package domain

import "time"

// Post is a core entity describing one unit of scraped source content.
//
// Flag transitions are fixed: IsLive drops to false for every post at
// the start of a sync and returns to true only for posts present in
// the fresh snapshot; Processed flips to true when the extraction
// worker claims the post and back to false only through the worker's
// failure path or an explicit reset.
type Post struct {
	ID        string
	ImageURL  string
	Caption   string
	PostURL   string
	Timestamp time.Time
	IsLive    bool
	Processed bool
}

// SourceItem is one raw entry of the scraping service snapshot, before
// id derivation. All identifying fields are optional upstream.
type SourceItem struct {
	ID        string
	ShortCode string
	URL       string
	ImageURL  string
	Caption   string
	Timestamp time.Time
}

// PostCounts aggregates storage totals for the dashboard and metrics.
type PostCounts struct {
	Total   int
	Pending int
}
