package domain

import (
	"strings"
	"time"
)

// UntitledEvent substitutes for a candidate that arrives without a title.
const UntitledEvent = "Untitled Event"

// NotAnEventSentinel is the literal phrase the model emits when an image
// contains no event. Matched case-sensitively.
const NotAnEventSentinel = "Not an event"

// Event is one structured calendar item derived from a Post. Date and
// time stay free-form strings exactly as the model produced them; an
// empty string is the canonical absent marker and maps to SQL NULL.
type Event struct {
	ID          int64
	PostID      string
	Title       string
	Description string
	Date        string
	Time        string
	PostURL     string
	CreatedAt   time.Time
}

// CandidateEvent is an unvalidated, undeduplicated event extracted from
// raw model text. Missing fields are empty strings; default
// substitution happens at commit time, not here.
type CandidateEvent struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	About string `json:"about"`
}

// SlotKey is the normalized (date, time) signature used for
// within-post duplicate detection.
func (c CandidateEvent) SlotKey() string {
	return strings.TrimSpace(c.Date) + "|" + strings.TrimSpace(c.Time)
}

// ModelOutput is the loosely shaped response of the extraction model.
// The upstream contract is unstable: the textual answer may appear
// under any of these field names depending on provider revision.
type ModelOutput struct {
	Response    string `json:"response"`
	Description string `json:"description"`
	Text        string `json:"text"`
	Result      string `json:"result"`
}

// Answer probes the conventional response fields in priority order and
// returns the first non-empty one.
func (m ModelOutput) Answer() string {
	for _, field := range []string{m.Response, m.Description, m.Text, m.Result} {
		if field != "" {
			return field
		}
	}
	return ""
}
