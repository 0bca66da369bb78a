package extract

import (
	"testing"

	"CampusEvents/internal/domain"
)

func TestParseCleanArray(t *testing.T) {
	t.Parallel()

	raw := `[{"title":"Homecoming","date":"11/1/2025","time":"TBD","about":"Annual dance"}]`
	events := Parse(raw)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "Homecoming" {
		t.Fatalf("unexpected title: %s", events[0].Title)
	}
	if events[0].Date != "11/1/2025" || events[0].Time != "TBD" {
		t.Fatalf("unexpected slot: %s %s", events[0].Date, events[0].Time)
	}
	if events[0].About != "Annual dance" {
		t.Fatalf("unexpected about: %s", events[0].About)
	}
}

func TestParseFencedArray(t *testing.T) {
	t.Parallel()

	raw := "```json\n[{\"title\":\"Game Night\",\"date\":\"12/2/2025\",\"time\":\"7:00 PM\",\"about\":\"Boardgames\"}]\n```"
	events := Parse(raw)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "Game Night" {
		t.Fatalf("unexpected title: %s", events[0].Title)
	}
}

func TestParseArrayWithSurroundingProse(t *testing.T) {
	t.Parallel()

	raw := `Here are the events I found: [{"title":"Career Fair","date":"10/5/2025","time":"9:00 AM","about":"Bring resumes"}] Let me know if you need more.`
	events := Parse(raw)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "Career Fair" {
		t.Fatalf("unexpected title: %s", events[0].Title)
	}
}

func TestParseTruncatedArray(t *testing.T) {
	t.Parallel()

	raw := `[{"title":"Movie Night","date":"9/12/2025","time":"8:00 PM","about":"Outdoor screening"},{"title":"Trivia","date":"9/13/`
	events := Parse(raw)

	if len(events) != 1 {
		t.Fatalf("expected the dangling object to be discarded, got %d events", len(events))
	}
	if events[0].Title != "Movie Night" {
		t.Fatalf("unexpected title: %s", events[0].Title)
	}
}

func TestParseSingleObject(t *testing.T) {
	t.Parallel()

	raw := `{"title":"Open Mic","date":"9/20/2025","time":"6:30 PM","about":"Sign up at the door"}`
	events := Parse(raw)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "Open Mic" {
		t.Fatalf("unexpected title: %s", events[0].Title)
	}
}

func TestParseNotAnEventSentinel(t *testing.T) {
	t.Parallel()

	if events := Parse(`{"about":"Not an event"}`); len(events) != 0 {
		t.Fatalf("sentinel about should yield zero events, got %d", len(events))
	}
	if events := Parse(`{"title":"Not an event"}`); len(events) != 0 {
		t.Fatalf("sentinel title should yield zero events, got %d", len(events))
	}
	// Sentinel matching is case-sensitive on the exact phrase.
	if events := Parse(`{"title":"not an event"}`); len(events) != 1 {
		t.Fatalf("lowercase phrase is not the sentinel, got %d events", len(events))
	}
}

func TestParseNeverFails(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   \n\t  ",
		"no json here at all",
		"][",
		"[{{{",
		"{\"title\": unquoted}",
		"```json\n```",
		"[",
		"]",
	}

	for _, raw := range inputs {
		events := Parse(raw)
		if len(events) != 0 {
			t.Fatalf("input %q: expected zero events, got %d", raw, len(events))
		}
	}
}

func TestParseEmptyArray(t *testing.T) {
	t.Parallel()

	events := Parse("[]")
	if events == nil || len(events) != 0 {
		t.Fatalf("expected empty non-nil sequence, got %#v", events)
	}
}

func TestParseMissingFieldsStayEmpty(t *testing.T) {
	t.Parallel()

	events := Parse(`[{"title":"Bake Sale"}]`)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	want := domain.CandidateEvent{Title: "Bake Sale"}
	if events[0] != want {
		t.Fatalf("missing fields must stay empty, got %#v", events[0])
	}
}
