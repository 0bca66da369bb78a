package extract

import (
	"encoding/json"
	"strings"

	"CampusEvents/internal/domain"
)

// Parse turns raw model output into zero or more candidate events.
//
// The model is unreliable about shape: answers arrive as bare JSON
// arrays, single objects, markdown-fenced blocks, or truncated JSON
// cut off mid-object. Every failure mode collapses to "no candidates";
// Parse never returns an error, so callers treat parse failure and an
// eventless image identically.
func Parse(raw string) []domain.CandidateEvent {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if events, ok := parseArray(cleaned); ok {
		return events
	}

	return parseSingleObject(cleaned)
}

// parseArray slices the text down to its bracketed span and decodes it.
// A lone opening bracket means the model ran out of tokens mid-array:
// cut back to the last complete object and close the array ourselves,
// discarding the dangling partial object.
func parseArray(s string) ([]domain.CandidateEvent, bool) {
	start := strings.Index(s, "[")
	if start == -1 {
		return nil, false
	}

	end := strings.LastIndex(s, "]")
	if end > start {
		s = s[start : end+1]
	} else {
		s = s[start:] + "]"
		if lastObj := strings.LastIndex(s, "}"); lastObj != -1 {
			s = s[:lastObj+1] + "]"
		}
	}

	var events []domain.CandidateEvent
	if err := json.Unmarshal([]byte(s), &events); err != nil {
		return nil, false
	}
	if events == nil {
		events = []domain.CandidateEvent{}
	}
	return events, true
}

// parseSingleObject handles models that answer with one bare object
// instead of an array. An object carrying the "Not an event" sentinel
// in its title or about field counts as zero results.
func parseSingleObject(s string) []domain.CandidateEvent {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end < start {
		return nil
	}

	var event domain.CandidateEvent
	if err := json.Unmarshal([]byte(s[start:end+1]), &event); err != nil {
		return nil
	}

	if event.Title == domain.NotAnEventSentinel || event.About == domain.NotAnEventSentinel {
		return nil
	}

	return []domain.CandidateEvent{event}
}
