package domain

import "testing"

func TestModelOutputAnswerPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		output ModelOutput
		want   string
	}{
		{"response wins", ModelOutput{Response: "a", Description: "b", Text: "c", Result: "d"}, "a"},
		{"description next", ModelOutput{Description: "b", Text: "c", Result: "d"}, "b"},
		{"text next", ModelOutput{Text: "c", Result: "d"}, "c"},
		{"result last", ModelOutput{Result: "d"}, "d"},
		{"all empty", ModelOutput{}, ""},
	}

	for _, tc := range cases {
		if got := tc.output.Answer(); got != tc.want {
			t.Errorf("%s: Answer() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCandidateEventSlotKey(t *testing.T) {
	t.Parallel()

	a := CandidateEvent{Date: "11/1/2025", Time: "7:00 PM"}
	b := CandidateEvent{Date: " 11/1/2025 ", Time: "7:00 PM "}
	if a.SlotKey() != b.SlotKey() {
		t.Fatalf("slot keys must ignore surrounding whitespace: %q vs %q", a.SlotKey(), b.SlotKey())
	}

	c := CandidateEvent{Date: "11/1/2025", Time: "9:00 PM"}
	if a.SlotKey() == c.SlotKey() {
		t.Fatalf("different times must yield different slot keys")
	}
}
