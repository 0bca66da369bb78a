package usecase

import "fmt"

// BuildPrompt renders the extraction instruction for one post. The
// caption rides along as disambiguating context; the answer-shape
// instructions keep the model on a bare JSON array, though the parser
// tolerates every deviation seen in practice anyway.
func BuildPrompt(caption string) string {
	return fmt.Sprintf(`EXACT OCR TASK:
1. Look at the image and the caption.
2. Identify all unique events.
3. For each event, extract:
   - title: The EXACT event name.
   - date: The date (e.g., "1/16/2026").
   - time: The time (e.g., "7:00 PM") or "TBD" if not shown.
   - about: A concise 1-sentence description.

Caption Context: "%s"

Return ONLY a valid JSON array of objects. No intro text, no conversational filler.
Example: [{"title": "Event Name", "date": "1/16/2026", "time": "TBD", "about": "..."}]`, caption)
}
