// Package revise reconciles a user's free-form edit of a rendered paragraph
// back into the structured, timestamped word model.
package revise

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/scribeworks/transcript-engine/cmd/engine/transcript"
)

const nbsp = " "

// Span is one rendered region of an edited paragraph. WordID references the
// word the region was rendered from; an empty WordID means untagged free
// text, which reconciliation deliberately leaves out of the model.
type Span struct {
	WordID string
	Text   string
}

// Reconcile rebuilds the paragraph's word list from its edited rendered form.
// Words referenced by a span keep their identity and timing; extra tokens
// typed into a span become fresh unaligned words inserted after it. It
// reports whether the document was modified.
//
// A span whose WordID has no matching word is skipped and the rest of the
// paragraph still reconciles. Untagged spans are dropped, not merged; whether
// that is the right product behavior is unresolved, so the drop is explicit
// and logged rather than guessed around.
func Reconcile(p *transcript.Paragraph, spans []Span) bool {
	modified := false

	for i := range spans {
		if spans[i].WordID == "" {
			if strings.TrimSpace(spans[i].Text) != "" {
				slog.Debug("dropping untagged span", slog.String("text", spans[i].Text))
			}
			continue
		}

		tokens := strings.Fields(spans[i].Text)

		// A span normally ends with a non-breaking space separating it from
		// its right neighbor. When the raw split has no trailing empty
		// element that separator was backspaced away, silently fusing two
		// words; repair by handing the last token to the neighbor.
		raw := strings.Split(strings.ReplaceAll(spans[i].Text, nbsp, " "), " ")
		if raw[len(raw)-1] != "" && len(tokens) > 1 && i+1 < len(spans) && spans[i+1].Text != "" {
			spans[i+1].Text = tokens[len(tokens)-1] + spans[i+1].Text
			tokens = tokens[:len(tokens)-1]
		}

		idx := p.FindWord(spans[i].WordID)
		if idx < 0 {
			slog.Warn("span references unknown word, skipping",
				slog.String("wordID", spans[i].WordID), slog.String("paragraphID", p.ID))
			continue
		}

		// First token overwrites the word in place: identity, timing and
		// variance survive a text edit.
		if len(tokens) > 0 {
			p.Words[idx].Text = tokens[0]
		}

		// Remaining tokens are user-authored words with no audio alignment.
		insertionIndex := idx
		for _, tok := range tokens[1:] {
			insertionIndex++
			p.Words = slices.Insert(p.Words, insertionIndex, transcript.Word{
				ID:       transcript.NewWordID(),
				Text:     tok,
				Start:    transcript.TimeUnaligned,
				End:      transcript.TimeUnaligned,
				Variance: transcript.VarianceUnavailable,
			})
		}

		modified = true
	}

	return modified
}
