package revise

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scribeworks/transcript-engine/cmd/engine/transcript"
)

func testParagraph() transcript.Paragraph {
	return transcript.Paragraph{
		ID: "p1",
		Words: []transcript.Word{
			{ID: "w1", Text: "the", Start: 0, End: 0.2, Variance: 0},
			{ID: "w2", Text: "quick", Start: 0.2, End: 0.5, Variance: 1},
			{ID: "w3", Text: "fox", Start: 0.5, End: 0.9, Variance: 0},
		},
	}
}

func spansFromWords(p transcript.Paragraph) []Span {
	spans := make([]Span, 0, len(p.Words))
	for _, w := range p.Words {
		spans = append(spans, Span{WordID: w.ID, Text: w.Text + " "})
	}
	return spans
}

func TestReconcileUnchanged(t *testing.T) {
	p := testParagraph()
	before := append([]transcript.Word(nil), p.Words...)

	Reconcile(&p, spansFromWords(p))

	require.Equal(t, before, p.Words)
}

func TestReconcileTextOverwrite(t *testing.T) {
	p := testParagraph()
	spans := spansFromWords(p)
	spans[1].Text = "quicker "

	modified := Reconcile(&p, spans)
	require.True(t, modified)

	require.Equal(t, "quicker", p.Words[1].Text)
	// Editing text never invalidates identity or alignment.
	require.Equal(t, "w2", p.Words[1].ID)
	require.Equal(t, 0.2, p.Words[1].Start)
	require.Equal(t, 0.5, p.Words[1].End)
	require.Equal(t, 1, p.Words[1].Variance)
	require.Len(t, p.Words, 3)
}

func TestReconcileInsertion(t *testing.T) {
	p := testParagraph()
	spans := spansFromWords(p)
	spans[1].Text = "foo bar "

	modified := Reconcile(&p, spans)
	require.True(t, modified)
	require.Len(t, p.Words, 4)

	require.Equal(t, "foo", p.Words[1].Text)
	require.Equal(t, "w2", p.Words[1].ID)

	inserted := p.Words[2]
	require.Equal(t, "bar", inserted.Text)
	require.NotEmpty(t, inserted.ID)
	require.NotContains(t, []string{"w1", "w2", "w3"}, inserted.ID)
	require.Equal(t, float64(transcript.TimeUnaligned), inserted.Start)
	require.Equal(t, float64(transcript.TimeUnaligned), inserted.End)

	require.Equal(t, "fox", p.Words[3].Text)
}

func TestReconcileMultipleInsertions(t *testing.T) {
	p := testParagraph()
	spans := spansFromWords(p)
	spans[2].Text = "fox jumps over "

	Reconcile(&p, spans)

	var texts []string
	for _, w := range p.Words {
		texts = append(texts, w.Text)
	}
	require.Equal(t, []string{"the", "quick", "fox", "jumps", "over"}, texts)
}

func TestReconcileBoundaryMerge(t *testing.T) {
	// The separator between w1 and w2 was backspaced away: w1's span carries
	// two tokens with no trailing separator. The trailing token belongs to
	// the neighbor, not to a fresh word.
	p := testParagraph()
	spans := spansFromWords(p)
	spans[0].Text = "the qu"
	spans[1].Text = "ick "

	Reconcile(&p, spans)

	require.Len(t, p.Words, 3)
	require.Equal(t, "the", p.Words[0].Text)
	require.Equal(t, "quick", p.Words[1].Text)
	require.Equal(t, "w2", p.Words[1].ID)
	require.Equal(t, "fox", p.Words[2].Text)
}

func TestReconcileBoundaryMergeSkippedWithoutNeighbor(t *testing.T) {
	p := testParagraph()
	spans := spansFromWords(p)
	spans[2].Text = "fox trot"

	Reconcile(&p, spans)

	// Last span has no right neighbor: the extra token is a plain insertion.
	require.Len(t, p.Words, 4)
	require.Equal(t, "trot", p.Words[3].Text)
}

func TestReconcileUnknownSpanSkipped(t *testing.T) {
	p := testParagraph()
	spans := spansFromWords(p)
	spans[1] = Span{WordID: "nope", Text: "ghost "}

	Reconcile(&p, spans)

	// The mismatched span is skipped, the rest still reconciles.
	require.Len(t, p.Words, 3)
	require.Equal(t, "quick", p.Words[1].Text)
}

func TestReconcileUntaggedSpanDropped(t *testing.T) {
	p := testParagraph()
	spans := spansFromWords(p)
	spans = append(spans, Span{Text: "stray free text"})

	modified := Reconcile(&p, spans)

	require.Len(t, p.Words, 3)
	// Tagged spans were still processed.
	require.True(t, modified)
}

func TestReconcileEmptySpanText(t *testing.T) {
	p := testParagraph()
	spans := spansFromWords(p)
	spans[1].Text = " "

	Reconcile(&p, spans)

	// No tokens: the word keeps its previous text, deletion is not the
	// reconciler's job.
	require.Equal(t, "quick", p.Words[1].Text)
	require.Len(t, p.Words, 3)
}

func TestReconcileMalformedInputKeepsConsistency(t *testing.T) {
	p := testParagraph()
	spans := []Span{
		{WordID: "w2", Text: "a b c"},
		{WordID: "w2", Text: "again "},
		{WordID: "", Text: ""},
	}

	Reconcile(&p, spans)

	seen := map[string]bool{}
	for _, w := range p.Words {
		require.False(t, seen[w.ID], "duplicate word id %s", w.ID)
		seen[w.ID] = true
	}
}
