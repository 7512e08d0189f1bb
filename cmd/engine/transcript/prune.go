package transcript

// PrunedEntry is the durable form of a word in the stored content: either a
// {word, start, end} triple or a paragraph boundary marker in the flat stream.
// Scoring and presentation fields (variance, highlight/hover/edit flags) do
// not survive pruning.
type PrunedEntry struct {
	Word            string  `json:"word,omitempty"`
	Start           float64 `json:"start"`
	End             float64 `json:"end"`
	ParagraphMarker bool    `json:"paragraphMarker,omitempty"`
}

type PrunedParagraph struct {
	Entries []PrunedEntry `json:"paragraph"`
}

// Prune reduces paragraphs to their durable fields for a full-replace save.
func Prune(paragraphs []Paragraph) []PrunedParagraph {
	pruned := make([]PrunedParagraph, 0, len(paragraphs))
	for _, p := range paragraphs {
		pp := PrunedParagraph{Entries: make([]PrunedEntry, 0, len(p.Words))}
		for _, w := range p.Words {
			pp.Entries = append(pp.Entries, PrunedEntry{
				Word:  w.Text,
				Start: w.Start,
				End:   w.End,
			})
		}
		pruned = append(pruned, pp)
	}
	return pruned
}

// RestoreParagraphs rebuilds the in-memory model from stored content. Word and
// paragraph identities are minted fresh on every load; only the {word, start,
// end} values round-trip. Restored words carry no disagreement score.
func RestoreParagraphs(pruned []PrunedParagraph) []Paragraph {
	paragraphs := make([]Paragraph, 0, len(pruned))
	for _, pp := range pruned {
		p := Paragraph{
			ID:    NewID(),
			Words: make([]Word, 0, len(pp.Entries)),
		}
		for _, e := range pp.Entries {
			if e.ParagraphMarker {
				continue
			}
			p.Words = append(p.Words, Word{
				ID:       NewWordID(),
				Text:     e.Word,
				Start:    e.Start,
				End:      e.End,
				Variance: VarianceUnavailable,
			})
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}
