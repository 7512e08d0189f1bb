// Package align turns raw multi-hypothesis recognizer output into the
// time-aligned, confidence-scored word sequence of the document model.
package align

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/scribeworks/transcript-engine/cmd/engine/transcript"
)

const (
	// epsilonToken marks silence in word-level alignment output and is never
	// emitted as a word.
	epsilonToken = "<eps>"

	// DefaultParagraphLength is the number of sequences folded into one
	// paragraph.
	DefaultParagraphLength = 5
)

// WordUnit is one word-level alignment entry of a hypothesis. Start and
// Length are seconds, relative to the sequence's own audio chunk.
type WordUnit struct {
	Word   string  `json:"word"`
	Start  float64 `json:"start"`
	Length float64 `json:"length"`
}

// PhonemeUnit is one phoneme-level alignment entry, present when the
// recognizer failed to produce word-level alignment.
type PhonemeUnit struct {
	Phoneme string  `json:"phoneme"`
	Start   float64 `json:"start"`
	Length  float64 `json:"length"`
}

// Hypothesis is one candidate recognition result for a sequence. The wire
// names match the recognizer's output format.
type Hypothesis struct {
	Transcript       string        `json:"transcript"`
	WordAlignment    []WordUnit    `json:"word-alignment,omitempty"`
	PhonemeAlignment []PhonemeUnit `json:"phone-alignment,omitempty"`
}

// Sequence is the recognizer's result for one independently processed audio
// chunk, hypotheses ranked best-first. A nil *Sequence in a batch means the
// result never arrived.
type Sequence struct {
	Hypotheses []Hypothesis `json:"hypotheses"`
}

// Result is the outcome of one ingestion run. On StatusError, OriginalText
// and Paragraphs are empty: partial results are discarded, never saved.
type Result struct {
	Status       transcript.Status
	OriginalText string
	Paragraphs   []transcript.Paragraph
}

type Aligner struct {
	ParagraphLength int
}

// Ingest folds an ordered batch of sequence results into paragraphs of
// aligned words. Sequences are processed strictly in arrival order: the
// running clock accumulates each chunk's length, so reordering would shift
// every subsequent absolute timestamp.
//
// A missing result or malformed hypothesis marks the whole batch as failed,
// but the remaining sequences are still scanned so every problem gets logged.
// Word identities are minted fresh on every run; only text, timestamps and
// variance reproduce across re-ingestion.
func (a Aligner) Ingest(results []*Sequence) Result {
	pLength := a.ParagraphLength
	if pLength <= 0 {
		pLength = DefaultParagraphLength
	}

	var lastLen float64
	var parts []string
	var paragraphs []transcript.Paragraph
	var buf []transcript.Word
	failed := false
	processed := 0

	for i, seq := range results {
		if seq == nil || len(seq.Hypotheses) == 0 {
			slog.Error("missing recognizer result for sequence", slog.Int("sequence", i))
			failed = true
			continue
		}

		words, newLastLen, err := parseSequence(seq, lastLen)
		if err != nil {
			slog.Error("failed to parse sequence", slog.Int("sequence", i), slog.String("err", err.Error()))
			failed = true
			continue
		}
		lastLen = newLastLen

		buf = append(buf, words...)
		parts = append(parts, seq.Hypotheses[0].Transcript)

		processed++
		if processed%pLength == 0 && len(buf) > 0 {
			paragraphs = append(paragraphs, transcript.Paragraph{
				ID:    transcript.NewID(),
				Words: buf,
			})
			buf = nil
		}
	}

	if len(buf) > 0 {
		paragraphs = append(paragraphs, transcript.Paragraph{
			ID:    transcript.NewID(),
			Words: buf,
		})
	}

	if failed {
		return Result{Status: transcript.StatusError}
	}

	return Result{
		Status:       transcript.StatusReady,
		OriginalText: strings.Join(parts, " "),
		Paragraphs:   paragraphs,
	}
}

// parseSequence resolves one sequence's words against the running clock and
// returns the advanced clock value.
func parseSequence(seq *Sequence, lastLen float64) ([]transcript.Word, float64, error) {
	base := seq.Hypotheses[0]
	tokens := strings.Fields(base.Transcript)

	if len(base.WordAlignment) > 0 {
		return parseWordAlignment(seq, base, tokens, lastLen)
	}
	if len(base.PhonemeAlignment) > 0 {
		return parsePhonemeAlignment(base, tokens, lastLen)
	}
	return nil, 0, fmt.Errorf("hypothesis carries no alignment data")
}

func parseWordAlignment(seq *Sequence, base Hypothesis, tokens []string, lastLen float64) ([]transcript.Word, float64, error) {
	words := make([]transcript.Word, 0, len(base.WordAlignment))
	var lastEnd float64

	for i, unit := range base.WordAlignment {
		sTime := unit.Start
		eTime := sTime + unit.Length

		if unit.Word != epsilonToken {
			if len(tokens) == 0 {
				return nil, 0, fmt.Errorf("transcript tokens exhausted at aligned unit %d", i)
			}

			// Variance: how many of the other hypotheses put a different
			// word entirely inside this unit's interval. Each hypothesis
			// counts at most once. Comparison happens in chunk-relative
			// time.
			variance := 0
			for _, hyp := range seq.Hypotheses[1:] {
				for _, alt := range hyp.WordAlignment {
					altSTime := alt.Start
					altETime := altSTime + alt.Length
					if altSTime >= sTime && altETime <= eTime && alt.Word != unit.Word {
						variance++
						break
					}
				}
			}

			words = append(words, transcript.Word{
				ID:       transcript.NewWordID(),
				Text:     tokens[0],
				Start:    round2(lastLen + sTime),
				End:      round2(lastLen + eTime),
				Variance: variance,
			})
			tokens = tokens[1:]
		}

		// The clock advances by the final unit's end, trailing silence
		// included.
		if i == len(base.WordAlignment)-1 {
			lastEnd = eTime
		}
	}

	return words, lastLen + lastEnd, nil
}

// parsePhonemeAlignment is the fallback when the recognizer produced no
// word-level timing: every token of the sequence shares one coarse interval
// spanning the first phoneme's start to the last phoneme's end, and no
// disagreement score is available.
func parsePhonemeAlignment(base Hypothesis, tokens []string, lastLen float64) ([]transcript.Word, float64, error) {
	first := base.PhonemeAlignment[0]
	last := base.PhonemeAlignment[len(base.PhonemeAlignment)-1]

	start := lastLen + first.Start
	end := lastLen + last.Start + last.Length

	words := make([]transcript.Word, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, transcript.Word{
			ID:       transcript.NewWordID(),
			Text:     tok,
			Start:    start,
			End:      end,
			Variance: transcript.VarianceUnavailable,
		})
	}

	return words, end, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
