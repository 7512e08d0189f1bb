package transcript

import (
	"fmt"
	"io"
	"strings"
)

// vttTS converts ts milliseconds in the 00:00:00.000 format.
func vttTS(ts int64) string {
	sMs := int64(1000)
	mMs := 60 * sMs
	hMs := 60 * mMs

	h := ts / hMs
	m := (ts - (h * hMs)) / mMs
	s := ((ts - (h * hMs)) - m*mMs) / sMs
	ms := ((ts - (h * hMs)) - m*mMs) - s*sMs

	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func secondsToMs(secs float64) int64 {
	return int64(secs * 1000)
}

// cue is one subtitle unit: a paragraph's text spanning the audio interval
// covered by its aligned words. Paragraphs with no aligned words produce no
// cue.
type cue struct {
	startTS int64
	endTS   int64
	text    string
}

func (t *Transcript) cues() []cue {
	var cues []cue

	for _, p := range t.Paragraphs {
		var c cue
		var words []string
		aligned := false
		for _, w := range p.Words {
			words = append(words, w.Text)
			if !w.Aligned() {
				continue
			}
			if !aligned {
				c.startTS = secondsToMs(w.Start)
				aligned = true
			}
			c.endTS = secondsToMs(w.End)
		}
		if !aligned {
			continue
		}
		c.text = strings.Join(words, " ")
		cues = append(cues, c)
	}

	return cues
}

// WebVTT renders the transcript's paragraphs as WebVTT subtitles.
func (t *Transcript) WebVTT(w io.Writer) error {
	_, err := fmt.Fprintf(w, "WEBVTT\n")
	if err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	for _, c := range t.cues() {
		_, err = fmt.Fprintf(w, "\n%s --> %s\n", vttTS(c.startTS), vttTS(c.endTS))
		if err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", c.text)
		if err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}
	}

	return nil
}

// PlainText renders the revised transcript as flat text, words space-joined
// with a blank line at each paragraph boundary. This is the copy/export
// stream; paragraph markers render as the boundary itself.
func (t *Transcript) PlainText() string {
	var sb strings.Builder
	for i, p := range t.Paragraphs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		for j, w := range p.Words {
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(w.Text)
		}
	}
	return sb.String()
}
