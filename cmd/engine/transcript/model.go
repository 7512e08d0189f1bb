package transcript

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusTranscribing Status = "Transcribing"
	StatusReady        Status = "Ready"
	StatusError        Status = "Error"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTranscribing, StatusReady, StatusError:
		return true
	default:
		return false
	}
}

// TimeUnaligned marks a word that carries no audio alignment, e.g. one typed
// in by the user during revision.
const TimeUnaligned = -1

// VarianceUnavailable is used when no disagreement score could be computed for
// a word (phoneme-level fallback alignment, or user-inserted words).
const VarianceUnavailable = -1

// Word is a single transcribed word. ID is stable across edits of the word's
// text and is never reused for a different word. Highlighted and Hovering are
// session-only presentation state and are stripped on save.
type Word struct {
	ID          string  `json:"id"`
	Text        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Variance    int     `json:"variance"`
	Highlighted bool    `json:"isHighlighted,omitempty"`
	Hovering    bool    `json:"isHovering,omitempty"`
}

// Aligned reports whether the word carries audio timing.
func (w Word) Aligned() bool {
	return w.Start != TimeUnaligned && w.End != TimeUnaligned
}

// Paragraph is the unit of edit-mode toggling. Word order is insertion order.
type Paragraph struct {
	ID      string `json:"id"`
	Editing bool   `json:"isEditing"`
	Words   []Word `json:"words"`
	// TODO: per-paragraph speaker attribution once diarization data is
	// available from the recognizer.
}

type AudioRef struct {
	URL    string `json:"url"`
	Origin string `json:"origin"`
}

// Transcript is the document model shared between ingestion, revision and
// persistence. OriginalText and Paragraphs are only trusted when Status is
// StatusReady.
type Transcript struct {
	ID           string      `json:"id"`
	OwnerID      string      `json:"ownerID"`
	Name         string      `json:"name"`
	Created      time.Time   `json:"created"`
	Audio        AudioRef    `json:"audio"`
	Status       Status      `json:"status"`
	OriginalText string      `json:"originalText,omitempty"`
	Paragraphs   []Paragraph `json:"paragraphs,omitempty"`
}

func NewID() string {
	return uuid.NewString()
}

// NewWordID mints a fresh word identifier.
func NewWordID() string {
	return uuid.NewString()
}

// FindWord returns the index of the word with the given id, or -1.
func (p *Paragraph) FindWord(id string) int {
	for i := range p.Words {
		if p.Words[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveWord deletes the word with the given id, preserving order. It reports
// whether a word was removed.
func (p *Paragraph) RemoveWord(id string) bool {
	idx := p.FindWord(id)
	if idx < 0 {
		return false
	}
	p.Words = append(p.Words[:idx], p.Words[idx+1:]...)
	return true
}
