package revise

import (
	"github.com/scribeworks/transcript-engine/cmd/engine/transcript"
)

// Editor is the per-transcript edit-mode controller. Each paragraph is either
// viewing or editing; reconciliation runs exactly when a paragraph commits
// out of edit mode, and time-driven highlighting is suspended for paragraphs
// being edited. The editor runs on a single logical thread of interaction and
// never blocks.
type Editor struct {
	t *transcript.Transcript

	// backspacePressed is the one-shot flag coupling a backspace keystroke to
	// the removal of a whole rendered word. It clears after use so an
	// unrelated later removal can't ride on a stale press.
	backspacePressed bool
	modified         bool
}

func NewEditor(t *transcript.Transcript) *Editor {
	return &Editor{t: t}
}

func (e *Editor) loaded() bool {
	return e.t != nil && len(e.t.Paragraphs) > 0
}

func (e *Editor) paragraph(id string) *transcript.Paragraph {
	if e.t == nil {
		return nil
	}
	for i := range e.t.Paragraphs {
		if e.t.Paragraphs[i].ID == id {
			return &e.t.Paragraphs[i]
		}
	}
	return nil
}

// EnableEdit flips a paragraph into edit mode. It is a no-op when the
// transcript has no loaded content or the paragraph is already editing.
// Nothing prevents several paragraphs editing at once; each commits
// independently.
func (e *Editor) EnableEdit(paragraphID string) bool {
	if !e.loaded() {
		return false
	}
	p := e.paragraph(paragraphID)
	if p == nil || p.Editing {
		return false
	}
	p.Editing = true
	return true
}

// Commit reconciles the paragraph's rendered spans and flips it back to
// viewing. It is a no-op for paragraphs not in edit mode.
func (e *Editor) Commit(paragraphID string, spans []Span) bool {
	p := e.paragraph(paragraphID)
	if p == nil || !p.Editing {
		return false
	}
	if Reconcile(p, spans) {
		e.modified = true
	}
	p.Editing = false
	return true
}

// DisableAll commits every editing paragraph, fetching each one's rendered
// spans through spansFor. This is the global "stop editing" action.
func (e *Editor) DisableAll(spansFor func(paragraphID string) []Span) {
	if e.t == nil {
		return
	}
	for i := range e.t.Paragraphs {
		p := &e.t.Paragraphs[i]
		if !p.Editing {
			continue
		}
		var spans []Span
		if spansFor != nil {
			spans = spansFor(p.ID)
		}
		if Reconcile(p, spans) {
			e.modified = true
		}
		p.Editing = false
	}
}

// PressBackspace arms the one-shot deletion flag.
func (e *Editor) PressBackspace() {
	e.backspacePressed = true
}

// DeleteWord removes a word from the model, but only when the edit surface
// reported the word's whole rendered node gone as the direct result of a
// backspace. A partial text edit inside a word never deletes it.
func (e *Editor) DeleteWord(paragraphID, wordID string) bool {
	if !e.backspacePressed {
		return false
	}
	p := e.paragraph(paragraphID)
	if p == nil {
		return false
	}
	e.backspacePressed = false
	if !p.RemoveWord(wordID) {
		return false
	}
	e.modified = true
	return true
}

// Highlight marks the words covering currentTime (seconds). Paragraphs in
// edit mode are left untouched so the user's in-progress spans aren't
// rewritten under the caret.
func (e *Editor) Highlight(currentTime float64) {
	if e.t == nil {
		return
	}
	for i := range e.t.Paragraphs {
		p := &e.t.Paragraphs[i]
		if p.Editing {
			continue
		}
		for j := range p.Words {
			w := &p.Words[j]
			if currentTime >= w.Start && currentTime <= w.End {
				w.Highlighted = true
				w.Hovering = false
			} else {
				w.Highlighted = false
			}
		}
	}
}

// Modified reports whether any commit or deletion changed the document since
// the last ClearModified. Saves are gated on this.
func (e *Editor) Modified() bool {
	return e.modified
}

func (e *Editor) ClearModified() {
	e.modified = false
}
