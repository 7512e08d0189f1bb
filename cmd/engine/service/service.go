// Package service ties ingestion, revision persistence and notifications
// together behind the operations the serving layer calls into.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/scribeworks/transcript-engine/cmd/engine/align"
	"github.com/scribeworks/transcript-engine/cmd/engine/notify"
	"github.com/scribeworks/transcript-engine/cmd/engine/store"
	"github.com/scribeworks/transcript-engine/cmd/engine/transcript"
)

var (
	ErrNotFound = errors.New("transcript not found")
	ErrNotReady = errors.New("transcript is not ready")
	ErrInFlight = errors.New("ingestion already in flight for transcript")
)

// AudioRemover removes stored audio. The actual media storage lives in an
// external collaborator; deleting a transcript cascades through this.
type AudioRemover interface {
	Remove(ctx context.Context, url string) error
}

// CompletionMessage is the recognizer completion callback payload delivered
// by the messaging layer: the storage location of the ingested audio plus
// the ordered sequence results.
type CompletionMessage struct {
	File     string           `json:"file"`
	Response []SequenceResult `json:"response"`
}

// SequenceResult wraps a single sequence's recognizer output. Result is nil
// when the recognizer produced nothing for that chunk.
type SequenceResult struct {
	Result *align.Sequence `json:"result,omitempty"`
}

// View is what the read operation serves for a Ready transcript.
type View struct {
	Name       string                 `json:"name"`
	AudioURL   string                 `json:"audioURL"`
	Paragraphs []transcript.Paragraph `json:"paragraphs"`
}

type Service struct {
	store   *store.Store
	broker  notify.Broker
	aligner align.Aligner
	audio   AudioRemover

	mut      sync.Mutex
	inFlight map[string]struct{}
}

// New creates a Service. audio may be nil when no media storage is wired.
func New(st *store.Store, broker notify.Broker, aligner align.Aligner, audio AudioRemover) *Service {
	return &Service{
		store:    st,
		broker:   broker,
		aligner:  aligner,
		audio:    audio,
		inFlight: make(map[string]struct{}),
	}
}

// HandleCompletion resolves a completion message and runs ingestion.
func (s *Service) HandleCompletion(ctx context.Context, msg CompletionMessage) error {
	results := make([]*align.Sequence, len(msg.Response))
	for i, r := range msg.Response {
		results[i] = r.Result
	}
	return s.HandleRecognizerResult(ctx, msg.File, results)
}

// HandleRecognizerResult ingests one transcript's recognizer output. The
// transcript is resolved by the storage location of its audio. The run is
// not reentrant per transcript; a second completion for a transcript whose
// previous run already settled is a fresh, idempotent full re-run that
// discards prior content.
func (s *Service) HandleRecognizerResult(ctx context.Context, audioURL string, results []*align.Sequence) error {
	t, err := s.store.FindByAudioURL(ctx, audioURL)
	if err != nil {
		return fmt.Errorf("failed to resolve transcript: %w", err)
	}
	if t == nil {
		return ErrNotFound
	}

	s.mut.Lock()
	if _, ok := s.inFlight[t.ID]; ok {
		s.mut.Unlock()
		return ErrInFlight
	}
	s.inFlight[t.ID] = struct{}{}
	s.mut.Unlock()
	defer func() {
		s.mut.Lock()
		delete(s.inFlight, t.ID)
		s.mut.Unlock()
	}()

	res := s.aligner.Ingest(results)

	if err := s.store.SetResult(ctx, t.ID, res); err != nil {
		return fmt.Errorf("failed to store ingestion result: %w", err)
	}

	slog.Info("ingestion complete",
		slog.String("transcriptID", t.ID),
		slog.String("status", string(res.Status)),
		slog.Int("paragraphs", len(res.Paragraphs)))

	s.publishRefresh(ctx, t.ID, t.OwnerID)

	return nil
}

// Get returns the transcript view served to the editing client. Content is
// only served once ingestion resolved to Ready.
func (s *Service) Get(ctx context.Context, ownerID, id string) (View, error) {
	t, err := s.store.GetByID(ctx, ownerID, id)
	if err != nil {
		return View{}, fmt.Errorf("failed to get transcript: %w", err)
	}
	if t == nil {
		return View{}, ErrNotFound
	}
	if t.Status != transcript.StatusReady {
		return View{}, ErrNotReady
	}
	return View{
		Name:       t.Name,
		AudioURL:   t.Audio.URL,
		Paragraphs: t.Paragraphs,
	}, nil
}

// SaveRevision replaces the transcript's entire structured content with the
// submitted pruned paragraph list. There is no partial merge: a rejected save
// leaves stored content untouched, so the caller keeps its local edit state
// and retries. Callers are expected to serialize saves per transcript; two
// racing full replaces resolve to whichever lands last.
func (s *Service) SaveRevision(ctx context.Context, ownerID, id string, pruned []transcript.PrunedParagraph) error {
	ok, err := s.store.ReplaceContent(ctx, ownerID, id, pruned)
	if err != nil {
		return fmt.Errorf("failed to replace content: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	s.publishRefresh(ctx, id, ownerID)

	return nil
}

// Create registers a freshly uploaded recording. The transcript starts in
// the Transcribing status; content arrives later through the recognizer
// completion callback.
func (s *Service) Create(ctx context.Context, ownerID, name, audioURL, origin string) (*transcript.Transcript, error) {
	t := &transcript.Transcript{
		OwnerID: ownerID,
		Name:    name,
		Audio:   transcript.AudioRef{URL: audioURL, Origin: origin},
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create transcript: %w", err)
	}

	s.publishRefresh(ctx, t.ID, ownerID)

	return t, nil
}

// List returns the owner's transcript table rows.
func (s *Service) List(ctx context.Context, ownerID string) ([]store.TableRow, error) {
	rows, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return rows, nil
}

// Delete removes a transcript and its stored audio.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	t, err := s.store.GetByID(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to get transcript: %w", err)
	}
	if t == nil {
		return ErrNotFound
	}

	if s.audio != nil {
		if err := s.audio.Remove(ctx, t.Audio.URL); err != nil {
			return fmt.Errorf("failed to remove audio: %w", err)
		}
	}

	ok, err := s.store.Delete(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) publishRefresh(ctx context.Context, transcriptID, ownerID string) {
	if s.broker == nil {
		return
	}
	err := s.broker.Publish(ctx, notify.Event{
		Type:         notify.EventRefresh,
		TranscriptID: transcriptID,
		OwnerID:      ownerID,
	})
	if err != nil {
		// Notifications are fire and forget.
		slog.Error("failed to publish refresh event",
			slog.String("transcriptID", transcriptID), slog.String("err", err.Error()))
	}
}
