// Package store persists transcripts in SQLite. Structured content is saved
// as a whole: a revision submit replaces everything that was stored before,
// there is no partial merge.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scribeworks/transcript-engine/cmd/engine/align"
	"github.com/scribeworks/transcript-engine/cmd/engine/transcript"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
    id            TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL,
    name          TEXT NOT NULL,
    status        TEXT NOT NULL,
    audio_url     TEXT NOT NULL,
    audio_origin  TEXT,
    original_text TEXT,
    content_json  TEXT,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcripts_owner ON transcripts(owner_id);
CREATE INDEX IF NOT EXISTS idx_transcripts_audio_url ON transcripts(audio_url);
`

// Store manages transcript persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the transcript database and applies the
// schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// TableRow is the list projection shown in the transcript table.
type TableRow struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Status  transcript.Status `json:"status"`
	Created time.Time         `json:"date"`
	Origin  string            `json:"origin"`
}

// Create inserts a new transcript. Freshly created transcripts start in the
// Transcribing status with no content.
func (s *Store) Create(ctx context.Context, t *transcript.Transcript) error {
	if t == nil {
		return errors.New("transcript is nil")
	}
	if t.ID == "" {
		t.ID = transcript.NewID()
	}
	if t.Status == "" {
		t.Status = transcript.StatusTranscribing
	}
	if t.Created.IsZero() {
		t.Created = time.Now().UTC()
	}

	timestamp := t.Created.Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (
            id, owner_id, name, status, audio_url, audio_origin,
            original_text, content_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.OwnerID,
		t.Name,
		string(t.Status),
		t.Audio.URL,
		nullableString(t.Audio.Origin),
		nil,
		nil,
		timestamp,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	return nil
}

// GetByID fetches a transcript by identifier, constrained to its owner.
// Returns nil when no matching transcript exists.
func (s *Store) GetByID(ctx context.Context, ownerID, id string) (*transcript.Transcript, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+transcriptColumns+` FROM transcripts WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	t, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return t, nil
}

// FindByAudioURL returns the transcript whose ingested audio lives at the
// given storage location. This is how a recognizer completion callback is
// resolved back to its transcript.
func (s *Store) FindByAudioURL(ctx context.Context, url string) (*transcript.Transcript, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+transcriptColumns+` FROM transcripts WHERE audio_url = ? ORDER BY created_at LIMIT 1`,
		url,
	)
	t, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by audio url: %w", err)
	}
	return t, nil
}

// List returns the table rows for all of an owner's transcripts ordered by
// creation time.
func (s *Store) List(ctx context.Context, ownerID string) ([]TableRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, status, audio_origin, created_at FROM transcripts WHERE owner_id = ? ORDER BY created_at`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []TableRow
	for rows.Next() {
		var (
			r          TableRow
			statusStr  string
			origin     sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&r.ID, &r.Name, &statusStr, &origin, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		r.Status = transcript.Status(statusStr)
		r.Origin = origin.String
		if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			r.Created = created
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SetResult records an ingestion outcome. On an Error result only the status
// is written: whatever content the transcript held before the run stays
// untouched, partial results are never saved.
func (s *Store) SetResult(ctx context.Context, id string, res align.Result) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if res.Status != transcript.StatusReady {
		_, err := s.db.ExecContext(
			ctx,
			`UPDATE transcripts SET status = ?, updated_at = ? WHERE id = ?`,
			string(res.Status), now, id,
		)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	}

	contentJSON, err := json.Marshal(res.Paragraphs)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE transcripts
         SET status = ?, original_text = ?, content_json = ?, updated_at = ?
         WHERE id = ?`,
		string(res.Status),
		res.OriginalText,
		string(contentJSON),
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	return nil
}

// ReplaceContent overwrites the transcript's entire structured content with
// the submitted pruned paragraph list, constrained to the requesting owner.
// The write is atomic: either the full new content lands or nothing changes.
// It reports whether a matching transcript was updated.
func (s *Store) ReplaceContent(ctx context.Context, ownerID, id string, pruned []transcript.PrunedParagraph) (bool, error) {
	contentJSON, err := json.Marshal(transcript.RestoreParagraphs(pruned))
	if err != nil {
		return false, fmt.Errorf("marshal content: %w", err)
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE transcripts SET content_json = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		string(contentJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("replace content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a transcript, constrained to its owner. It reports whether
// a transcript was deleted.
func (s *Store) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete transcript: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const transcriptColumns = "id, owner_id, name, status, audio_url, audio_origin, original_text, content_json, created_at"

func scanTranscript(scanner interface{ Scan(dest ...any) error }) (*transcript.Transcript, error) {
	var (
		id           string
		ownerID      string
		name         string
		statusStr    string
		audioURL     string
		audioOrigin  sql.NullString
		originalText sql.NullString
		contentJSON  sql.NullString
		createdRaw   string
	)

	if err := scanner.Scan(
		&id,
		&ownerID,
		&name,
		&statusStr,
		&audioURL,
		&audioOrigin,
		&originalText,
		&contentJSON,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	t := &transcript.Transcript{
		ID:           id,
		OwnerID:      ownerID,
		Name:         name,
		Status:       transcript.Status(statusStr),
		Audio:        transcript.AudioRef{URL: audioURL, Origin: audioOrigin.String},
		OriginalText: originalText.String,
	}

	if contentJSON.Valid && contentJSON.String != "" {
		if err := json.Unmarshal([]byte(contentJSON.String), &t.Paragraphs); err != nil {
			return nil, fmt.Errorf("unmarshal content: %w", err)
		}
	}

	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		t.Created = created
	}

	return t, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
