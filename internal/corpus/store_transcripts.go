package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const transcriptColumns = `id, episode_id, segment_id, transcript_json,
    start_time_s, end_time_s, provenance_id, created_at`

// ReplaceTranscript stores a transcript for a segment, replacing any prior
// transcript wholesale.
func (s *Store) ReplaceTranscript(ctx context.Context, record *TranscriptRecord) (*TranscriptRecord, error) {
	if record == nil {
		return nil, errors.New("transcript record is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transcript tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transcripts WHERE segment_id = ?`, record.SegmentID); err != nil {
		return nil, fmt.Errorf("delete prior transcript: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transcripts (
            episode_id, segment_id, transcript_json, start_time_s, end_time_s,
            provenance_id, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.EpisodeID,
		record.SegmentID,
		record.TranscriptJSON,
		record.StartTimeS,
		record.EndTimeS,
		record.ProvenanceID,
		timestamp(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert transcript: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transcript: %w", err)
	}
	return s.TranscriptByID(ctx, id)
}

// TranscriptByID fetches a transcript by identifier. Missing rows return nil.
func (s *Store) TranscriptByID(ctx context.Context, id int64) (*TranscriptRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transcriptColumns+` FROM transcripts WHERE id = ?`, id)
	record, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return record, nil
}

// TranscriptForSegment fetches the transcript for a segment, or nil.
func (s *Store) TranscriptForSegment(ctx context.Context, segmentID int64) (*TranscriptRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transcriptColumns+` FROM transcripts WHERE segment_id = ?`, segmentID)
	record, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript for segment: %w", err)
	}
	return record, nil
}

func scanTranscript(scanner rowScanner) (*TranscriptRecord, error) {
	var record TranscriptRecord
	var createdAt string
	err := scanner.Scan(
		&record.ID,
		&record.EpisodeID,
		&record.SegmentID,
		&record.TranscriptJSON,
		&record.StartTimeS,
		&record.EndTimeS,
		&record.ProvenanceID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = parseTimestamp(createdAt)
	return &record, nil
}
