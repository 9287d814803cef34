package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const segmentColumns = `id, episode_id, start_time_s, end_time_s, provenance_id, created_at`

// InsertSegment records the located court segment for an episode. Each
// episode has at most one segment; attempting to insert a second fails.
func (s *Store) InsertSegment(ctx context.Context, segment *Segment) (*Segment, error) {
	if segment == nil {
		return nil, errors.New("segment is nil")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO segments (episode_id, start_time_s, end_time_s, provenance_id, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		segment.EpisodeID,
		segment.StartTimeS,
		segment.EndTimeS,
		segment.ProvenanceID,
		timestamp(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert segment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.SegmentByID(ctx, id)
}

// SegmentByID fetches a segment by identifier. Missing rows return nil.
func (s *Store) SegmentByID(ctx context.Context, id int64) (*Segment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+segmentColumns+` FROM segments WHERE id = ?`, id)
	segment, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get segment: %w", err)
	}
	return segment, nil
}

// SegmentForEpisode fetches the segment located for an episode, or nil.
func (s *Store) SegmentForEpisode(ctx context.Context, episodeID int64) (*Segment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+segmentColumns+` FROM segments WHERE episode_id = ?`, episodeID)
	segment, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get segment for episode: %w", err)
	}
	return segment, nil
}

func scanSegment(scanner rowScanner) (*Segment, error) {
	var segment Segment
	var createdAt string
	err := scanner.Scan(
		&segment.ID,
		&segment.EpisodeID,
		&segment.StartTimeS,
		&segment.EndTimeS,
		&segment.ProvenanceID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	segment.CreatedAt = parseTimestamp(createdAt)
	return &segment, nil
}
