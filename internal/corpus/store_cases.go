package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const caseColumns = `c.id, c.episode_id, c.segment_id, c.docket_number, c.case_seq,
    c.case_caption, c.fact_summary, c.questions_presented_html, c.procedural_posture,
    c.topics_json, c.start_time_s, c.end_time_s, c.status, c.status_message,
    c.provenance_id, c.created_at, c.updated_at`

// InsertCase records a newly extracted case.
func (s *Store) InsertCase(ctx context.Context, kase *Case) (*Case, error) {
	if kase == nil {
		return nil, errors.New("case is nil")
	}
	if kase.DocketNumber == "" {
		return nil, errors.New("case docket number is empty")
	}
	status := kase.Status
	if status == "" {
		status = StatusExtracted
	}
	now := timestamp(time.Now())

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cases (
            episode_id, segment_id, docket_number, case_seq, case_caption,
            fact_summary, questions_presented_html, procedural_posture, topics_json,
            start_time_s, end_time_s, status, status_message, provenance_id,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kase.EpisodeID,
		kase.SegmentID,
		kase.DocketNumber,
		kase.CaseSeq,
		kase.CaseCaption,
		kase.FactSummary,
		kase.QuestionsPresentedHTML,
		kase.ProceduralPosture,
		defaultTopics(kase.TopicsJSON),
		kase.StartTimeS,
		kase.EndTimeS,
		status,
		kase.StatusMessage,
		kase.ProvenanceID,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert case: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.CaseByID(ctx, id)
}

func defaultTopics(topicsJSON string) string {
	if topicsJSON == "" {
		return "[]"
	}
	return topicsJSON
}

// CaseByID fetches a case by identifier. Missing rows return nil.
func (s *Store) CaseByID(ctx context.Context, id int64) (*Case, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases c WHERE c.id = ?`, id)
	kase, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	return kase, nil
}

// CaseByDocket fetches a case by docket number. Missing rows return nil.
func (s *Store) CaseByDocket(ctx context.Context, docket string) (*Case, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases c WHERE c.docket_number = ?`, docket)
	kase, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get case by docket: %w", err)
	}
	return kase, nil
}

// CasesForEpisode lists the cases extracted from an episode in case order.
func (s *Store) CasesForEpisode(ctx context.Context, episodeID int64) ([]*Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases c WHERE c.episode_id = ? ORDER BY c.case_seq`,
		episodeID)
	if err != nil {
		return nil, fmt.Errorf("list cases for episode: %w", err)
	}
	defer rows.Close()
	return collectCases(rows)
}

// ListCasesChrono returns all cases in strict chronological order: episode
// publication date, case ordinal within the episode, then case id.
func (s *Store) ListCasesChrono(ctx context.Context) ([]*Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases c
         JOIN episodes e ON e.id = c.episode_id
         ORDER BY e.pub_date, c.case_seq, c.id`)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()
	return collectCases(rows)
}

// DecidedCasesBefore returns decided cases whose ChronoKey is strictly less
// than the given key, oldest first. This is the precedent universe visible to
// an opinion being drafted at that key.
func (s *Store) DecidedCasesBefore(ctx context.Context, key ChronoKey) ([]*Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+caseColumns+`, e.pub_date FROM cases c
         JOIN episodes e ON e.id = c.episode_id
         WHERE c.status = ?
         ORDER BY e.pub_date, c.case_seq, c.id`,
		StatusDecided)
	if err != nil {
		return nil, fmt.Errorf("list decided cases: %w", err)
	}
	defer rows.Close()

	var cases []*Case
	for rows.Next() {
		kase, pubDate, err := scanCaseWithPubDate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decided case: %w", err)
		}
		candidate := ChronoKey{PubDate: pubDate, CaseSeq: kase.CaseSeq, CaseID: kase.ID}
		if !candidate.Before(key) {
			break
		}
		cases = append(cases, kase)
	}
	return cases, rows.Err()
}

// ChronoKeyForCase resolves the chronological key of a case.
func (s *Store) ChronoKeyForCase(ctx context.Context, caseID int64) (ChronoKey, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT c.case_seq, e.pub_date FROM cases c
         JOIN episodes e ON e.id = c.episode_id
         WHERE c.id = ?`, caseID)
	var caseSeq int
	var pubDate string
	if err := row.Scan(&caseSeq, &pubDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ChronoKey{}, fmt.Errorf("case %d not found", caseID)
		}
		return ChronoKey{}, fmt.Errorf("chrono key: %w", err)
	}
	return ChronoKey{PubDate: parseTimestamp(pubDate), CaseSeq: caseSeq, CaseID: caseID}, nil
}

// UpdateCaseStatus transitions a case and records an optional status message.
func (s *Store) UpdateCaseStatus(ctx context.Context, caseID int64, status CaseStatus, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cases SET status = ?, status_message = ?, updated_at = ? WHERE id = ?`,
		status, message, timestamp(time.Now()), caseID)
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("case %d not found", caseID)
	}
	return nil
}

// CasesWithStatus lists cases currently in the given status, chronologically.
func (s *Store) CasesWithStatus(ctx context.Context, status CaseStatus) ([]*Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases c
         JOIN episodes e ON e.id = c.episode_id
         WHERE c.status = ?
         ORDER BY e.pub_date, c.case_seq, c.id`,
		status)
	if err != nil {
		return nil, fmt.Errorf("list cases with status: %w", err)
	}
	defer rows.Close()
	return collectCases(rows)
}

// CountCasesByStatus reports how many cases sit in each status.
func (s *Store) CountCasesByStatus(ctx context.Context) (map[CaseStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM cases GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}
	defer rows.Close()

	counts := make(map[CaseStatus]int)
	for rows.Next() {
		var status CaseStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan case count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func collectCases(rows *sql.Rows) ([]*Case, error) {
	var cases []*Case
	for rows.Next() {
		kase, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, kase)
	}
	return cases, rows.Err()
}

func scanCase(scanner rowScanner) (*Case, error) {
	var kase Case
	var createdAt, updatedAt string
	err := scanner.Scan(
		&kase.ID,
		&kase.EpisodeID,
		&kase.SegmentID,
		&kase.DocketNumber,
		&kase.CaseSeq,
		&kase.CaseCaption,
		&kase.FactSummary,
		&kase.QuestionsPresentedHTML,
		&kase.ProceduralPosture,
		&kase.TopicsJSON,
		&kase.StartTimeS,
		&kase.EndTimeS,
		&kase.Status,
		&kase.StatusMessage,
		&kase.ProvenanceID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	kase.CreatedAt = parseTimestamp(createdAt)
	kase.UpdatedAt = parseTimestamp(updatedAt)
	return &kase, nil
}

func scanCaseWithPubDate(scanner rowScanner) (*Case, time.Time, error) {
	var kase Case
	var createdAt, updatedAt, pubDate string
	err := scanner.Scan(
		&kase.ID,
		&kase.EpisodeID,
		&kase.SegmentID,
		&kase.DocketNumber,
		&kase.CaseSeq,
		&kase.CaseCaption,
		&kase.FactSummary,
		&kase.QuestionsPresentedHTML,
		&kase.ProceduralPosture,
		&kase.TopicsJSON,
		&kase.StartTimeS,
		&kase.EndTimeS,
		&kase.Status,
		&kase.StatusMessage,
		&kase.ProvenanceID,
		&createdAt,
		&updatedAt,
		&pubDate,
	)
	if err != nil {
		return nil, time.Time{}, err
	}
	kase.CreatedAt = parseTimestamp(createdAt)
	kase.UpdatedAt = parseTimestamp(updatedAt)
	return &kase, parseTimestamp(pubDate), nil
}
