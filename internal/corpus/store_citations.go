package corpus

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ReplaceCitations rewrites the outgoing citation edges of a case in one
// transaction. Re-running extraction over an unchanged opinion converges on
// the same rows.
func (s *Store) ReplaceCitations(ctx context.Context, citingCaseID int64, citations []*Citation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin citations tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM citations WHERE citing_case_id = ?`, citingCaseID); err != nil {
		return fmt.Errorf("delete prior citations: %w", err)
	}

	now := timestamp(time.Now())
	for _, citation := range citations {
		if citation == nil {
			return errors.New("citation is nil")
		}
		signal := citation.Signal
		if signal == "" {
			signal = SignalNone
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO citations (citing_case_id, cited_case_id, signal, created_at)
             VALUES (?, ?, ?, ?)`,
			citingCaseID, citation.CitedCaseID, signal, now); err != nil {
			return fmt.Errorf("insert citation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit citations: %w", err)
	}
	return nil
}

// CitationsFrom lists the outgoing edges of a case, oldest cited case first.
func (s *Store) CitationsFrom(ctx context.Context, citingCaseID int64) ([]*Citation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ct.id, ct.citing_case_id, ct.cited_case_id, ct.signal, ct.created_at
         FROM citations ct
         JOIN cases c ON c.id = ct.cited_case_id
         JOIN episodes e ON e.id = c.episode_id
         WHERE ct.citing_case_id = ?
         ORDER BY e.pub_date, c.case_seq, c.id`,
		citingCaseID)
	if err != nil {
		return nil, fmt.Errorf("list citations from: %w", err)
	}
	defer rows.Close()
	return collectCitations(rows)
}

// CitationsTo lists the incoming edges of a case, oldest citing case first.
func (s *Store) CitationsTo(ctx context.Context, citedCaseID int64) ([]*Citation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ct.id, ct.citing_case_id, ct.cited_case_id, ct.signal, ct.created_at
         FROM citations ct
         JOIN cases c ON c.id = ct.citing_case_id
         JOIN episodes e ON e.id = c.episode_id
         WHERE ct.cited_case_id = ?
         ORDER BY e.pub_date, c.case_seq, c.id`,
		citedCaseID)
	if err != nil {
		return nil, fmt.Errorf("list citations to: %w", err)
	}
	defer rows.Close()
	return collectCitations(rows)
}

type citationRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectCitations(rows citationRows) ([]*Citation, error) {
	var citations []*Citation
	for rows.Next() {
		var citation Citation
		var createdAt string
		if err := rows.Scan(
			&citation.ID,
			&citation.CitingCaseID,
			&citation.CitedCaseID,
			&citation.Signal,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan citation: %w", err)
		}
		citation.CreatedAt = parseTimestamp(createdAt)
		citations = append(citations, &citation)
	}
	return citations, rows.Err()
}
