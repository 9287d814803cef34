package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const opinionColumns = `id, case_id, authorship_html, holding_statement_html,
    reasoning_summary_html, opinion_body_html, agent_log_json, provenance_id, created_at`

// CommitOpinion inserts the opinion and marks its case decided in a single
// transaction. A case can hold at most one opinion.
func (s *Store) CommitOpinion(ctx context.Context, opinion *Opinion) (*Opinion, error) {
	if opinion == nil {
		return nil, errors.New("opinion is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin opinion tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := timestamp(time.Now())
	agentLog := opinion.AgentLogJSON
	if agentLog == "" {
		agentLog = "[]"
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO opinions (
            case_id, authorship_html, holding_statement_html,
            reasoning_summary_html, opinion_body_html, agent_log_json,
            provenance_id, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		opinion.CaseID,
		opinion.AuthorshipHTML,
		opinion.HoldingStatementHTML,
		opinion.ReasoningSummaryHTML,
		opinion.OpinionBodyHTML,
		agentLog,
		opinion.ProvenanceID,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert opinion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE cases SET status = ?, status_message = '', updated_at = ? WHERE id = ?`,
		StatusDecided, now, opinion.CaseID); err != nil {
		return nil, fmt.Errorf("mark case decided: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit opinion: %w", err)
	}
	return s.OpinionByID(ctx, id)
}

// OpinionByID fetches an opinion by identifier. Missing rows return nil.
func (s *Store) OpinionByID(ctx context.Context, id int64) (*Opinion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+opinionColumns+` FROM opinions WHERE id = ?`, id)
	opinion, err := scanOpinion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get opinion: %w", err)
	}
	return opinion, nil
}

// OpinionForCase fetches the opinion for a case, or nil when undecided.
func (s *Store) OpinionForCase(ctx context.Context, caseID int64) (*Opinion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+opinionColumns+` FROM opinions WHERE case_id = ?`, caseID)
	opinion, err := scanOpinion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get opinion for case: %w", err)
	}
	return opinion, nil
}

func scanOpinion(scanner rowScanner) (*Opinion, error) {
	var opinion Opinion
	var createdAt string
	err := scanner.Scan(
		&opinion.ID,
		&opinion.CaseID,
		&opinion.AuthorshipHTML,
		&opinion.HoldingStatementHTML,
		&opinion.ReasoningSummaryHTML,
		&opinion.OpinionBodyHTML,
		&opinion.AgentLogJSON,
		&opinion.ProvenanceID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	opinion.CreatedAt = parseTimestamp(createdAt)
	return &opinion, nil
}
