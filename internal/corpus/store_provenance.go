package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EnsureProvenance finds or creates the provenance row for a (run, task,
// creator, record type) tuple so every record written by one stage run shares
// a single provenance id.
func (s *Store) EnsureProvenance(ctx context.Context, runID, taskName, creatorName, recordType string) (*Provenance, error) {
	if taskName == "" || creatorName == "" || recordType == "" {
		return nil, errors.New("provenance fields must be non-empty")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, task_name, creator_name, record_type, created_at
         FROM provenance
         WHERE run_id = ? AND task_name = ? AND creator_name = ? AND record_type = ?
         ORDER BY id LIMIT 1`,
		runID, taskName, creatorName, recordType)
	prov, err := scanProvenance(row)
	if err == nil {
		return prov, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find provenance: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO provenance (run_id, task_name, creator_name, record_type, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID, taskName, creatorName, recordType, timestamp(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("insert provenance: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.ProvenanceByID(ctx, id)
}

// ProvenanceByID fetches a provenance row by identifier. Missing rows return nil.
func (s *Store) ProvenanceByID(ctx context.Context, id int64) (*Provenance, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, task_name, creator_name, record_type, created_at
         FROM provenance WHERE id = ?`, id)
	prov, err := scanProvenance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get provenance: %w", err)
	}
	return prov, nil
}

func scanProvenance(scanner rowScanner) (*Provenance, error) {
	var prov Provenance
	var createdAt string
	err := scanner.Scan(
		&prov.ID,
		&prov.RunID,
		&prov.TaskName,
		&prov.CreatorName,
		&prov.RecordType,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	prov.CreatedAt = parseTimestamp(createdAt)
	return &prov, nil
}
