package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/mirror/internal/decl"
)

// PutLibrary stores a library snapshot. Returns changed=false when a
// snapshot with the same content hash already exists; nothing is written
// in that case.
func (s *Store) PutLibrary(ctx context.Context, lib decl.RawLibrary) (changed bool, err error) {
	if lib.URI == "" {
		return false, errors.New("put library: empty uri")
	}
	content, hash, err := marshalLibrary(lib)
	if err != nil {
		return false, fmt.Errorf("put library: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("put library: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT content_hash FROM libraries WHERE uri = ?`, lib.URI).Scan(&existing)
	switch {
	case err == nil && existing == hash:
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("put library %s: %w", lib.URI, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO libraries (uri, content, content_hash, updated_seq)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(updated_seq), 0) + 1 FROM libraries))
		ON CONFLICT(uri) DO UPDATE SET
			content = excluded.content,
			content_hash = excluded.content_hash,
			updated_seq = excluded.updated_seq
	`, lib.URI, content, hash)
	if err != nil {
		return false, fmt.Errorf("put library %s: %w", lib.URI, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("put library %s: commit: %w", lib.URI, err)
	}
	return true, nil
}

// DeleteLibrary removes a snapshot. Returns false if it did not exist.
func (s *Store) DeleteLibrary(ctx context.Context, uri string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM libraries WHERE uri = ?`, uri)
	if err != nil {
		return false, fmt.Errorf("delete library %s: %w", uri, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete library %s: %w", uri, err)
	}
	return n > 0, nil
}

// RecordInvocation appends an invocation record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) RecordInvocation(ctx context.Context, rec InvocationRecord) error {
	if rec.ID == "" {
		return errors.New("record invocation: empty id")
	}
	if rec.Outcome != OutcomeOK && rec.Outcome != OutcomeError {
		return fmt.Errorf("record invocation %s: invalid outcome %q", rec.ID, rec.Outcome)
	}
	args := rec.Args
	if args == "" {
		args = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations
		(id, seq, backend, operation, type_name, member, args, outcome, error_code, error_message, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Seq,
		rec.Backend,
		rec.Operation,
		rec.Type,
		rec.Member,
		args,
		rec.Outcome,
		rec.ErrorCode,
		rec.ErrorMessage,
		rec.Result,
	)
	if err != nil {
		return fmt.Errorf("record invocation %s: %w", rec.ID, err)
	}
	return nil
}
