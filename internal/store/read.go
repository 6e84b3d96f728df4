package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/mirror/internal/decl"
	"github.com/roach88/mirror/internal/resolve"
)

var _ resolve.Source = (*Store)(nil)

// Library implements resolve.Source.
// Returns an error wrapping resolve.ErrLibraryNotFound for unknown URIs.
func (s *Store) Library(ctx context.Context, uri string) (*decl.RawLibrary, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM libraries WHERE uri = ?`, uri).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", resolve.ErrLibraryNotFound, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("read library %s: %w", uri, err)
	}
	lib, err := unmarshalLibrary(content)
	if err != nil {
		return nil, fmt.Errorf("read library %s: %w", uri, err)
	}
	return &lib, nil
}

// Libraries returns every stored library ordered by URI.
//
// Returns an empty slice (not nil) if the store holds no libraries.
func (s *Store) Libraries(ctx context.Context) ([]decl.RawLibrary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content FROM libraries ORDER BY uri COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query libraries: %w", err)
	}
	defer rows.Close()

	libs := []decl.RawLibrary{}
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		lib, err := unmarshalLibrary(content)
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate libraries: %w", err)
	}
	return libs, nil
}

// LibraryInfos lists stored snapshots without decoding their content,
// ordered by URI.
func (s *Store) LibraryInfos(ctx context.Context) ([]LibraryInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uri, content_hash, updated_seq FROM libraries ORDER BY uri COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query libraries: %w", err)
	}
	defer rows.Close()

	infos := []LibraryInfo{}
	for rows.Next() {
		var info LibraryInfo
		if err := rows.Scan(&info.URI, &info.ContentHash, &info.UpdatedSeq); err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate libraries: %w", err)
	}
	return infos, nil
}

// Invocations returns recorded invocations matching filter, ordered by
// seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Invocations(ctx context.Context, filter InvocationFilter) ([]InvocationRecord, error) {
	var (
		where []string
		args  []any
	)
	add := func(col, val string) {
		if val != "" {
			where = append(where, col+" = ?")
			args = append(args, val)
		}
	}
	add("type_name", filter.Type)
	add("member", filter.Member)
	add("backend", filter.Backend)
	add("operation", filter.Operation)
	add("outcome", filter.Outcome)
	if filter.AfterSeq > 0 {
		where = append(where, "seq > ?")
		args = append(args, filter.AfterSeq)
	}

	query := `
		SELECT id, seq, backend, operation, type_name, member, args, outcome, error_code, error_message, result
		FROM invocations`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY seq ASC, id COLLATE BINARY ASC"
	if filter.Limit > 0 {
		query += "\n\t\tLIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	records := []InvocationRecord{}
	for rows.Next() {
		var rec InvocationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Seq,
			&rec.Backend,
			&rec.Operation,
			&rec.Type,
			&rec.Member,
			&rec.Args,
			&rec.Outcome,
			&rec.ErrorCode,
			&rec.ErrorMessage,
			&rec.Result,
		); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return records, nil
}

// MaxSeq returns the highest recorded invocation seq, or 0 for an empty log.
// Used to resume a logical clock across process restarts.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM invocations`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}
