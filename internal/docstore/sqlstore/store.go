// Package sqlstore keeps documents as JSON in a single SQL table. The same
// store runs on PostgreSQL (jsonb) and SQLite (JSON1 text).
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
)

type Store struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgres returns a store over a database opened with the pgx driver.
func NewPostgres(db *sql.DB) *Store {
	return &Store{db: db, dialect: postgres{}}
}

// NewSQLite returns a store over a database opened with the sqlite driver.
func NewSQLite(db *sql.DB) *Store {
	return &Store{db: db, dialect: sqlite{}}
}

func (s *Store) NewID(_ string) string {
	return uuid.NewString()
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.upsert(), collection, id, string(raw)); err != nil {
		return fmt.Errorf("setting document %s/%s: %w", collection, id, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var raw string

	err := s.db.QueryRowContext(ctx, s.dialect.get(), collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}

		return nil, fmt.Errorf("getting document %s/%s: %w", collection, id, err)
	}

	return decode(raw)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding fields: %w", err)
	}

	res, err := s.db.ExecContext(ctx, s.dialect.merge(), collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("updating document %s/%s: %w", collection, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating document %s/%s: %w", collection, id, err)
	}

	if n == 0 {
		return docstore.ErrNotFound
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, s.dialect.remove(), collection, id)
	if err != nil {
		return fmt.Errorf("deleting document %s/%s: %w", collection, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document %s/%s: %w", collection, id, err)
	}

	if n == 0 {
		return docstore.ErrNotFound
	}

	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.CheckQuery(q); err != nil {
		return nil, err
	}

	query, args, err := s.dialect.selectWhere(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc, err := decode(raw)
		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}

	return docs, nil
}

func decode(raw string) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return doc, nil
}
