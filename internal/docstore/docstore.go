// Package docstore defines the collection-scoped document store the tracker
// persists into, plus the JSON codec shared by its adapters.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidField = errors.New("invalid field name")
)

// Document is an opaque key-value record as stored in a collection.
type Document map[string]any

// Filter matches documents whose Field equals Value.
type Filter struct {
	Field string
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

type Order struct {
	Field     string
	Direction Direction
}

// Query selects documents of one collection. Without OrderBy documents come
// back ordered by id.
type Query struct {
	Filters []Filter
	OrderBy *Order
}

//go:generate mockgen -source=docstore.go -destination=docstore_mock.go -package=docstore
type Store interface {
	NewID(collection string) string
	Set(ctx context.Context, collection, id string, doc Document) error
	Get(ctx context.Context, collection, id string) (Document, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CheckQuery rejects field names that adapters cannot address safely.
func CheckQuery(q Query) error {
	for _, f := range q.Filters {
		if !fieldPattern.MatchString(f.Field) {
			return fmt.Errorf("%w: %q", ErrInvalidField, f.Field)
		}
	}

	if q.OrderBy != nil && !fieldPattern.MatchString(q.OrderBy.Field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, q.OrderBy.Field)
	}

	return nil
}

// Encode converts a JSON-tagged struct into a Document.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	return doc, nil
}

// Decode fills v from doc. Fields missing from doc keep whatever value v
// already holds, so callers pass a default-constructed record.
func Decode(doc Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}

	return nil
}

// String returns doc[field] when it holds a string.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}
