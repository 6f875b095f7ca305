// Package memory is a process-local docstore.Store. Documents are kept as
// JSON so reads never alias caller memory and values come back with the same
// types the SQL adapters produce.
package memory

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func New() *Store {
	return &Store{collections: make(map[string]map[string][]byte)}
}

func (s *Store) NewID(_ string) string {
	return uuid.NewString()
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string][]byte)
		s.collections[collection] = c
	}

	c[id] = raw

	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	raw, ok := s.collections[collection][id]
	s.mu.RUnlock()

	if !ok {
		return nil, docstore.ErrNotFound
	}

	return decode(raw)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	patch, err := docstore.Encode(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.collections[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}

	doc, err := decode(raw)
	if err != nil {
		return err
	}

	for k, v := range patch {
		doc[k] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	s.collections[collection][id] = merged

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return docstore.ErrNotFound
	}

	delete(s.collections[collection], id)

	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := docstore.CheckQuery(q); err != nil {
		return nil, err
	}

	wants := make([][]byte, len(q.Filters))

	for i, f := range q.Filters {
		b, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding filter %s: %w", f.Field, err)
		}

		wants[i] = b
	}

	type entry struct {
		id  string
		doc docstore.Document
	}

	s.mu.RLock()

	var matched []entry

	for id, raw := range s.collections[collection] {
		doc, err := decode(raw)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}

		if matches(doc, q.Filters, wants) {
			matched = append(matched, entry{id: id, doc: doc})
		}
	}

	s.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b entry) int {
		return cmp.Compare(a.id, b.id)
	})

	if o := q.OrderBy; o != nil {
		slices.SortStableFunc(matched, func(a, b entry) int {
			c := compareValues(a.doc[o.Field], b.doc[o.Field])
			if o.Direction == docstore.Descending {
				return -c
			}

			return c
		})
	}

	docs := make([]docstore.Document, len(matched))
	for i, e := range matched {
		docs[i] = e.doc
	}

	return docs, nil
}

func matches(doc docstore.Document, filters []docstore.Filter, wants [][]byte) bool {
	for i, f := range filters {
		v, ok := doc[f.Field]
		if !ok {
			return false
		}

		got, err := json.Marshal(v)
		if err != nil || !bytes.Equal(got, wants[i]) {
			return false
		}
	}

	return true
}

// compareValues orders JSON values: missing < bool < number < string.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		return cmp.Compare(av, b.(string))
	}

	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func decode(raw []byte) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return doc, nil
}
