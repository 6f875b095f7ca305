package sqlstore

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
)

// dialect renders the handful of statements the store needs. Every
// statement takes collection and id (when present) as its first two args.
type dialect interface {
	upsert() string
	get() string
	merge() string
	remove() string
	selectWhere(collection string, q docstore.Query) (string, []any, error)
}

type postgres struct{}

func (postgres) upsert() string {
	return `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::text::jsonb, NOW(), NOW())
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`
}

func (postgres) get() string {
	return `SELECT data::text FROM documents WHERE collection = $1 AND id = $2`
}

func (postgres) merge() string {
	return `
		UPDATE documents
		SET data = data || $3::text::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`
}

func (postgres) remove() string {
	return `DELETE FROM documents WHERE collection = $1 AND id = $2`
}

// selectWhere matches all equality filters at once through jsonb containment,
// which a GIN index on data can serve.
func (postgres) selectWhere(collection string, q docstore.Query) (string, []any, error) {
	query := `SELECT data::text FROM documents WHERE collection = $1`
	args := []any{collection}
	argIdx := 2

	if len(q.Filters) > 0 {
		match := make(map[string]any, len(q.Filters))
		for _, f := range q.Filters {
			match[f.Field] = f.Value
		}

		raw, err := json.Marshal(match)
		if err != nil {
			return "", nil, fmt.Errorf("encoding filters: %w", err)
		}

		query += fmt.Sprintf(" AND data @> $%d::text::jsonb", argIdx)

		args = append(args, string(raw))
		argIdx++
	}

	if o := q.OrderBy; o != nil {
		query += fmt.Sprintf(" ORDER BY data -> $%d::text %s, id", argIdx, direction(o.Direction))

		args = append(args, o.Field)
	} else {
		query += " ORDER BY id"
	}

	return query, args, nil
}

type sqlite struct{}

func (sqlite) upsert() string {
	return `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?1, ?2, ?3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`
}

func (sqlite) get() string {
	return `SELECT data FROM documents WHERE collection = ?1 AND id = ?2`
}

func (sqlite) merge() string {
	return `
		UPDATE documents
		SET data = json_patch(data, ?3), updated_at = CURRENT_TIMESTAMP
		WHERE collection = ?1 AND id = ?2
	`
}

func (sqlite) remove() string {
	return `DELETE FROM documents WHERE collection = ?1 AND id = ?2`
}

func (sqlite) selectWhere(collection string, q docstore.Query) (string, []any, error) {
	query := `SELECT data FROM documents WHERE collection = ?`
	args := []any{collection}

	for _, f := range q.Filters {
		v, err := sqliteValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("filter %s: %w", f.Field, err)
		}

		query += " AND json_extract(data, ?) = ?"

		args = append(args, "$."+f.Field, v)
	}

	if o := q.OrderBy; o != nil {
		query += fmt.Sprintf(" ORDER BY json_extract(data, ?) %s, id", direction(o.Direction))

		args = append(args, "$."+o.Field)
	} else {
		query += " ORDER BY id"
	}

	return query, args, nil
}

// sqliteValue converts a filter value to what json_extract yields for it;
// JSON booleans come back as 0 and 1.
func sqliteValue(v any) (any, error) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}

		return 0, nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}

	return nil, fmt.Errorf("unsupported filter value %T", v)
}

func direction(d docstore.Direction) string {
	if d == docstore.Descending {
		return "DESC"
	}

	return "ASC"
}
