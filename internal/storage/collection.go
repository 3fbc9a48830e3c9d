package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Collection gives typed access to the records of a single kind.
type Collection[T any] struct {
	kind    string
	backend Backend
	idOf    func(*T) string
}

func NewCollection[T any](backend Backend, kind string, idOf func(*T) string) *Collection[T] {
	return &Collection[T]{kind: kind, backend: backend, idOf: idOf}
}

func (c *Collection[T]) Kind() string { return c.kind }

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	bodies, err := c.backend.List(ctx, c.kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.kind, err)
	}

	out := make([]T, 0, len(bodies))
	for _, body := range bodies {
		var rec T
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.kind, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	body, err := c.backend.Get(ctx, c.kind, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %q: %w", c.kind, id, err)
	}

	var rec T
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode %s %q: %w", c.kind, id, err)
	}
	return &rec, nil
}

func (c *Collection[T]) Insert(ctx context.Context, rec *T) error {
	id := c.idOf(rec)
	if id == "" {
		return fmt.Errorf("insert %s: empty id", c.kind)
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s %q: %w", c.kind, id, err)
	}
	if err := c.backend.Insert(ctx, c.kind, id, body); err != nil {
		return fmt.Errorf("insert %s %q: %w", c.kind, id, err)
	}
	return nil
}

// Update decodes the stored record, applies mutate and writes the result back
// in one backend transaction. An error from mutate aborts the write and is
// returned unchanged (wrapped).
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (*T, error) {
	var updated T
	err := c.backend.Update(ctx, c.kind, id, func(body []byte) ([]byte, error) {
		var rec T
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		if err := mutate(&rec); err != nil {
			return nil, err
		}
		if c.idOf(&rec) != id {
			return nil, fmt.Errorf("id of %s %q changed during update", c.kind, id)
		}
		updated = rec
		return json.Marshal(&rec)
	})
	if err != nil {
		return nil, fmt.Errorf("update %s %q: %w", c.kind, id, err)
	}
	return &updated, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.backend.Delete(ctx, c.kind, id); err != nil {
		return fmt.Errorf("delete %s %q: %w", c.kind, id, err)
	}
	return nil
}

func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	bodies, err := c.backend.List(ctx, c.kind)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.kind, err)
	}
	return len(bodies), nil
}

func (c *Collection[T]) Filter(ctx context.Context, keep func(*T) bool) ([]T, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(all))
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Search returns the records where any of fields (JSON names) contains term,
// ignoring case. A blank term matches everything; empty, zero and false values
// never match.
func (c *Collection[T]) Search(ctx context.Context, term string, fields []string) ([]T, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.List(ctx)
	}

	bodies, err := c.backend.List(ctx, c.kind)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", c.kind, err)
	}

	out := make([]T, 0)
	for _, body := range bodies {
		doc, err := decodeDocument(body)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", c.kind, err)
		}
		if !matchesAny(doc, term, fields) {
			continue
		}

		var rec T
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.kind, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeDocument(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func matchesAny(doc map[string]any, term string, fields []string) bool {
	for _, field := range fields {
		text, ok := renderValue(doc[field])
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(text), term) {
			return true
		}
	}
	return false
}

// renderValue turns a decoded JSON value into searchable text. The second
// result is false for values that never match.
func renderValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case bool:
		return "true", val
	case json.Number:
		s := val.String()
		if f, err := val.Float64(); err == nil && f == 0 {
			return "", false
		}
		return s, true
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := renderValue(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), len(parts) > 0
	default:
		return "", false
	}
}
