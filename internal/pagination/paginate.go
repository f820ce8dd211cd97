package pagination

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

const (
	DefaultItemsPerPage = 15
	MaxItemsPerPage     = 100
)

// Request is a page request as received from the API layer.
type Request struct {
	ItemsPerPage int
	// FirstEvaluatedKey asks for the page before the row it encodes.
	FirstEvaluatedKey string
	// LastEvaluatedKey asks for the page after the row it encodes.
	LastEvaluatedKey string
}

// Page is one page of rows in ordering order plus the cursors of its edges.
type Page[T any] struct {
	Items []T
	// FirstEvaluatedKey is the key of the first item. Sent back as
	// Request.FirstEvaluatedKey it is an exclusive bound: the previous page ends just
	// before this item.
	FirstEvaluatedKey string
	// LastEvaluatedKey is the key of the last item, not of the next page's first item.
	// Sent back as Request.LastEvaluatedKey it is an exclusive bound: the next page
	// starts strictly after this item.
	LastEvaluatedKey string
	HasNextPage      bool
	HasPreviousPage  bool
}

// ScanFunc reads rows strictly beyond s.After in the direction of s, at most s.Limit rows.
type ScanFunc[T any] func(ctx context.Context, s Scan) ([]T, error)

// Limit returns the effective page size of the request.
func (r Request) Limit() (int, error) {
	switch {
	case r.ItemsPerPage < 0:
		return 0, fmt.Errorf("%w: itemsPerPage must be positive", model.ErrInvalidArgument)
	case r.ItemsPerPage == 0:
		return DefaultItemsPerPage, nil
	case r.ItemsPerPage > MaxItemsPerPage:
		return MaxItemsPerPage, nil
	default:
		return r.ItemsPerPage, nil
	}
}

// Paginate fetches the page selected by req. It over-fetches one row to learn whether
// another page exists in the scan direction.
func Paginate[T any](ctx context.Context, o Ordering, req Request, scan ScanFunc[T], keyOf func(T) Key) (Page[T], error) {
	limit, err := req.Limit()
	if err != nil {
		return Page[T]{}, err
	}
	if req.FirstEvaluatedKey != "" && req.LastEvaluatedKey != "" {
		return Page[T]{}, fmt.Errorf("%w: firstEvaluatedKey and lastEvaluatedKey are mutually exclusive", model.ErrMalformedCursor)
	}

	s := Scan{Limit: limit + 1}
	switch {
	case req.LastEvaluatedKey != "":
		c, err := DecodeCursor(o, req.LastEvaluatedKey)
		if err != nil {
			return Page[T]{}, err
		}
		s.After = c.Key
	case req.FirstEvaluatedKey != "":
		c, err := DecodeCursor(o, req.FirstEvaluatedKey)
		if err != nil {
			return Page[T]{}, err
		}
		s.After = c.Key
		s.Reverse = true
	}

	rows, err := scan(ctx, s)
	if err != nil {
		return Page[T]{}, err
	}
	if err := checkOrder(o, s, rows, keyOf); err != nil {
		return Page[T]{}, err
	}

	more := len(rows) > limit
	if more {
		rows = rows[:limit]
	}
	if s.Reverse {
		reverse(rows)
	}

	page := Page[T]{Items: rows}
	if s.Reverse {
		page.HasPreviousPage = more
		page.HasNextPage = true
	} else {
		page.HasNextPage = more
		page.HasPreviousPage = s.After != nil
	}
	if len(rows) > 0 {
		page.FirstEvaluatedKey = NewCursor(o, keyOf(rows[0])).Encode()
		page.LastEvaluatedKey = NewCursor(o, keyOf(rows[len(rows)-1])).Encode()
	}
	return page, nil
}

// MapPage converts the items of a page, keeping its cursors.
func MapPage[T, R any](p Page[T], fn func(T) (R, error)) (Page[R], error) {
	out := Page[R]{
		Items:             make([]R, 0, len(p.Items)),
		FirstEvaluatedKey: p.FirstEvaluatedKey,
		LastEvaluatedKey:  p.LastEvaluatedKey,
		HasNextPage:       p.HasNextPage,
		HasPreviousPage:   p.HasPreviousPage,
	}
	for _, item := range p.Items {
		r, err := fn(item)
		if err != nil {
			return Page[R]{}, err
		}
		out.Items = append(out.Items, r)
	}
	return out, nil
}

// checkOrder verifies the scan honored its boundary and returned strictly ordered keys.
func checkOrder[T any](o Ordering, s Scan, rows []T, keyOf func(T) Key) error {
	desc := s.Descending(o)
	prev := s.After
	for _, row := range rows {
		k := keyOf(row)
		if len(k) != len(o.Columns) {
			return fmt.Errorf("%w: row key has %d values, ordering %s has %d columns", model.ErrConsistencyViolation, len(k), o.Name, len(o.Columns))
		}
		if prev != nil {
			cmp := k.Compare(prev)
			if (desc && cmp >= 0) || (!desc && cmp <= 0) {
				return fmt.Errorf("%w: scan of %s returned key %v out of order after %v", model.ErrConsistencyViolation, o.Name, k, prev)
			}
		}
		prev = k
	}
	return nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
