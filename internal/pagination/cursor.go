package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
)

const cursorVersion = 1

// Cursor is a decoded evaluated key.
type Cursor struct {
	Ordering string
	Key      Key
}

type cursorDoc struct {
	V int     `json:"v"`
	O string  `json:"o"`
	K []int64 `json:"k"`
}

// Encode renders the cursor in its opaque wire form.
func (c Cursor) Encode() string {
	bz, err := json.Marshal(cursorDoc{V: cursorVersion, O: c.Ordering, K: c.Key})
	if err != nil {
		// A struct of ints and a string always marshals.
		panic(fmt.Sprintf("marshal cursor: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(bz)
}

// NewCursor builds the cursor of a row key under an ordering.
func NewCursor(o Ordering, k Key) Cursor {
	return Cursor{Ordering: o.Name, Key: append(Key(nil), k...)}
}

// DecodeCursor parses a cursor issued for ordering o.
func DecodeCursor(o Ordering, s string) (Cursor, error) {
	bz, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: not base64url", model.ErrMalformedCursor)
	}
	var doc cursorDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return Cursor{}, fmt.Errorf("%w: bad document", model.ErrMalformedCursor)
	}
	if doc.V != cursorVersion {
		return Cursor{}, fmt.Errorf("%w: unsupported version %d", model.ErrMalformedCursor, doc.V)
	}
	if doc.O != o.Name {
		return Cursor{}, fmt.Errorf("%w: issued for %q, not %q", model.ErrMalformedCursor, doc.O, o.Name)
	}
	if len(doc.K) != len(o.Columns) {
		return Cursor{}, fmt.Errorf("%w: want %d key values, got %d", model.ErrMalformedCursor, len(o.Columns), len(doc.K))
	}
	for i, v := range doc.K {
		if v < 0 {
			return Cursor{}, fmt.Errorf("%w: cursor column %s has negative value %d", model.ErrConsistencyViolation, o.Columns[i], v)
		}
	}
	return Cursor{Ordering: doc.O, Key: doc.K}, nil
}
