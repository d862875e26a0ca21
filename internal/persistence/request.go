package persistence

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/domain"
)

// Operation is the kind of statement a Request carries
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpsert Operation = "upsert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpCount  Operation = "count"
)

// FilterOp is a column comparison
type FilterOp string

const (
	FilterEq       FilterOp = "eq"
	FilterNeq      FilterOp = "neq"
	FilterGt       FilterOp = "gt"
	FilterGte      FilterOp = "gte"
	FilterLt       FilterOp = "lt"
	FilterLte      FilterOp = "lte"
	FilterLike     FilterOp = "like"
	FilterILike    FilterOp = "ilike"
	FilterIs       FilterOp = "is"
	FilterIn       FilterOp = "in"
	FilterContains FilterOp = "cs"
)

// Cardinality constrains how many rows a read may return
type Cardinality int

const (
	Many     Cardinality = iota
	One                  // exactly one row, ErrNotFound on zero
	MaybeOne             // zero or one row
)

// Filter restricts a statement to matching rows
type Filter struct {
	Column string
	Op     FilterOp
	Value  any // []any for FilterIn, nil for "is null"
}

// Order sorts the result set
type Order struct {
	Column    string
	Ascending bool
}

// Request is one fully built statement handed to an Executor
type Request struct {
	Table       string
	Op          Operation
	Columns     string // projection, "*" when empty
	Filters     []Filter
	Orders      []Order
	Limit       int
	Cardinality Cardinality

	// Body is the JSON object or array of objects for insert/upsert/update
	Body json.RawMessage

	// OnConflict lists the unique columns an upsert resolves on
	OnConflict []string
}

// Response is the executor's answer. Data is a JSON array for Many, and a JSON
// object or null for One/MaybeOne.
type Response struct {
	Data  json.RawMessage
	Count int
}

// Executor runs built requests against a backend
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// ApplyCardinality narrows a row set to the shape the request asked for.
// Backends call it after fetching rows so every backend reports the same errors.
func ApplyCardinality(rows []json.RawMessage, card Cardinality) (json.RawMessage, error) {
	switch card {
	case One:
		if len(rows) != 1 {
			return nil, fmt.Errorf("%w: expected 1 row, got %d", domain.ErrNotFound, len(rows))
		}
		return rows[0], nil
	case MaybeOne:
		switch len(rows) {
		case 0:
			return json.RawMessage("null"), nil
		case 1:
			return rows[0], nil
		default:
			return nil, fmt.Errorf("%w: expected at most 1 row, got %d", domain.ErrConflict, len(rows))
		}
	default:
		if rows == nil {
			rows = []json.RawMessage{}
		}
		return json.Marshal(rows)
	}
}
