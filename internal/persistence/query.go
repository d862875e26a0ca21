package persistence

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// Query is a chainable statement builder bound to one table.
// Filter methods mutate and return the receiver; terminals execute it.
type Query struct {
	exec Executor
	req  Request
}

func newQuery(exec Executor, table string) *Query {
	return &Query{exec: exec, req: Request{Table: table}}
}

func (q *Query) filter(column string, op FilterOp, value any) *Query {
	q.req.Filters = append(q.req.Filters, Filter{Column: column, Op: op, Value: value})
	return q
}

func (q *Query) Eq(column string, value any) *Query   { return q.filter(column, FilterEq, value) }
func (q *Query) Neq(column string, value any) *Query  { return q.filter(column, FilterNeq, value) }
func (q *Query) Gt(column string, value any) *Query   { return q.filter(column, FilterGt, value) }
func (q *Query) Gte(column string, value any) *Query  { return q.filter(column, FilterGte, value) }
func (q *Query) Lt(column string, value any) *Query   { return q.filter(column, FilterLt, value) }
func (q *Query) Lte(column string, value any) *Query  { return q.filter(column, FilterLte, value) }
func (q *Query) Like(column, pattern string) *Query   { return q.filter(column, FilterLike, pattern) }
func (q *Query) ILike(column, pattern string) *Query  { return q.filter(column, FilterILike, pattern) }
func (q *Query) Contains(column string, v any) *Query { return q.filter(column, FilterContains, v) }

// Is matches NULL (value nil) or a boolean
func (q *Query) Is(column string, value any) *Query { return q.filter(column, FilterIs, value) }

// In matches any of values
func (q *Query) In(column string, values ...any) *Query {
	return q.filter(column, FilterIn, values)
}

// Columns sets the projection (PostgREST select syntax)
func (q *Query) Columns(columns string) *Query {
	q.req.Columns = columns
	return q
}

// Order appends a sort key
func (q *Query) Order(column string, ascending bool) *Query {
	q.req.Orders = append(q.req.Orders, Order{Column: column, Ascending: ascending})
	return q
}

// Limit caps the number of rows returned
func (q *Query) Limit(n int) *Query {
	q.req.Limit = n
	return q
}

// Request returns a copy of the statement built so far
func (q *Query) Request() Request {
	return q.req
}

func (q *Query) run(ctx context.Context, op Operation, card Cardinality) (*Response, error) {
	q.req.Op = op
	q.req.Cardinality = card
	resp, err := q.exec.Execute(ctx, &q.req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, q.req.Table, err)
	}
	return resp, nil
}

// decode unmarshals data into dest, leaving dest untouched for null/empty data
func decode(data json.RawMessage, dest any) (bool, error) {
	if dest == nil || len(data) == 0 || string(data) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode rows: %w", err)
	}
	return true, nil
}

// Select reads matching rows into dest (a pointer to a slice)
func (q *Query) Select(ctx context.Context, dest any) error {
	resp, err := q.run(ctx, OpSelect, Many)
	if err != nil {
		return err
	}
	_, err = decode(resp.Data, dest)
	return err
}

// Single reads exactly one row into dest
func (q *Query) Single(ctx context.Context, dest any) error {
	resp, err := q.run(ctx, OpSelect, One)
	if err != nil {
		return err
	}
	_, err = decode(resp.Data, dest)
	return err
}

// MaybeSingle reads zero or one row into dest and reports whether a row was found
func (q *Query) MaybeSingle(ctx context.Context, dest any) (bool, error) {
	resp, err := q.run(ctx, OpSelect, MaybeOne)
	if err != nil {
		return false, err
	}
	return decode(resp.Data, dest)
}

// Count returns the number of matching rows
func (q *Query) Count(ctx context.Context) (int, error) {
	resp, err := q.run(ctx, OpCount, Many)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Insert writes one row (struct or map) or a slice of rows. Written rows
// are decoded into dest (a pointer to a slice) when it is non-nil.
func (q *Query) Insert(ctx context.Context, rows any, dest any) error {
	return q.write(ctx, OpInsert, rows, dest)
}

// Upsert inserts rows or merges them into existing rows that collide on onConflict
func (q *Query) Upsert(ctx context.Context, rows any, onConflict []string, dest any) error {
	q.req.OnConflict = onConflict
	return q.write(ctx, OpUpsert, rows, dest)
}

// Update applies patch to every matching row
func (q *Query) Update(ctx context.Context, patch any, dest any) error {
	return q.write(ctx, OpUpdate, patch, dest)
}

// Delete removes every matching row. Deleting nothing is not an error.
func (q *Query) Delete(ctx context.Context) error {
	_, err := q.run(ctx, OpDelete, Many)
	return err
}

func (q *Query) write(ctx context.Context, op Operation, body any, dest any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s body: %w", op, err)
	}
	q.req.Body = data
	resp, err := q.run(ctx, op, Many)
	if err != nil {
		return err
	}
	_, err = decode(resp.Data, dest)
	return err
}
