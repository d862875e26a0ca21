package local

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
	bolt "go.etcd.io/bbolt"
)

// Execute implements persistence.Executor
func (d *DB) Execute(ctx context.Context, req *persistence.Request) (*persistence.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := lookupTable(req.Table)
	if err != nil {
		return nil, err
	}

	switch req.Op {
	case persistence.OpSelect:
		return d.selectRows(req)
	case persistence.OpCount:
		rows, err := d.scan(req)
		if err != nil {
			return nil, err
		}
		return &persistence.Response{Count: len(rows)}, nil
	case persistence.OpInsert, persistence.OpUpsert, persistence.OpUpdate, persistence.OpDelete:
		return d.write(req, t)
	default:
		return nil, fmt.Errorf("%w: unsupported operation %q", domain.ErrInvalidInput, req.Op)
	}
}

// scan returns every row of the table matching the request filters
func (d *DB) scan(req *persistence.Request) ([]persistence.Row, error) {
	var rows []persistence.Row
	err := d.db.View(func(tx *bolt.Tx) error {
		var err error
		rows, err = matching(tx.Bucket([]byte(req.Table)), req.Filters)
		return err
	})
	return rows, err
}

func matching(b *bolt.Bucket, filters []persistence.Filter) ([]persistence.Row, error) {
	var rows []persistence.Row
	err := b.ForEach(func(_, v []byte) error {
		var row persistence.Row
		if err := persistence.DecodeRows(v, &row); err != nil {
			return fmt.Errorf("corrupt row: %w", err)
		}
		if row.Matches(filters) {
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}

func (d *DB) selectRows(req *persistence.Request) (*persistence.Response, error) {
	rows, err := d.scan(req)
	if err != nil {
		return nil, err
	}

	if len(req.Orders) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, o := range req.Orders {
				c := persistence.CompareValues(rows[i][o.Column], rows[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Ascending {
					return c < 0
				}
				return c > 0
			}
			return false
		})
	}
	if req.Limit > 0 && len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	return respond(project(rows, req.Columns), req.Cardinality)
}

// project keeps only the requested columns
func project(rows []persistence.Row, columns string) []persistence.Row {
	columns = strings.TrimSpace(columns)
	if columns == "" || columns == "*" {
		return rows
	}
	keep := strings.Split(columns, ",")
	out := make([]persistence.Row, len(rows))
	for i, row := range rows {
		p := make(persistence.Row, len(keep))
		for _, c := range keep {
			c = strings.TrimSpace(c)
			if v, ok := row[c]; ok {
				p[c] = v
			}
		}
		out[i] = p
	}
	return out
}

func respond(rows []persistence.Row, card persistence.Cardinality) (*persistence.Response, error) {
	raw := make([]json.RawMessage, len(rows))
	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		raw[i] = data
	}
	data, err := persistence.ApplyCardinality(raw, card)
	if err != nil {
		return nil, err
	}
	return &persistence.Response{Data: data, Count: len(rows)}, nil
}

// decodeBody accepts a single object or an array of objects
func decodeBody(body json.RawMessage) ([]persistence.Row, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrInvalidInput)
	}
	if body[0] == '[' {
		var rows []persistence.Row
		if err := persistence.DecodeRows(body, &rows); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return rows, nil
	}
	var row persistence.Row
	if err := persistence.DecodeRows(body, &row); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return []persistence.Row{row}, nil
}

// write runs a mutating request in one transaction and publishes the
// resulting changes once it has committed
func (d *DB) write(req *persistence.Request, t table) (*persistence.Response, error) {
	var body []persistence.Row
	if req.Op != persistence.OpDelete {
		var err error
		if body, err = decodeBody(req.Body); err != nil {
			return nil, err
		}
	}

	now := d.now().UTC().Format(time.RFC3339Nano)
	var (
		written []persistence.Row
		changes []persistence.Change
	)

	err := d.db.Update(func(tx *bolt.Tx) error {
		w := &writer{b: tx.Bucket([]byte(req.Table)), t: t, table: req.Table, now: now}
		var err error
		switch req.Op {
		case persistence.OpInsert:
			for _, row := range body {
				if err = w.insert(row); err != nil {
					return err
				}
			}
		case persistence.OpUpsert:
			for _, row := range body {
				if err = w.upsert(row, req.OnConflict); err != nil {
					return err
				}
			}
		case persistence.OpUpdate:
			err = w.update(body[0], req.Filters)
		case persistence.OpDelete:
			err = w.delete(req.Filters)
		}
		written, changes = w.written, w.changes
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		d.changes.Publish(c)
	}
	d.logger.Debug("local write", "table", req.Table, "op", req.Op, "rows", len(written))
	return respond(written, persistence.Many)
}

type writer struct {
	b     *bolt.Bucket
	t     table
	table string
	now   string

	written []persistence.Row
	changes []persistence.Change
}

func (w *writer) insert(row persistence.Row) error {
	if id, _ := row["id"].(string); id == "" {
		row["id"] = uuid.NewString()
	}
	if w.b.Get([]byte(row["id"].(string))) != nil {
		return fmt.Errorf("%w: duplicate id %v", domain.ErrConflict, row["id"])
	}
	if w.t.createdAt != "" && missingTime(row[w.t.createdAt]) {
		row[w.t.createdAt] = w.now
	}
	if w.t.updatedAt != "" {
		row[w.t.updatedAt] = w.now
	}
	if err := w.validate(row, ""); err != nil {
		return err
	}
	return w.put(row, nil, persistence.ChangeInsert)
}

// upsert merges row into the existing row that shares its onConflict key,
// or inserts it when there is none
func (w *writer) upsert(row persistence.Row, onConflict []string) error {
	if len(onConflict) == 0 {
		onConflict = []string{"id"}
	}
	key, ok := uniqueKey(row, onConflict)
	if !ok {
		return w.insert(row)
	}

	existing, err := w.find(func(r persistence.Row) bool {
		k, ok := uniqueKey(r, onConflict)
		return ok && k == key
	})
	if err != nil {
		return err
	}
	if existing == nil {
		return w.insert(row)
	}
	return w.merge(existing, row)
}

func (w *writer) update(patch persistence.Row, filters []persistence.Filter) error {
	rows, err := matching(w.b, filters)
	if err != nil {
		return err
	}
	for _, existing := range rows {
		if err := w.merge(existing, patch); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) merge(existing, patch persistence.Row) error {
	old := clone(existing)
	merged := clone(existing)
	for k, v := range patch {
		switch {
		case k == "id":
			continue
		case k == w.t.createdAt && missingTime(v):
			continue
		}
		merged[k] = v
	}
	if w.t.updatedAt != "" {
		merged[w.t.updatedAt] = w.now
	}
	if err := w.validate(merged, merged["id"].(string)); err != nil {
		return err
	}
	return w.put(merged, old, persistence.ChangeUpdate)
}

func (w *writer) delete(filters []persistence.Filter) error {
	rows, err := matching(w.b, filters)
	if err != nil {
		return err
	}
	for _, row := range rows {
		id, _ := row["id"].(string)
		if err := w.b.Delete([]byte(id)); err != nil {
			return err
		}
		old, _ := json.Marshal(row)
		w.written = append(w.written, row)
		w.changes = append(w.changes, persistence.Change{Type: persistence.ChangeDelete, Table: w.table, OldRecord: old})
	}
	return nil
}

// validate runs the table check and unique constraints, ignoring the row
// with id self
func (w *writer) validate(row persistence.Row, self string) error {
	if w.t.check != nil {
		if err := w.t.check(row); err != nil {
			return err
		}
	}
	for _, cols := range w.t.unique {
		key, ok := uniqueKey(row, cols)
		if !ok {
			continue
		}
		clash, err := w.find(func(r persistence.Row) bool {
			if id, _ := r["id"].(string); id == self {
				return false
			}
			k, ok := uniqueKey(r, cols)
			return ok && k == key
		})
		if err != nil {
			return err
		}
		if clash != nil {
			return fmt.Errorf("%w: %s (%s) must be unique", domain.ErrConflict, w.table, strings.Join(cols, ", "))
		}
	}
	return nil
}

func (w *writer) find(pred func(persistence.Row) bool) (persistence.Row, error) {
	var found persistence.Row
	err := w.b.ForEach(func(_, v []byte) error {
		if found != nil {
			return nil
		}
		var row persistence.Row
		if err := persistence.DecodeRows(v, &row); err != nil {
			return fmt.Errorf("corrupt row: %w", err)
		}
		if pred(row) {
			found = row
		}
		return nil
	})
	return found, err
}

func (w *writer) put(row, old persistence.Row, kind persistence.ChangeType) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	if err := w.b.Put([]byte(row["id"].(string)), data); err != nil {
		return err
	}
	change := persistence.Change{Type: kind, Table: w.table, Record: data}
	if old != nil {
		change.OldRecord, _ = json.Marshal(old)
	}
	w.written = append(w.written, row)
	w.changes = append(w.changes, change)
	return nil
}

func clone(row persistence.Row) persistence.Row {
	out := make(persistence.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
