package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/domain"
)

// recordingExecutor captures the last request and replays a fixed response
type recordingExecutor struct {
	last Request
	data string
	err  error
}

func (e *recordingExecutor) Execute(_ context.Context, req *Request) (*Response, error) {
	e.last = *req
	if e.err != nil {
		return nil, e.err
	}
	return &Response{Data: json.RawMessage(e.data)}, nil
}

func TestQuery_BuildsRequest(t *testing.T) {
	exec := &recordingExecutor{data: "[]"}
	client := New(exec, nil, nil)

	var rows []domain.WatchlistEntry
	err := client.From(domain.TableWatchlist).
		Columns("id,item_id").
		Eq("user_id", "u1").
		In("item_id", 1, 2).
		Order("created_at", false).
		Limit(5).
		Select(context.Background(), &rows)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	req := exec.last
	if req.Table != domain.TableWatchlist || req.Op != OpSelect || req.Cardinality != Many {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Columns != "id,item_id" || req.Limit != 5 || len(req.Orders) != 1 || req.Orders[0].Ascending {
		t.Fatalf("unexpected projection/order %+v", req)
	}
	if len(req.Filters) != 2 || req.Filters[1].Op != FilterIn {
		t.Fatalf("unexpected filters %+v", req.Filters)
	}
}

func TestQuery_UpsertCarriesConflictColumns(t *testing.T) {
	exec := &recordingExecutor{data: `[{"id":"r1","rating":7}]`}
	client := New(exec, nil, nil)

	var out []domain.Review
	err := client.From(domain.TableReviews).Upsert(context.Background(),
		domain.Review{UserID: "u1", Kind: domain.KindGame, ExternalID: 3328, Rating: 7},
		[]string{"user_id", "item_type", "item_id"}, &out)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if exec.last.Op != OpUpsert || len(exec.last.OnConflict) != 3 {
		t.Fatalf("unexpected request %+v", exec.last)
	}

	var body map[string]any
	if err := json.Unmarshal(exec.last.Body, &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["item_type"] != "game" || body["user_id"] != "u1" {
		t.Fatalf("unexpected body %v", body)
	}
	if len(out) != 1 || out[0].ID != "r1" {
		t.Fatalf("unexpected representation %+v", out)
	}
}

func TestQuery_WrapsExecutorErrors(t *testing.T) {
	exec := &recordingExecutor{err: domain.ErrConflict}
	client := New(exec, nil, nil)

	err := client.From(domain.TableWatchlist).Insert(context.Background(), map[string]any{"user_id": "u1"}, nil)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestApplyCardinality(t *testing.T) {
	one := []json.RawMessage{json.RawMessage(`{"id":"a"}`)}
	two := append(one, json.RawMessage(`{"id":"b"}`))

	if _, err := ApplyCardinality(nil, One); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("One with no rows: expected ErrNotFound, got %v", err)
	}
	if _, err := ApplyCardinality(two, One); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("One with two rows: expected ErrNotFound, got %v", err)
	}
	if data, err := ApplyCardinality(nil, MaybeOne); err != nil || string(data) != "null" {
		t.Fatalf("MaybeOne with no rows: data=%s err=%v", data, err)
	}
	if _, err := ApplyCardinality(two, MaybeOne); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("MaybeOne with two rows: expected ErrConflict, got %v", err)
	}
	if data, err := ApplyCardinality(nil, Many); err != nil || string(data) != "[]" {
		t.Fatalf("Many with no rows: data=%s err=%v", data, err)
	}
}

func TestMock_SucceedsWithNoData(t *testing.T) {
	client := NewMock()
	ctx := context.Background()

	var rows []domain.WatchlistEntry
	if err := client.From(domain.TableWatchlist).Eq("user_id", "x").Select(ctx, &rows); err != nil || len(rows) != 0 {
		t.Fatalf("Select: rows=%v err=%v", rows, err)
	}

	var c domain.Collection
	if err := client.From(domain.TableCollections).Eq("id", "nope").Single(ctx, &c); err != nil {
		t.Fatalf("Single: %v", err)
	}
	if c.ID != "" {
		t.Fatalf("Single should leave dest untouched, got %+v", c)
	}

	found, err := client.From(domain.TableCollections).MaybeSingle(ctx, &c)
	if err != nil || found {
		t.Fatalf("MaybeSingle: found=%v err=%v", found, err)
	}
	if err := client.From(domain.TableReviews).Upsert(ctx, domain.Review{Rating: 5}, []string{"user_id"}, nil); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := client.From(domain.TableWatchlist).Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	session, err := client.Auth().Session(ctx)
	if err != nil || session != nil {
		t.Fatalf("Session: %v %v", session, err)
	}
	ch := client.Channel("any").On(ChangeAll, domain.TableWatchlist, "", func(Change) {})
	if err := ch.Subscribe(ctx); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := ch.Unsubscribe(); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
}
