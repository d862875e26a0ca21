package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/mmcdole/mediadeck/internal/persistence"
)

func TestWebsocketURL(t *testing.T) {
	got := websocketURL("https://abc.supabase.co", "anon")
	if !strings.HasPrefix(got, "wss://abc.supabase.co/realtime/v1/websocket?") || !strings.Contains(got, "apikey=anon") {
		t.Fatalf("unexpected url %q", got)
	}
	if got := websocketURL("http://localhost:54321", "k"); !strings.HasPrefix(got, "ws://localhost:54321/") {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestRealtime_JoinAndDispatch(t *testing.T) {
	joined := make(chan joinPayload, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var msg phoenixMessage
		if err := conn.ReadJSON(&msg); err != nil || msg.Event != "phx_join" {
			return
		}
		var p joinPayload
		json.Unmarshal(msg.Payload, &p)
		joined <- p

		change := `{"data":{"type":"INSERT","table":"watchlist","schema":"public","record":{"item_id":550}}}`
		conn.WriteJSON(phoenixMessage{Topic: msg.Topic, Event: "postgres_changes", Payload: json.RawMessage(change)})
		// other tables are filtered out by the binding
		other := `{"data":{"type":"INSERT","table":"reviews","schema":"public","record":{}}}`
		conn.WriteJSON(phoenixMessage{Topic: msg.Topic, Event: "postgres_changes", Payload: json.RawMessage(other)})

		// Drain until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	rt := NewRealtime(srv.URL, "anon", func(context.Context) string { return "tok" }, nil)

	received := make(chan persistence.Change, 4)
	ch := rt.Channel("watchlist:u1").On(persistence.ChangeAll, "watchlist", "user_id=eq.u1", func(c persistence.Change) {
		received <- c
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ch.Subscribe(ctx); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer ch.Unsubscribe()

	select {
	case p := <-joined:
		if p.AccessToken != "tok" || len(p.Config.PostgresChanges) != 1 {
			t.Fatalf("unexpected join payload %+v", p)
		}
		spec := p.Config.PostgresChanges[0]
		if spec.Table != "watchlist" || spec.Filter != "user_id=eq.u1" || spec.Event != "*" {
			t.Fatalf("unexpected change spec %+v", spec)
		}
	case <-ctx.Done():
		t.Fatal("server never saw phx_join")
	}

	select {
	case c := <-received:
		if c.Type != persistence.ChangeInsert || c.Table != "watchlist" {
			t.Fatalf("unexpected change %+v", c)
		}
	case <-ctx.Done():
		t.Fatal("no change delivered")
	}

	select {
	case c := <-received:
		t.Fatalf("change for unbound table delivered: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRealtime_ReconnectsAfterDrop(t *testing.T) {
	var joins atomic.Int32
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var msg phoenixMessage
		if err := conn.ReadJSON(&msg); err != nil || msg.Event != "phx_join" {
			return
		}
		if joins.Add(1) == 1 {
			// Drop the first connection right after the join
			return
		}

		change := `{"data":{"type":"DELETE","table":"watchlist","schema":"public","old_record":{"item_id":550}}}`
		conn.WriteJSON(phoenixMessage{Topic: msg.Topic, Event: "postgres_changes", Payload: json.RawMessage(change)})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	rt := NewRealtime(srv.URL, "anon", nil, nil)
	received := make(chan persistence.Change, 4)
	ch := rt.Channel("watchlist:u1").On(persistence.ChangeAll, "watchlist", "", func(c persistence.Change) {
		received <- c
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ch.Subscribe(ctx); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer ch.Unsubscribe()

	want := []persistence.ChangeType{persistence.ChangeAll, persistence.ChangeDelete}
	for _, typ := range want {
		select {
		case c := <-received:
			if c.Type != typ || c.Table != "watchlist" {
				t.Fatalf("got change %+v, want type %s", c, typ)
			}
		case <-ctx.Done():
			t.Fatalf("no %s change after reconnect (joins=%d)", typ, joins.Load())
		}
	}
	if n := joins.Load(); n != 2 {
		t.Fatalf("expected two joins, got %d", n)
	}
}
