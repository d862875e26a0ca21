package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/mmcdole/mediadeck/internal/metrics"
	"github.com/mmcdole/mediadeck/internal/persistence"
)

const (
	heartbeatInterval = 30 * time.Second
	readTimeout       = 75 * time.Second
	connectAttempts   = 4
	maxReconnectDelay = 30 * time.Second
)

// phoenixMessage is the Realtime wire envelope
type phoenixMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
}

type changeSpec struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

type joinPayload struct {
	Config struct {
		PostgresChanges []changeSpec `json:"postgres_changes"`
	} `json:"config"`
	AccessToken string `json:"access_token,omitempty"`
}

type changePayload struct {
	Data struct {
		Type      string          `json:"type"`
		Table     string          `json:"table"`
		Schema    string          `json:"schema"`
		Record    json.RawMessage `json:"record"`
		OldRecord json.RawMessage `json:"old_record"`
	} `json:"data"`
}

// Realtime opens Supabase Realtime channels over a websocket per channel
type Realtime struct {
	wsURL  string
	tokens TokenSource
	dialer *websocket.Dialer
	logger *slog.Logger
}

// NewRealtime creates a Realtime client for the project at baseURL
func NewRealtime(baseURL, apiKey string, tokens TokenSource, logger *slog.Logger) *Realtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Realtime{
		wsURL:  websocketURL(baseURL, apiKey),
		tokens: tokens,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: logger,
	}
}

func websocketURL(baseURL, apiKey string) string {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return ""
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/realtime/v1/websocket"
	q := url.Values{}
	q.Set("apikey", apiKey)
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()
	return u.String()
}

// Channel implements persistence.Realtime
func (r *Realtime) Channel(name string) persistence.Channel {
	return &channel{rt: r, topic: "realtime:" + name}
}

type binding struct {
	event   persistence.ChangeType
	table   string
	filter  string
	handler persistence.ChangeHandler
}

type channel struct {
	rt    *Realtime
	topic string

	mu       sync.Mutex
	bindings []binding
	conn     *websocket.Conn
	cancel   context.CancelFunc
	writeMu  sync.Mutex
	ref      atomic.Int64
	wg       sync.WaitGroup
}

func (c *channel) On(event persistence.ChangeType, table, filter string, handler persistence.ChangeHandler) persistence.Channel {
	c.mu.Lock()
	c.bindings = append(c.bindings, binding{event: event, table: table, filter: filter, handler: handler})
	c.mu.Unlock()
	return c
}

// Subscribe connects and joins the topic, then keeps the channel connected
// in the background until Unsubscribe
func (c *channel) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	subscribed := c.cancel != nil
	c.mu.Unlock()
	if subscribed {
		return nil
	}

	if err := c.connect(ctx, connectAttempts); err != nil {
		return fmt.Errorf("realtime subscribe %s: %w", c.topic, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(runCtx)

	c.rt.logger.Info("realtime channel subscribed", "topic", c.topic)
	return nil
}

// connect dials and joins with backoff. attempts of 0 retries until ctx ends.
func (c *channel) connect(ctx context.Context, attempts uint) error {
	return retry.Do(
		func() error {
			conn, err := c.dial(ctx)
			if err != nil {
				return err
			}
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()

			if err := c.join(ctx); err != nil {
				c.dropConn(conn)
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(maxReconnectDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.rt.logger.Warn("realtime connect failed, retrying", "topic", c.topic, "attempt", n+1, "error", err)
		}),
	)
}

// run serves the current connection and reconnects whenever it drops
func (c *channel) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		c.serve(ctx)
		if ctx.Err() != nil {
			return
		}

		c.rt.logger.Warn("realtime connection lost, reconnecting", "topic", c.topic)
		if err := c.connect(ctx, 0); err != nil {
			if ctx.Err() == nil {
				c.rt.logger.Error("realtime reconnect gave up", "topic", c.topic, "error", err)
			}
			return
		}
		c.rt.logger.Info("realtime channel resubscribed", "topic", c.topic)
		c.resync()
	}
}

// serve reads from the current connection and heartbeats until either fails
func (c *channel) serve(ctx context.Context) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	done := make(chan struct{})
	var hb sync.WaitGroup
	hb.Add(1)
	go func() {
		defer hb.Done()
		c.heartbeatLoop(ctx, conn, done)
	}()

	c.readLoop(ctx, conn)
	close(done)
	hb.Wait()
	c.dropConn(conn)
}

// resync tells every binding that changes may have been missed while the
// socket was down. The change carries no record.
func (c *channel) resync() {
	c.mu.Lock()
	bindings := append([]binding(nil), c.bindings...)
	c.mu.Unlock()

	for _, b := range bindings {
		b.handler(persistence.Change{Type: persistence.ChangeAll, Table: b.table})
	}
}

func (c *channel) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

func (c *channel) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.rt.dialer.DialContext(ctx, c.rt.wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, nil
}

func (c *channel) join(ctx context.Context) error {
	var payload joinPayload
	c.mu.Lock()
	for _, b := range c.bindings {
		payload.Config.PostgresChanges = append(payload.Config.PostgresChanges, changeSpec{
			Event:  string(b.event),
			Schema: "public",
			Table:  b.table,
			Filter: b.filter,
		})
	}
	c.mu.Unlock()
	if c.rt.tokens != nil {
		payload.AccessToken = c.rt.tokens(ctx)
	}
	return c.send(c.topic, "phx_join", payload)
}

func (c *channel) send(topic, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := phoenixMessage{
		Topic:   topic,
		Event:   event,
		Payload: data,
		Ref:     strconv.FormatInt(c.ref.Add(1), 10),
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("realtime channel %s is not connected", c.topic)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

func (c *channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.rt.logger.Warn("realtime read error", "topic", c.topic, "error", err)
			}
			return
		}

		var msg phoenixMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.rt.logger.Debug("realtime message decode failed", "error", err)
			continue
		}
		if msg.Topic != c.topic || msg.Event != "postgres_changes" {
			continue
		}
		c.dispatch(msg.Payload)
	}
}

func (c *channel) dispatch(raw json.RawMessage) {
	var p changePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.rt.logger.Debug("realtime change decode failed", "error", err)
		return
	}
	change := persistence.Change{
		Type:      persistence.ChangeType(p.Data.Type),
		Table:     p.Data.Table,
		Record:    p.Data.Record,
		OldRecord: p.Data.OldRecord,
	}
	metrics.RecordRealtimeEvent(change.Table)

	c.mu.Lock()
	bindings := append([]binding(nil), c.bindings...)
	c.mu.Unlock()

	for _, b := range bindings {
		if b.table != change.Table {
			continue
		}
		if b.event != persistence.ChangeAll && b.event != change.Type {
			continue
		}
		b.handler(change)
	}
}

func (c *channel) heartbeatLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close()
			return
		case <-done:
			return
		case <-ticker.C:
			if err := c.send("phoenix", "heartbeat", struct{}{}); err != nil {
				c.rt.logger.Warn("realtime heartbeat failed", "topic", c.topic, "error", err)
				// Unblocks the reader so run can reconnect
				conn.Close()
				return
			}
		}
	}
}

// Unsubscribe leaves the topic, stops reconnecting and closes the socket
func (c *channel) Unsubscribe() error {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	connected := c.conn != nil
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}

	if connected {
		if err := c.send(c.topic, "phx_leave", struct{}{}); err != nil {
			c.rt.logger.Debug("realtime leave failed", "topic", c.topic, "error", err)
		}
	}
	cancel()
	c.close()
	c.wg.Wait()
	return nil
}

func (c *channel) close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		conn.Close()
	}
}
