// Package persistence is the client for the relational backend that owns
// watchlists, collections and reviews. It exposes a chainable query builder,
// an auth sub-interface and realtime change channels over pluggable backends.
package persistence

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/domain"
)

// AuthEvent names a session transition
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthListener receives session transitions. session is nil after sign-out.
type AuthListener func(event AuthEvent, session *domain.Session)

// Auth is the authentication sub-interface
type Auth interface {
	// Session returns the current session, or nil when signed out
	Session(ctx context.Context) (*domain.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChange registers fn and returns its unsubscribe function
	OnAuthStateChange(fn AuthListener) (unsubscribe func())
}

// ChangeType is the kind of row change delivered on a channel
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	ChangeAll    ChangeType = "*"
)

// Change is one row change
type Change struct {
	Type      ChangeType      `json:"type"`
	Table     string          `json:"table"`
	Record    json.RawMessage `json:"record,omitempty"`
	OldRecord json.RawMessage `json:"old_record,omitempty"`
}

// ChangeHandler receives row changes
type ChangeHandler func(Change)

// Channel is a realtime subscription to row changes
type Channel interface {
	// On registers handler for changes of event type on table. filter uses
	// PostgREST syntax, e.g. "user_id=eq.42"; empty matches every row.
	On(event ChangeType, table, filter string, handler ChangeHandler) Channel
	Subscribe(ctx context.Context) error
	Unsubscribe() error
}

// Realtime opens channels
type Realtime interface {
	Channel(name string) Channel
}

// Client is the single shared handle to the persistence backend
type Client struct {
	exec     Executor
	auth     Auth
	realtime Realtime
	closers  []func() error
}

// New assembles a Client from a backend's parts
func New(exec Executor, auth Auth, realtime Realtime, closers ...func() error) *Client {
	return &Client{exec: exec, auth: auth, realtime: realtime, closers: closers}
}

// From starts a query against table
func (c *Client) From(table string) *Query {
	return newQuery(c.exec, table)
}

// Auth returns the authentication sub-interface
func (c *Client) Auth() Auth { return c.auth }

// Channel returns a named realtime channel
func (c *Client) Channel(name string) Channel {
	return c.realtime.Channel(name)
}

// Close releases backend resources
func (c *Client) Close() error {
	var first error
	for _, fn := range c.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Listeners is a registry of auth listeners shared by Auth implementations
type Listeners struct {
	mu     sync.RWMutex
	nextID int
	fns    map[int]AuthListener
}

// Add registers fn and returns its unsubscribe function
func (l *Listeners) Add(fn AuthListener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]AuthListener)
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

// Emit notifies every listener
func (l *Listeners) Emit(event AuthEvent, session *domain.Session) {
	l.mu.RLock()
	fns := make([]AuthListener, 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(event, session)
	}
}
