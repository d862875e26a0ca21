package local

import (
	"context"
	"sync"

	"github.com/mmcdole/mediadeck/internal/metrics"
	"github.com/mmcdole/mediadeck/internal/persistence"
)

// Broadcaster delivers committed row changes to subscribed channels in
// process. Handlers run synchronously on the writer's goroutine after the
// write has committed.
type Broadcaster struct {
	mu       sync.RWMutex
	channels map[*channel]struct{}
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{channels: make(map[*channel]struct{})}
}

// Channel implements persistence.Realtime
func (b *Broadcaster) Channel(name string) persistence.Channel {
	return &channel{b: b, name: name}
}

// Publish delivers change to every subscribed channel with a matching binding
func (b *Broadcaster) Publish(change persistence.Change) {
	metrics.RecordRealtimeEvent(change.Table)

	b.mu.RLock()
	subs := make([]*channel, 0, len(b.channels))
	for c := range b.channels {
		subs = append(subs, c)
	}
	b.mu.RUnlock()

	for _, c := range subs {
		c.deliver(change)
	}
}

type binding struct {
	event   persistence.ChangeType
	table   string
	filters []persistence.Filter
	handler persistence.ChangeHandler
}

type channel struct {
	b    *Broadcaster
	name string

	mu       sync.Mutex
	bindings []binding
}

func (c *channel) On(event persistence.ChangeType, table, filter string, handler persistence.ChangeHandler) persistence.Channel {
	var filters []persistence.Filter
	if filter != "" {
		// An unparseable filter matches nothing rather than everything
		f, err := persistence.ParseFilter(filter)
		if err != nil {
			f = persistence.Filter{Column: "\x00", Op: persistence.FilterEq, Value: "\x00"}
		}
		filters = []persistence.Filter{f}
	}
	c.mu.Lock()
	c.bindings = append(c.bindings, binding{event: event, table: table, filters: filters, handler: handler})
	c.mu.Unlock()
	return c
}

func (c *channel) Subscribe(context.Context) error {
	c.b.mu.Lock()
	c.b.channels[c] = struct{}{}
	c.b.mu.Unlock()
	return nil
}

func (c *channel) Unsubscribe() error {
	c.b.mu.Lock()
	delete(c.b.channels, c)
	c.b.mu.Unlock()
	return nil
}

func (c *channel) deliver(change persistence.Change) {
	record := change.Record
	if change.Type == persistence.ChangeDelete {
		record = change.OldRecord
	}
	var row persistence.Row
	_ = persistence.DecodeRows(record, &row)

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
		if !row.Matches(b.filters) {
			continue
		}
		b.handler(change)
	}
}
