package persistence

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/domain"
)

// NewMock returns the demo-mode client: every filter is accepted and ignored,
// every terminal succeeds with no data, auth reports no session and channels
// never deliver anything. Nothing touches the network.
func NewMock() *Client {
	return New(mockExecutor{}, &mockAuth{}, mockRealtime{})
}

type mockExecutor struct{}

func (mockExecutor) Execute(_ context.Context, req *Request) (*Response, error) {
	if req.Cardinality == One || req.Cardinality == MaybeOne {
		return &Response{Data: json.RawMessage("null")}, nil
	}
	return &Response{Data: json.RawMessage("[]")}, nil
}

type mockAuth struct {
	listeners Listeners
}

func (a *mockAuth) Session(context.Context) (*domain.Session, error) { return nil, nil }

func (a *mockAuth) SignInWithPassword(context.Context, string, string) (*domain.Session, error) {
	session := &domain.Session{AccessToken: "demo", User: domain.User{ID: "demo"}}
	return session, nil
}

func (a *mockAuth) SignOut(context.Context) error { return nil }

func (a *mockAuth) OnAuthStateChange(fn AuthListener) func() {
	return a.listeners.Add(fn)
}

type mockRealtime struct{}

func (mockRealtime) Channel(string) Channel { return mockChannel{} }

type mockChannel struct{}

func (c mockChannel) On(ChangeType, string, string, ChangeHandler) Channel { return c }
func (mockChannel) Subscribe(context.Context) error                        { return nil }
func (mockChannel) Unsubscribe() error                                     { return nil }
