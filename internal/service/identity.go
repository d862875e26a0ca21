package service

import (
	"context"

	"github.com/mmcdole/mediadeck/internal/demo"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
)

// AuthIdentity resolves the owner from the persistence session
type AuthIdentity struct {
	auth persistence.Auth
}

// NewAuthIdentity creates an identity backed by auth
func NewAuthIdentity(auth persistence.Auth) *AuthIdentity {
	return &AuthIdentity{auth: auth}
}

// CurrentUser returns the signed-in user or domain.ErrNotAuthenticated
func (a *AuthIdentity) CurrentUser(ctx context.Context) (domain.User, error) {
	session, err := a.auth.Session(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if session == nil {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return session.User, nil
}

// StaticIdentity always resolves to the same user. Demo mode uses it since
// the mock backend never reports a session.
type StaticIdentity struct {
	User domain.User
}

// DemoIdentity returns the demo owner
func DemoIdentity() StaticIdentity {
	return StaticIdentity{User: domain.User{ID: demo.UserID, Email: "demo@mediadeck.local"}}
}

func (s StaticIdentity) CurrentUser(context.Context) (domain.User, error) {
	return s.User, nil
}
