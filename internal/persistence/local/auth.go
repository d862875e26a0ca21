package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
	bolt "go.etcd.io/bbolt"
)

var (
	userIDKey = []byte("user_id")
	emailKey  = []byte("email")
)

// Auth is the single-user auth of the local backend. The user id is created
// once and stored in the database file, so data survives restarts. There are
// no passwords: signing in only records the email.
type Auth struct {
	db *DB

	mu        sync.Mutex
	user      domain.User
	signedOut bool
	listeners persistence.Listeners
}

// NewAuth loads or creates the local user
func NewAuth(d *DB) (*Auth, error) {
	var user domain.User
	err := d.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if id := meta.Get(userIDKey); id != nil {
			user.ID = string(id)
			user.Email = string(meta.Get(emailKey))
			return nil
		}
		user.ID = uuid.NewString()
		return meta.Put(userIDKey, []byte(user.ID))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load local user: %w", err)
	}
	return &Auth{db: d, user: user}, nil
}

func (a *Auth) session() *domain.Session {
	return &domain.Session{AccessToken: "local", User: a.user}
}

// Session returns the local session, or nil after SignOut
func (a *Auth) Session(context.Context) (*domain.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.signedOut {
		return nil, nil
	}
	return a.session(), nil
}

// SignInWithPassword records email and restores the local session
func (a *Auth) SignInWithPassword(_ context.Context, email, _ string) (*domain.Session, error) {
	err := a.db.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put(emailKey, []byte(email))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save email: %w", err)
	}

	a.mu.Lock()
	a.user.Email = email
	a.signedOut = false
	session := a.session()
	a.mu.Unlock()

	a.listeners.Emit(persistence.EventSignedIn, session)
	return session, nil
}

// SignOut ends the session until the next SignInWithPassword
func (a *Auth) SignOut(context.Context) error {
	a.mu.Lock()
	was := !a.signedOut
	a.signedOut = true
	a.mu.Unlock()

	if was {
		a.listeners.Emit(persistence.EventSignedOut, nil)
	}
	return nil
}

// OnAuthStateChange implements persistence.Auth
func (a *Auth) OnAuthStateChange(fn persistence.AuthListener) func() {
	return a.listeners.Add(fn)
}
