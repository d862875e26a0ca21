package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
	"github.com/mmcdole/mediadeck/internal/store"
)

// AccountService manages sign-in state
type AccountService struct {
	auth     persistence.Auth
	identity domain.Identity
	queries  *Queries
	feed     *ChangeFeed
	logger   *slog.Logger
}

// NewAccountService creates a new account service. feed may be nil.
func NewAccountService(auth persistence.Auth, identity domain.Identity, queries *Queries, feed *ChangeFeed, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{auth: auth, identity: identity, queries: queries, feed: feed, logger: logger}
}

// CurrentUser returns the owner of user data
func (s *AccountService) CurrentUser(ctx context.Context) (domain.User, error) {
	return s.identity.CurrentUser(ctx)
}

// SignIn exchanges credentials for a session and starts the change feed
func (s *AccountService) SignIn(ctx context.Context, email, password string) (domain.User, error) {
	session, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.logger.Error("sign-in failed", "error", err, "email", email)
		return domain.User{}, err
	}
	s.StartSync(ctx)
	return session.User, nil
}

// StartSync starts the change feed for the current user, if there is one
func (s *AccountService) StartSync(ctx context.Context) {
	if s.feed == nil {
		return
	}
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return
	}
	if err := s.feed.Start(ctx, user.ID); err != nil {
		s.logger.Warn("realtime sync unavailable", "error", err)
	}
}

// SignOut ends the session and drops the owner's cached data
func (s *AccountService) SignOut(ctx context.Context) error {
	user, userErr := s.identity.CurrentUser(ctx)

	if s.feed != nil {
		s.feed.Stop()
	}
	err := s.auth.SignOut(ctx)

	if userErr == nil {
		s.queries.InvalidatePrefix(store.BucketUser, OwnerPrefixes(user.ID)...)
	}
	if err != nil {
		s.logger.Error("sign-out failed", "error", err)
		return err
	}
	s.logger.Info("signed out")
	return nil
}
