package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
	"golang.org/x/sync/singleflight"
)

// refresh this long before the access token actually expires
const refreshLeeway = 30 * time.Second

// tokenResponse is the GoTrue /token payload
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type gotrueError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

// accessClaims are the claims read from a GoTrue access token
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth implements persistence.Auth against GoTrue
type Auth struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	session *domain.Session
	refresh singleflight.Group

	listeners persistence.Listeners
}

// NewAuth creates a GoTrue auth client
func NewAuth(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Auth {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// Session returns the current session, refreshing it when it is about to expire
func (a *Auth) Session(ctx context.Context) (*domain.Session, error) {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	if session == nil {
		return nil, nil
	}
	if !session.Expired(a.now().Add(refreshLeeway)) {
		return session, nil
	}
	if session.RefreshToken == "" {
		a.clear()
		return nil, nil
	}

	// Concurrent callers share one refresh; a rotated refresh token is single use
	v, err, _ := a.refresh.Do(session.RefreshToken, func() (any, error) {
		a.mu.Lock()
		current := a.session
		a.mu.Unlock()
		if current != nil && current != session && !current.Expired(a.now().Add(refreshLeeway)) {
			return current, nil
		}

		refreshed, err := a.token(context.WithoutCancel(ctx), "refresh_token", map[string]string{"refresh_token": session.RefreshToken})
		if err != nil {
			a.logger.Warn("session refresh failed", "error", err)
			a.clearIf(session)
			return nil, err
		}
		a.set(refreshed, persistence.EventTokenRefreshed)
		return refreshed, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotAuthenticated, err)
	}
	return v.(*domain.Session), nil
}

// AccessToken returns the current bearer token, or "" when signed out
func (a *Auth) AccessToken(ctx context.Context) string {
	session, err := a.Session(ctx)
	if err != nil || session == nil {
		return ""
	}
	return session.AccessToken
}

// SignInWithPassword exchanges credentials for a session
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := a.token(ctx, "password", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	a.set(session, persistence.EventSignedIn)
	a.logger.Info("signed in", "user_id", session.User.ID)
	return session, nil
}

// SetSession installs a previously obtained session
func (a *Auth) SetSession(session *domain.Session) {
	a.set(session, persistence.EventSignedIn)
}

// SignOut revokes the session server-side and clears it locally.
// The local session is cleared even when the server call fails.
func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	if session == nil {
		return nil
	}
	defer a.clear()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", a.apiKey)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send logout: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("logout failed with status %d", resp.StatusCode)
	}
	return nil
}

// OnAuthStateChange implements persistence.Auth
func (a *Auth) OnAuthStateChange(fn persistence.AuthListener) func() {
	return a.listeners.Add(fn)
}

func (a *Auth) set(session *domain.Session, event persistence.AuthEvent) {
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	a.listeners.Emit(event, session)
}

func (a *Auth) clear() {
	a.mu.Lock()
	had := a.session != nil
	a.session = nil
	a.mu.Unlock()
	if had {
		a.listeners.Emit(persistence.EventSignedOut, nil)
	}
}

// clearIf clears the session only if it is still stale
func (a *Auth) clearIf(stale *domain.Session) {
	a.mu.Lock()
	if a.session != stale {
		a.mu.Unlock()
		return
	}
	a.session = nil
	a.mu.Unlock()
	a.listeners.Emit(persistence.EventSignedOut, nil)
}

func (a *Auth) token(ctx context.Context, grantType string, payload map[string]string) (*domain.Session, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reqURL := a.baseURL + "/auth/v1/token?grant_type=" + grantType
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var ge gotrueError
		_ = json.Unmarshal(body, &ge)
		msg := firstNonEmpty(ge.ErrorDescription, ge.Msg, ge.Message, ge.Error, http.StatusText(resp.StatusCode))
		return nil, fmt.Errorf("%w: %s", domain.ErrNotAuthenticated, msg)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return a.sessionFrom(&tr)
}

// sessionFrom builds a session, filling gaps from the access token claims
func (a *Auth) sessionFrom(tr *tokenResponse) (*domain.Session, error) {
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", domain.ErrNotAuthenticated)
	}

	session := &domain.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		User:         domain.User{ID: tr.User.ID, Email: tr.User.Email},
	}
	switch {
	case tr.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		session.ExpiresAt = a.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, &claims); err == nil {
		if session.User.ID == "" {
			session.User.ID = claims.Subject
		}
		if session.User.Email == "" {
			session.User.Email = claims.Email
		}
		if session.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}
	}

	if session.User.ID == "" {
		return nil, fmt.Errorf("%w: session has no user", domain.ErrNotAuthenticated)
	}
	return session, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
