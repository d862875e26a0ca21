package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
)

func signToken(t *testing.T, sub, email string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuth_SignInReadsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	access := signToken(t, "user-42", "me@example.com", exp)

	var grant string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			grant = r.URL.Query().Get("grant_type")
			var creds map[string]string
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &creds)
			if creds["password"] != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
				return
			}
			// No user object and no expiry: both must come from the token
			io.WriteString(w, `{"access_token":"`+access+`","refresh_token":"r1"}`)
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	auth := NewAuth(srv.URL, "anon", srv.Client(), nil)

	var events []persistence.AuthEvent
	unsubscribe := auth.OnAuthStateChange(func(e persistence.AuthEvent, _ *domain.Session) {
		events = append(events, e)
	})
	defer unsubscribe()

	if _, err := auth.SignInWithPassword(context.Background(), "me@example.com", "wrong"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated for bad password, got %v", err)
	}

	session, err := auth.SignInWithPassword(context.Background(), "me@example.com", "secret")
	if err != nil {
		t.Fatalf("SignInWithPassword failed: %v", err)
	}
	if grant != "password" {
		t.Fatalf("grant_type = %q", grant)
	}
	if session.User.ID != "user-42" || session.User.Email != "me@example.com" {
		t.Fatalf("unexpected user %+v", session.User)
	}
	if !session.ExpiresAt.Equal(exp) {
		t.Fatalf("ExpiresAt = %v, want %v", session.ExpiresAt, exp)
	}
	if got := auth.AccessToken(context.Background()); got != access {
		t.Fatal("AccessToken should return the session token")
	}

	if err := auth.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if s, _ := auth.Session(context.Background()); s != nil {
		t.Fatal("expected no session after sign-out")
	}
	if len(events) != 2 || events[0] != persistence.EventSignedIn || events[1] != persistence.EventSignedOut {
		t.Fatalf("unexpected events %v", events)
	}
}

func TestAuth_RefreshesExpiredSession(t *testing.T) {
	fresh := signToken(t, "user-42", "", time.Now().Add(time.Hour))

	var refreshToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "refresh_token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		refreshToken = string(body)
		io.WriteString(w, `{"access_token":"`+fresh+`","refresh_token":"r2","expires_in":3600,"user":{"id":"user-42"}}`)
	}))
	defer srv.Close()

	auth := NewAuth(srv.URL, "anon", srv.Client(), nil)
	auth.SetSession(&domain.Session{
		AccessToken:  "stale",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(-time.Minute),
		User:         domain.User{ID: "user-42"},
	})

	session, err := auth.Session(context.Background())
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if session.AccessToken != fresh || session.RefreshToken != "r2" {
		t.Fatalf("session was not refreshed: %+v", session)
	}
	if !strings.Contains(refreshToken, `"r1"`) {
		t.Fatalf("refresh body = %s", refreshToken)
	}
}

func TestAuth_ConcurrentRefreshesShareOneGrant(t *testing.T) {
	fresh := signToken(t, "user-42", "", time.Now().Add(time.Hour))

	var grants atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// r1 is rotated on first use; a second grant with it is rejected
		if grants.Add(1) > 1 {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid_grant","error_description":"Refresh Token Already Used"}`)
			return
		}
		<-release
		io.WriteString(w, `{"access_token":"`+fresh+`","refresh_token":"r2","expires_in":3600,"user":{"id":"user-42"}}`)
	}))
	defer srv.Close()

	auth := NewAuth(srv.URL, "anon", srv.Client(), nil)
	auth.SetSession(&domain.Session{
		AccessToken:  "stale",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(-time.Minute),
		User:         domain.User{ID: "user-42"},
	})

	const callers = 4
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := auth.Session(context.Background())
			if err == nil && (session == nil || session.AccessToken != fresh) {
				err = errors.New("caller did not get the refreshed session")
			}
			errs <- err
		}()
	}

	// Let every caller reach the refresh before the server answers
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Session failed: %v", err)
		}
	}
	if n := grants.Load(); n != 1 {
		t.Fatalf("expected one refresh grant, got %d", n)
	}
	if session, _ := auth.Session(context.Background()); session == nil || session.RefreshToken != "r2" {
		t.Fatalf("session lost after concurrent refresh: %+v", session)
	}
}
