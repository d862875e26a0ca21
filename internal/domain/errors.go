package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrMissingCredentials indicates the persistence backend is not configured
	ErrMissingCredentials = errors.New("missing store credentials (set store.url and store.anon_key, or enable demo mode)")

	// ErrCatalogNotConfigured indicates a catalog has no API key
	ErrCatalogNotConfigured = errors.New("catalog API key is not configured")

	// ErrCatalogUnreachable indicates a catalog could not be reached
	ErrCatalogUnreachable = errors.New("catalog service is unreachable")

	// ErrNotFound indicates the requested row does not exist or is not owned by the caller
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique key already exists
	ErrConflict = errors.New("already exists")

	// ErrNotAuthenticated indicates there is no signed-in user
	ErrNotAuthenticated = errors.New("not signed in")

	// ErrInvalidInput indicates a request failed validation
	ErrInvalidInput = errors.New("invalid input")
)

// FetchError is returned when a catalog responds with a non-success status
type FetchError struct {
	Provider string
	Status   int
	Path     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s API error: %d (%s)", e.Provider, e.Status, e.Path)
}

// IsFetchStatus reports whether err is a FetchError with the given status
func IsFetchStatus(err error, status int) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Status == status
}
