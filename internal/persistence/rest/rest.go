package rest

import (
	"log/slog"
	"net/http"

	"github.com/mmcdole/mediadeck/internal/persistence"
)

// Open assembles a persistence client for a hosted project
func Open(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) (*persistence.Client, *Auth) {
	auth := NewAuth(baseURL, apiKey, httpClient, logger)
	exec := NewExecutor(baseURL, apiKey, auth.AccessToken, httpClient, logger)
	rt := NewRealtime(baseURL, apiKey, auth.AccessToken, logger)
	return persistence.New(exec, auth, rt), auth
}
