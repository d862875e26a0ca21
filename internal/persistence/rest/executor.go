// Package rest is the hosted persistence backend: PostgREST for rows,
// GoTrue for sessions and Realtime websockets for change feeds.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
)

const defaultTimeout = 30 * time.Second

// TokenSource returns the bearer token for the next request
type TokenSource func(ctx context.Context) string

// Executor runs persistence requests against PostgREST
type Executor struct {
	baseURL    string
	apiKey     string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// NewExecutor creates a PostgREST executor. tokens may be nil, in which case
// the anon key is used as the bearer token.
func NewExecutor(baseURL, apiKey string, tokens TokenSource, httpClient *http.Client, logger *slog.Logger) *Executor {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		tokens:     tokens,
		httpClient: httpClient,
		logger:     logger,
	}
}

// postgrestError is the error body PostgREST returns
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// Execute implements persistence.Executor
func (e *Executor) Execute(ctx context.Context, req *persistence.Request) (*persistence.Response, error) {
	method, query, prefer := e.plan(req)

	reqURL := e.baseURL + "/rest/v1/" + url.PathEscape(req.Table)
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 && method != http.MethodGet && method != http.MethodHead && method != http.MethodDelete {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	token := e.apiKey
	if e.tokens != nil {
		if t := e.tokens(ctx); t != "" {
			token = t
		}
	}
	httpReq.Header.Set("apikey", e.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if len(prefer) > 0 {
		httpReq.Header.Set("Prefer", strings.Join(prefer, ","))
	}

	e.logger.Debug("persistence request", "method", method, "table", req.Table, "op", req.Op)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, mapError(resp.StatusCode, respBody)
	}

	if req.Op == persistence.OpCount {
		n, err := parseContentRange(resp.Header.Get("Content-Range"))
		if err != nil {
			return nil, err
		}
		return &persistence.Response{Count: n}, nil
	}

	var rows []json.RawMessage
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode rows: %w", err)
		}
	}
	data, err := persistence.ApplyCardinality(rows, req.Cardinality)
	if err != nil {
		return nil, err
	}
	return &persistence.Response{Data: data, Count: len(rows)}, nil
}

// plan maps a request onto method, query string and Prefer header values
func (e *Executor) plan(req *persistence.Request) (string, url.Values, []string) {
	query := url.Values{}
	for _, f := range req.Filters {
		query.Add(f.Column, f.Encode())
	}

	var prefer []string
	method := http.MethodGet

	switch req.Op {
	case persistence.OpSelect:
		columns := req.Columns
		if columns == "" {
			columns = "*"
		}
		query.Set("select", columns)
		if len(req.Orders) > 0 {
			parts := make([]string, len(req.Orders))
			for i, o := range req.Orders {
				dir := "desc"
				if o.Ascending {
					dir = "asc"
				}
				parts[i] = o.Column + "." + dir
			}
			query.Set("order", strings.Join(parts, ","))
		}
		if req.Limit > 0 {
			query.Set("limit", strconv.Itoa(req.Limit))
		}
	case persistence.OpCount:
		method = http.MethodHead
		query.Set("select", "*")
		prefer = append(prefer, "count=exact")
	case persistence.OpInsert:
		method = http.MethodPost
		prefer = append(prefer, "return=representation")
	case persistence.OpUpsert:
		method = http.MethodPost
		prefer = append(prefer, "return=representation", "resolution=merge-duplicates")
		if len(req.OnConflict) > 0 {
			query.Set("on_conflict", strings.Join(req.OnConflict, ","))
		}
	case persistence.OpUpdate:
		method = http.MethodPatch
		prefer = append(prefer, "return=representation")
	case persistence.OpDelete:
		method = http.MethodDelete
		prefer = append(prefer, "return=representation")
	}
	return method, query, prefer
}

// mapError converts a PostgREST failure into a domain error
func mapError(status int, body []byte) error {
	var pe postgrestError
	_ = json.Unmarshal(body, &pe)

	msg := pe.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusConflict || pe.Code == "23505":
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	case status == http.StatusNotAcceptable || pe.Code == "PGRST116":
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case status == http.StatusUnauthorized || pe.Code == "PGRST301":
		return fmt.Errorf("%w: %s", domain.ErrNotAuthenticated, msg)
	case status == http.StatusBadRequest && pe.Code == "23514":
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
	default:
		return fmt.Errorf("API request failed with status %d: %s", status, msg)
	}
}

// parseContentRange extracts the total from "0-24/573" or "*/0"
func parseContentRange(header string) (int, error) {
	_, total, ok := strings.Cut(header, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("missing count in Content-Range %q", header)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("invalid Content-Range %q: %w", header, err)
	}
	return n, nil
}
