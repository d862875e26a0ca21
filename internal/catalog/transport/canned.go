package transport

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/demo"
)

// Responder returns the value to encode as the JSON body for req
type Responder func(req *http.Request) any

// CannedTransport is an http.RoundTripper that never touches the network.
// It waits Latency, then answers 200 with the JSON encoding of Respond(req).
type CannedTransport struct {
	Latency time.Duration
	Respond Responder
}

// RoundTrip implements http.RoundTripper
func (t *CannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !demo.Sleep(req.Context().Done(), t.Latency) {
		return nil, req.Context().Err()
	}

	body, err := json.Marshal(t.Respond(req))
	if err != nil {
		return nil, err
	}

	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"application/json"}, "Content-Length": {strconv.Itoa(len(body))}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
