package apiclient

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Transport is the terminal Handler: it turns an envelope into a net/http call.
type Transport struct {
	baseURL string
	client  *http.Client
}

func NewTransport(baseURL string, client *http.Client) *Transport {
	if client == nil {
		client = http.DefaultClient
	}
	return &Transport{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Resolve joins a relative URL onto the base URL.
func (t *Transport) Resolve(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return t.baseURL + url
}

func (t *Transport) Do(ctx context.Context, env *Envelope) (*Response, error) {
	r := env.Request
	target := t.Resolve(r.URL)
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	// A retried descriptor keeps the ID of its first attempt.
	if r.Header.Get("X-Request-ID") == "" {
		r.Header.Set("X-Request-ID", uuid.NewString())
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		slog.Error("Failed to build request", "method", r.Method, "url", target, "error", err)
		return nil, &NetworkError{Method: r.Method, URL: target}
	}
	for name, values := range r.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if len(r.Body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		slog.Warn("API not reachable", "method", r.Method, "url", target, "error", err)
		return nil, &NetworkError{Method: r.Method, URL: target}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("Failed to read response body", "method", r.Method, "url", target, "error", err)
		return nil, &NetworkError{Method: r.Method, URL: target}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}
