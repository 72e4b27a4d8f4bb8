package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	LoginPath   = "/authentications/login"
	RefreshPath = "/authentications/refresh-token"
)

// Request describes one outbound call. URL may be absolute or a path relative
// to the client's base URL.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// NewRequest builds a Request, encoding body as JSON when it is not nil.
func NewRequest(method, url string, body any) (*Request, error) {
	req := &Request{Method: method, URL: url, Header: make(http.Header)}
	if body == nil {
		return req, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", method, url, err)
	}
	req.Body = raw
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Envelope threads one Request through the pipeline together with the state
// the auth stages need. Retried flips once, when the request is resent after
// a 401.
type Envelope struct {
	Request *Request
	Retried bool
	// Token is the access token the auth stages settled on for this call.
	Token string
}

// Response is the whole HTTP response as seen by the pipeline.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Reply is what Send hands back. Data holds the unwrapped body payload;
// Response is set instead for login calls and bodiless responses.
type Reply struct {
	Data     json.RawMessage
	Response *Response
}

func (r *Reply) Decode(v any) error {
	raw := r.Data
	if raw == nil && r.Response != nil {
		raw = r.Response.Body
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func IsLoginEndpoint(url string) bool {
	return strings.Contains(url, LoginPath)
}

// IsAuthEndpoint reports whether url targets login or token refresh; those
// calls bypass every auth stage.
func IsAuthEndpoint(url string) bool {
	return IsLoginEndpoint(url) || strings.Contains(url, RefreshPath)
}
