// Package api is the HTTP transport shared by the auth, catalog and
// analysis gateways.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"filedesk/internal/config"
	"filedesk/internal/credential"
	"filedesk/internal/util/logx"
	"filedesk/internal/version"
)

type Client struct {
	baseURL    string
	transport  config.AuthTransport
	creds      credential.Store
	httpClient *http.Client
}

// NewClient builds a client for baseURL. creds may be nil, in which case
// requests are never authorized.
func NewClient(baseURL string, transport config.AuthTransport, creds credential.Store, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if transport == "" {
		transport = config.TransportQuery
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		transport:  transport,
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string                 { return c.baseURL }
func (c *Client) Transport() config.AuthTransport { return c.transport }
func (c *Client) Credentials() credential.Store   { return c.creds }

// URL joins an API path (already escaped) onto the base URL.
func (c *Client) URL(path string) string { return c.baseURL + path }

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   io.Reader
	// ContentType is set when Body is not nil.
	ContentType string
	// Anonymous requests never carry the credential (login, register).
	Anonymous bool
}

// NewRequest builds an *http.Request and attaches the stored credential
// using the configured transport.
func (c *Client) NewRequest(ctx context.Context, r Request) (*http.Request, error) {
	q := url.Values{}
	for k, v := range r.Query {
		q[k] = append([]string(nil), v...)
	}
	var bearer string
	if !r.Anonymous && c.creds != nil {
		if tok, ok := c.creds.Load(); ok {
			switch c.transport {
			case config.TransportBearer:
				bearer = tok
			default:
				q.Set("session_id", tok)
			}
		}
	}
	u := c.URL(r.Path)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, u, r.Body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if r.Body != nil && r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	return req, nil
}

// Do sends req. Transport failures are wrapped in ErrNetwork; any HTTP
// status is returned to the caller untouched. The caller closes the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logx.Warnf("api: %s %s failed: %v", req.Method, req.URL.Path, err)
		return nil, fmt.Errorf("%w: %s", ErrNetwork, err.Error())
	}
	logx.Debugf("api: %s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// Send is NewRequest followed by Do.
func (c *Client) Send(ctx context.Context, r Request) (*http.Response, error) {
	req, err := c.NewRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// JSON sends v as a JSON body and decodes a 2xx answer into out (when out
// is not nil). Non-2xx answers come back as *StatusError.
func (c *Client) JSON(ctx context.Context, method, path string, v any, anonymous bool, out any) error {
	var body io.Reader
	ct := ""
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		ct = "application/json"
	}
	resp, err := c.Send(ctx, Request{Method: method, Path: path, Body: body, ContentType: ct, Anonymous: anonymous})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if !OK(resp) {
		return ReadStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// OK reports a 2xx status.
func OK(resp *http.Response) bool { return resp.StatusCode >= 200 && resp.StatusCode < 300 }

// Segment escapes one path segment such as a filename.
func Segment(s string) string { return url.PathEscape(s) }
