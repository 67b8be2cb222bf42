// Package httpx is the single outbound HTTP path of the client.
//
// Every backend and vendor call goes through a Client, which owns bearer
// token attachment and expiry handling. No other package issues requests.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	u "github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/cqhs/articlecheck/internal/errs"
	"github.com/cqhs/articlecheck/internal/session"
)

// DefaultTimeout matches the deployed client's fixed request timeout.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of an error response is retained for messages.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the backend or the vendor.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	if d := e.Detail(); d != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, d)
	}
	if m := e.Message(); m != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, m)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// Is maps the well-known status codes onto their sentinels so callers can
// branch with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case errs.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case errs.ErrUnprocessable:
		return e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// Detail extracts the backend's "detail" field. A validation-error list is
// joined into one message, comma separated.
func (e *APIError) Detail() string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(e.Body, &body) != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(body.Detail, &s) == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(body.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			msgs = append(msgs, it.Msg)
		}
		return strings.Join(msgs, ", ")
	}
	return ""
}

// Message extracts the vendor's "message" field.
func (e *APIError) Message() string {
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(e.Body, &body) != nil {
		return ""
	}
	return body.Message
}

// Client issues requests against one base URL with a fixed timeout.
type Client struct {
	base           string
	http           *http.Client
	session        session.Store
	onUnauthorized func()
	log            *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the fixed request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithUnauthorizedHook registers an observer invoked after any 401 response,
// once the token has been cleared. The hook owns the navigation decision;
// the client only reports.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New builds a Client for base. The session store is consulted before every
// request and cleared on any 401 response.
func New(base string, sess session.Store, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: sess,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetJSON issues a GET and decodes a JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// PostJSON posts in as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(b), "application/json", out)
}

// PostForm posts form-urlencoded values and decodes the response into out.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", out)
}

// FilePart is a file attached to a multipart submission.
type FilePart struct {
	Field   string
	Name    string
	Content io.Reader
}

// PostMultipart posts fields plus one file as multipart/form-data. Fields are
// written in sorted order, the file part last.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file FilePart, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return fmt.Errorf("write field %q: %w", k, err)
		}
	}

	fw, err := mw.CreateFormFile(file.Field, file.Name)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(fw, file.Content); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok, ok := c.session.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if rid, err := u.NewV4(); err == nil {
		req.Header.Set("X-Request-Id", rid.String())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("http",
			zap.String("method", method),
			zap.String("url", c.base+path),
			zap.Duration("dur", time.Since(start)),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Info("http",
		zap.String("method", method),
		zap.String("url", c.base+path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		// The token is dead; forget it before the caller sees the error.
		c.session.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: b}
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
