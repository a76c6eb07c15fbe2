package discogs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"discogs/internal/logger"
)

const (
	defaultAPIURL    = "https://api.discogs.com"
	defaultUserAgent = "PhotosDiscogsClient/1.0"
)

// Client is a Discogs database API client. It holds a key/secret pair and
// no per-call state, so one Client can serve concurrent callers.
type Client struct {
	key        string
	secret     string
	userAgent  string
	httpClient *http.Client
	apiURL     string
	logger     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.apiURL = strings.TrimRight(u, "/") }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger logs each outgoing call at debug level.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new Discogs client authenticated with key and secret.
func New(key, secret string, opts ...Option) *Client {
	c := &Client{
		key:        key,
		secret:     secret,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     defaultAPIURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "discogs" }

func (c *Client) authorization() string {
	return fmt.Sprintf("Discogs key=%s, secret=%s", c.key, c.secret)
}

// get issues a single authenticated GET. Any failure is returned as a
// *CallError carrying rawURL.
func (c *Client) get(ctx context.Context, op, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &CallError{Op: op, URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", c.authorization())

	if c.logger != nil {
		c.logger.With("op", op, "url", rawURL).Debug("calling discogs")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CallError{Op: op, URL: rawURL, Err: err}
	}
	return resp, nil
}

// GetAlbumArt fetches an image URL (typically a Release or Artist thumb)
// and streams the body into w as it arrives. It returns once the body has
// been fully copied. The body is streamed whatever the HTTP status.
func (c *Client) GetAlbumArt(ctx context.Context, imageURL string, w io.Writer) error {
	return c.fetchImage(ctx, imageURL, w, false)
}

// DownloadAlbumArt is GetAlbumArt for callers that keep the image: a
// non-2xx status fails with a *StatusError inside the *CallError and
// nothing is written to w.
func (c *Client) DownloadAlbumArt(ctx context.Context, imageURL string, w io.Writer) error {
	return c.fetchImage(ctx, imageURL, w, true)
}

func (c *Client) fetchImage(ctx context.Context, imageURL string, w io.Writer, requireOK bool) error {
	const op = "fetch image"

	resp, err := c.get(ctx, op, imageURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if requireOK && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return &CallError{Op: op, URL: imageURL, Err: &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return &CallError{Op: op, URL: imageURL, Err: fmt.Errorf("failed to stream image: %w", err)}
	}
	return nil
}

// searchURL builds a database search URL. pairs are name/value pairs kept
// in the given order; every value is query-escaped.
func (c *Client) searchURL(kind string, pairs ...string) string {
	var b strings.Builder
	b.WriteString(c.apiURL)
	b.WriteString("/database/search?type=")
	b.WriteString(url.QueryEscape(kind))
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteByte('&')
		b.WriteString(pairs[i])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pairs[i+1]))
	}
	return b.String()
}
