package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/delgists/internal/config"
	"github.com/hpungsan/delgists/internal/errors"
	"github.com/hpungsan/delgists/internal/gist"
)

// GistsPath is the listing endpoint for the authenticated user's gists.
const GistsPath = "gists"

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 10 * 1024 * 1024

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// GistPage is one page of a gist listing plus the headers it came with.
type GistPage struct {
	Gists  []gist.Gist
	Header http.Header
}

// Options configures a Client.
type Options struct {
	APIRoot     string
	Credentials config.Credentials
	UserAgent   string
	Timeout     time.Duration
	Logger      *logrus.Logger
	// HTTPClient overrides the default client (tests pass httptest clients).
	HTTPClient *http.Client
	// MaxBodyBytes bounds a response body (defaults to DefaultMaxBodyBytes).
	MaxBodyBytes int64
}

// Client issues authenticated requests against the gists API.
type Client struct {
	httpClient *http.Client
	root       *url.URL
	authHeader string
	userAgent  string
	logger     *logrus.Logger
	maxBody    int64
	rateLimit  RateLimit
}

// New creates a Client. The API root must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	root, err := url.Parse(strings.TrimSpace(opts.APIRoot))
	if err != nil || !root.IsAbs() || (root.Scheme != "https" && root.Scheme != "http") {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("api root must be an absolute http(s) URL, got %q", opts.APIRoot))
	}
	if !strings.HasSuffix(root.Path, "/") {
		root.Path += "/"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "delgists"
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	c := &Client{
		httpClient: httpClient,
		root:       root,
		userAgent:  userAgent,
		logger:     logger,
		maxBody:    maxBody,
	}
	if opts.Credentials.Valid() {
		token := base64.StdEncoding.EncodeToString([]byte(opts.Credentials.User + ":" + opts.Credentials.Secret))
		c.authHeader = "Basic " + token
	}

	return c, nil
}

// RateLimit returns the quota seen on the most recent response.
func (c *Client) RateLimit() RateLimit {
	return c.rateLimit
}

// Resolve turns uri into an absolute URL. Relative URIs are resolved against
// the API root; absolute ones must point at the API root's host.
func (c *Client) Resolve(uri string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid uri %q: %v", uri, err))
	}
	if ref.IsAbs() {
		if !strings.EqualFold(ref.Host, c.root.Host) {
			return "", errors.NewForeignLink(uri, c.root.Host)
		}
		return ref.String(), nil
	}
	return c.root.ResolveReference(ref).String(), nil
}

// Do performs one request and reads the whole response body.
// Any status is returned as-is; only connection-level failures are errors.
func (c *Client) Do(ctx context.Context, method, uri string, body io.Reader) (*Response, error) {
	target, err := c.Resolve(uri)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.NewTransport(method, target, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransport(method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, errors.NewTransport(method, target, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, errors.NewBodyTooLarge(method, target, c.maxBody)
	}

	if rl := ParseRateLimit(resp.Header); rl.Known {
		c.rateLimit = rl
	}

	c.logger.WithFields(logrus.Fields{
		"method":              method,
		"uri":                 target,
		"status":              resp.StatusCode,
		"ratelimit_remaining": c.rateLimit.Remaining,
	}).Debug("api request")

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// ListGists fetches one page of gists from uri, which may be GistsPath or a
// next link returned by a previous page.
func (c *Client) ListGists(ctx context.Context, uri string) (*GistPage, error) {
	resp, err := c.Do(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("body", truncate(resp.Body, 512)).Warn("listing request rejected")
		return nil, errors.NewProtocol(http.MethodGet, uri, resp.StatusCode, http.StatusOK)
	}

	var gists []gist.Gist
	if err := json.Unmarshal(resp.Body, &gists); err != nil {
		return nil, errors.NewMalformedBody(http.MethodGet, uri, err)
	}

	return &GistPage{Gists: gists, Header: resp.Header}, nil
}

// DeleteGist deletes one gist. Only 204 No Content counts as success.
func (c *Client) DeleteGist(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewInvalidRequest("gist id is required")
	}

	uri := GistsPath + "/" + url.PathEscape(id)
	resp, err := c.Do(ctx, http.MethodDelete, uri, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return errors.NewProtocol(http.MethodDelete, uri, resp.StatusCode, http.StatusNoContent)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
