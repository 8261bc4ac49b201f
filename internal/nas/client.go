package nas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// API lists every call the store issues against the NAS backend.
// It is implemented by *Client and can be faked in tests.
type API interface {
	Login(ctx context.Context, creds Credentials) (AuthResponse, error)
	Signup(ctx context.Context, req Signup) error
	FetchUser(ctx context.Context) (*User, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) error
	ListFiles(ctx context.Context, page PageRequest) ([]File, error)
	FetchFile(ctx context.Context, id int64) (*File, error)
	FetchHistory(ctx context.Context) ([]File, error)
	FetchBookmarks(ctx context.Context) ([]File, error)
	FetchRecommendations(ctx context.Context) ([]RecommendationGroup, error)
	FetchRelated(ctx context.Context, id int64) ([]File, error)
	FetchTags(ctx context.Context) ([]string, error)
	AddBookmark(ctx context.Context, id int64) error
	RemoveBookmark(ctx context.Context, id int64) error
	Watch(ctx context.Context, id int64) error
	AddTag(ctx context.Context, id int64, tag string) error
	RemoveTag(ctx context.Context, id int64, tag string) error
	DeleteHistory(ctx context.Context, id int64) error
	ClearHistory(ctx context.Context) error
	IncrementRecommendations(ctx context.Context, id int64) error
	AppendChatMessage(ctx context.Context, msg ChatMessage) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// TokenSource supplies the bearer token attached to each request.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource returning a fixed value.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// Client talks to the NAS HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	userAgent string
}

const (
	defaultBaseURL   = "http://localhost:8080"
	defaultUserAgent = "stash/0.1"
	apiPrefix        = "/api"
	requestTimeout   = 10 * time.Second
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The transport is used as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient builds a Client for the given server address. A bare host:port is
// treated as http.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised server address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var payload AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &payload); err != nil {
		return AuthResponse{}, err
	}
	if strings.TrimSpace(payload.Token) == "" {
		return AuthResponse{}, fmt.Errorf("decode response: login returned no token")
	}
	return payload, nil
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, req Signup) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", nil, req, nil)
}

// FetchUser retrieves the current user together with their settings.
func (c *Client) FetchUser(ctx context.Context) (*User, error) {
	var payload User
	if err := c.do(ctx, http.MethodGet, "/user", nil, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateSettings sends a partial settings update.
func (c *Client) UpdateSettings(ctx context.Context, patch SettingsPatch) error {
	return c.do(ctx, http.MethodPut, "/user/setting", nil, patch, nil)
}

// ListFiles retrieves one page of the catalog.
func (c *Client) ListFiles(ctx context.Context, page PageRequest) ([]File, error) {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page.Page))
	if page.Size > 0 {
		values.Set("size", strconv.Itoa(page.Size))
	}
	if sortBy := strings.TrimSpace(page.SortBy); sortBy != "" {
		values.Set("sortBy", sortBy)
	}
	if page.Direction != "" {
		values.Set("direction", string(page.Direction))
	}
	var payload []File
	if err := c.do(ctx, http.MethodGet, "/files", values, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchFile retrieves a single file record.
func (c *Client) FetchFile(ctx context.Context, id int64) (*File, error) {
	var payload File
	if err := c.do(ctx, http.MethodGet, filePath(id, ""), nil, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchHistory retrieves the full watch history.
func (c *Client) FetchHistory(ctx context.Context) ([]File, error) {
	return c.fileList(ctx, "/files/history")
}

// FetchBookmarks retrieves every bookmarked file.
func (c *Client) FetchBookmarks(ctx context.Context) ([]File, error) {
	return c.fileList(ctx, "/files/bookmarks")
}

// FetchRecommendations retrieves recommendation groups.
func (c *Client) FetchRecommendations(ctx context.Context) ([]RecommendationGroup, error) {
	var payload []RecommendationGroup
	if err := c.do(ctx, http.MethodGet, "/recommendations", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchRelated retrieves files the server considers related to id.
func (c *Client) FetchRelated(ctx context.Context, id int64) ([]File, error) {
	return c.fileList(ctx, filePath(id, "/recommended"))
}

// FetchTags retrieves the distinct tag vocabulary.
func (c *Client) FetchTags(ctx context.Context) ([]string, error) {
	var payload []string
	if err := c.do(ctx, http.MethodGet, "/files/tags", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// AddBookmark marks a file as bookmarked.
func (c *Client) AddBookmark(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, filePath(id, "/bookmark"), nil, nil, nil)
}

// RemoveBookmark clears a bookmark.
func (c *Client) RemoveBookmark(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, filePath(id, "/bookmark"), nil, nil, nil)
}

// Watch records a watch event.
func (c *Client) Watch(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, filePath(id, "/watch"), nil, nil, nil)
}

// AddTag attaches a tag to a file.
func (c *Client) AddTag(ctx context.Context, id int64, tag string) error {
	body := struct {
		Tag string `json:"tag"`
	}{Tag: tag}
	return c.do(ctx, http.MethodPost, filePath(id, "/tags"), nil, body, nil)
}

// RemoveTag detaches a tag from a file.
func (c *Client) RemoveTag(ctx context.Context, id int64, tag string) error {
	return c.do(ctx, http.MethodDelete, filePath(id, "/tags/"+url.PathEscape(tag)), nil, nil, nil)
}

// DeleteHistory removes one watch history entry.
func (c *Client) DeleteHistory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/watch-history/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// ClearHistory removes every watch history entry.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/watch-history", nil, nil, nil)
}

// IncrementRecommendations bumps a file's recommendation counter.
func (c *Client) IncrementRecommendations(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, filePath(id, "/recommend"), nil, nil, nil)
}

// AppendChatMessage stores a chat message server-side.
func (c *Client) AppendChatMessage(ctx context.Context, msg ChatMessage) error {
	return c.do(ctx, http.MethodPost, "/chat/messages", nil, msg, nil)
}

func (c *Client) fileList(ctx context.Context, path string) ([]File, error) {
	var payload []File
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func filePath(id int64, suffix string) string {
	return "/files/" + strconv.FormatInt(id, 10) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	// RawPath keeps escaped tag segments intact.
	full := apiPrefix + path
	rel := &url.URL{RawQuery: query.Encode()}
	unescaped, err := url.PathUnescape(full)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	rel.Path = unescaped
	if unescaped != full {
		rel.RawPath = full
	}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.Token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{
			Method:     method,
			Path:       rel.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: empty body")
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
