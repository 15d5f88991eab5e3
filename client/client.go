package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
)

const (
	defaultTimeout = 3 * time.Second
	settingsTTL    = 30 * time.Second
)

// Client talks to the relay HTTP surface on behalf of a transport adapter.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	baseURL   string
	token     string
	userAgent string
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(settingsTTL, 2*settingsTTL),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "anonrelay-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) HttpRequest(ctx context.Context, method, path string, body, response any) error {

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &StatusError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

func (c *Client) Start(ctx context.Context, senderID int64, argument string) (Outcome, error) {
	var out Outcome
	err := c.HttpRequest(ctx, http.MethodPost, "/v1/start", map[string]any{
		"senderId": senderID,
		"argument": argument,
	}, &out)
	return out, err
}

func (c *Client) Initiate(ctx context.Context, senderID int64, code string) (Outcome, error) {
	var out Outcome
	err := c.HttpRequest(ctx, http.MethodPost, "/v1/initiate", map[string]any{
		"senderId": senderID,
		"code":     code,
	}, &out)
	return out, err
}

func (c *Client) Send(ctx context.Context, senderID int64, content anonbot.Content) (Outcome, error) {
	var out Outcome
	err := c.HttpRequest(ctx, http.MethodPost, "/v1/content", map[string]any{
		"senderId": senderID,
		"content":  anonbot.Envelope(content),
	}, &out)
	return out, err
}

func (c *Client) Reply(ctx context.Context, identityID, threadID int64) (Outcome, error) {
	var out Outcome
	err := c.HttpRequest(ctx, http.MethodPost, "/v1/actions/reply", map[string]any{
		"identityId": identityID,
		"threadId":   threadID,
	}, &out)
	return out, err
}

func (c *Client) Block(ctx context.Context, identityID, senderID int64) error {
	return c.HttpRequest(ctx, http.MethodPost, "/v1/actions/block", map[string]any{
		"identityId": identityID,
		"senderId":   senderID,
	}, nil)
}

func (c *Client) Report(ctx context.Context, identityID, threadID int64) (Report, error) {
	var report Report
	err := c.HttpRequest(ctx, http.MethodPost, "/v1/actions/report", map[string]any{
		"identityId": identityID,
		"threadId":   threadID,
	}, &report)
	return report, err
}

func settingsKey(identityID int64) string {
	return "settings:" + strconv.FormatInt(identityID, 10)
}

// Settings returns the identity's settings, served from a short-lived cache.
func (c *Client) Settings(ctx context.Context, identityID int64) (Settings, error) {
	if x, found := c.cache.Get(settingsKey(identityID)); found {
		return x.(Settings), nil
	}

	var s Settings
	err := c.HttpRequest(ctx, http.MethodGet, identityPath(identityID, "settings"), nil, &s)
	if err != nil {
		return Settings{}, err
	}
	c.cache.Set(settingsKey(identityID), s, cache.DefaultExpiration)
	return s, nil
}

func (c *Client) ToggleAnon(ctx context.Context, identityID int64) (Settings, error) {
	return c.toggle(ctx, identityID, "toggle-anon")
}

func (c *Client) ToggleLinks(ctx context.Context, identityID int64) (Settings, error) {
	return c.toggle(ctx, identityID, "toggle-links")
}

func (c *Client) toggle(ctx context.Context, identityID int64, action string) (Settings, error) {
	c.cache.Delete(settingsKey(identityID))

	var s Settings
	err := c.HttpRequest(ctx, http.MethodPost, identityPath(identityID, action), nil, &s)
	if err != nil {
		return Settings{}, err
	}
	c.cache.Set(settingsKey(identityID), s, cache.DefaultExpiration)
	return s, nil
}

func (c *Client) Inbox(ctx context.Context, identityID int64) ([]Thread, error) {
	var threads []Thread
	err := c.HttpRequest(ctx, http.MethodGet, identityPath(identityID, "inbox"), nil, &threads)
	return threads, err
}

func (c *Client) Thread(ctx context.Context, identityID, threadID int64) (Thread, error) {
	var thread Thread
	err := c.HttpRequest(ctx, http.MethodGet, identityPath(identityID, "threads/"+strconv.FormatInt(threadID, 10)), nil, &thread)
	return thread, err
}

func (c *Client) Ban(ctx context.Context, adminID, targetID int64) error {
	return c.HttpRequest(ctx, http.MethodPost, "/v1/admin/ban", map[string]any{
		"identityId": adminID,
		"targetId":   targetID,
	}, nil)
}

func (c *Client) Unban(ctx context.Context, adminID, targetID int64) error {
	return c.HttpRequest(ctx, http.MethodPost, "/v1/admin/unban", map[string]any{
		"identityId": adminID,
		"targetId":   targetID,
	}, nil)
}

func (c *Client) Stats(ctx context.Context, adminID int64) (Stats, error) {
	var stats Stats
	query := url.Values{"identityId": {strconv.FormatInt(adminID, 10)}}
	err := c.HttpRequest(ctx, http.MethodGet, "/v1/admin/stats?"+query.Encode(), nil, &stats)
	return stats, err
}

func identityPath(identityID int64, suffix string) string {
	return "/v1/identities/" + strconv.FormatInt(identityID, 10) + "/" + suffix
}
