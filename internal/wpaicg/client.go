// Package wpaicg implements a client for the WordPress "wpaicg" AI chat
// widget's internal admin-ajax protocol. A chat call scrapes the rotating
// nonce and post id from the landing page, submits a browser-shaped form to
// the widget endpoint, and extracts the reply from the loosely-typed JSON
// response.
package wpaicg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultBaseURL = "https://chatgpt.es"
	DefaultTimeout = 30 * time.Second

	// Must stay in step with the tls-client profile in session.go; a
	// User-Agent that contradicts the TLS fingerprint gets flagged.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"
)

type Config struct {
	BaseURL   string        // widget site, default https://chatgpt.es
	UserAgent string        // default: pinned Chrome UA matching the TLS profile
	Timeout   time.Duration // per-request timeout, default 30s
}

// Client performs single-shot chat calls against one widget deployment. It
// owns its Session for its whole lifetime and keeps the same User-Agent
// across the token fetch and the chat submission. A Client is sequential;
// callers needing concurrency should use one Client per caller.
type Client struct {
	session   Session
	baseURL   string
	userAgent string
}

// NewClient builds a Client with the production fingerprint session.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	session, err := newFingerprintSession(cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return NewClientWithSession(session, cfg), nil
}

// NewClientWithSession builds a Client on a caller-supplied Session. This is
// the injection point for tests and custom transports.
func NewClientWithSession(session Session, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	return &Client{
		session:   session,
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
	}
}

// Chat sends a single user message and returns the backend's reply.
func (c *Client) Chat(ctx context.Context, query string, model Model) (string, error) {
	return c.ChatHistory(ctx, []Message{{Role: RoleUser, Content: query}}, model)
}

// ChatHistory submits a full conversation history. The last message must be
// from the user; its content is the message the backend answers, the rest
// travels as transcript context. Tokens are fetched fresh on every call
// since the backend may rotate the nonce per page load. All failures match
// ErrChat; ErrConnection and ErrParse narrow down the stage that failed.
func (c *Client) ChatHistory(ctx context.Context, messages []Message, model Model) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: empty message history", ErrChat)
	}
	last := messages[len(messages)-1]
	if last.Role != RoleUser {
		return "", fmt.Errorf("%w: last message must have role '%s'", ErrChat, RoleUser)
	}

	tokens, err := c.fetchAuthTokens(ctx)
	if err != nil {
		return "", err
	}

	slog.Debug("submitting chat message", "model", model.APIName(), "post_id", tokens.postID)

	form, err := buildChatForm(tokens, c.baseURL, last.Content, buildTranscript(messages))
	if err != nil {
		return "", err
	}

	resp, err := c.session.Post(ctx, c.baseURL+chatEndpointPath, postHeaders(c.userAgent, c.baseURL), form)
	if err != nil {
		return "", fmt.Errorf("%w: chat request failed: %s", ErrConnection, err)
	}

	reply, err := interpretChatResponse(resp.StatusCode, resp.Body)
	if err != nil {
		return "", wrapChatErr(err)
	}

	return reply, nil
}

// fetchAuthTokens loads the landing page and scrapes the per-session
// security values from it.
func (c *Client) fetchAuthTokens(ctx context.Context) (authTokens, error) {
	resp, err := c.session.Get(ctx, c.baseURL, initialHeaders(c.userAgent))
	if err != nil {
		return authTokens{}, fmt.Errorf("%w: failed to retrieve authentication tokens: %s", ErrConnection, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return authTokens{}, fmt.Errorf("%w: failed to retrieve authentication tokens: status %d", ErrConnection, resp.StatusCode)
	}

	return extractAuthTokens(string(resp.Body))
}

// wrapChatErr folds anything that is not already one of the defined kinds
// into the generic ErrChat so callers never see an unclassified failure.
func wrapChatErr(err error) error {
	if errors.Is(err, ErrChat) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrChat, err)
}
