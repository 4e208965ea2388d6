package wpaicg

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// Response is the transport-level result of one request.
type Response struct {
	StatusCode int
	Header     map[string][]string
	Body       []byte
}

// Session is the browser-like HTTP transport the client drives. It must keep
// cookie state between the token fetch and the chat submission; beyond that
// the client treats it as opaque. Implementations are not required to be
// safe for concurrent use.
type Session interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error)
	Post(ctx context.Context, rawURL string, headers map[string]string, form url.Values) (*Response, error)
}

// fingerprintSession is the production Session: a tls-client with a Chrome
// profile, so the TLS and header fingerprints pass the site's anti-bot
// checks the same way a real browser does.
type fingerprintSession struct {
	client tls_client.HttpClient
}

func newFingerprintSession(timeout time.Duration) (*fingerprintSession, error) {
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(timeout / time.Second)),
		tls_client.WithClientProfile(profiles.Chrome_133),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("creating http client: %w", err)
	}

	return &fingerprintSession{client: client}, nil
}

func (s *fingerprintSession) Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	return s.do(ctx, http.MethodGet, rawURL, headers, nil)
}

func (s *fingerprintSession) Post(ctx context.Context, rawURL string, headers map[string]string, form url.Values) (*Response, error) {
	return s.do(ctx, http.MethodPost, rawURL, headers, strings.NewReader(form.Encode()))
}

func (s *fingerprintSession) do(ctx context.Context, method, rawURL string, headers map[string]string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
