// Package gateway wraps every outbound CardVault API call: it attaches the
// bearer credential, decodes the response envelope, and transparently
// recovers from access-token expiry by running the refresh protocol.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/cardvault/go-cardvault-client/internal/errors"
	"github.com/cardvault/go-cardvault-client/tokens"
)

const refreshPath = "/auth/refresh"

// StateSink receives the gateway's cross-cutting state transitions. The
// session package implements it; the indirection keeps the dependency
// pointing one way (session -> gateway) with no globals.
type StateSink interface {
	// TokensRefreshed is called after a successful refresh, with the new
	// pair already persisted.
	TokensRefreshed(accessToken, refreshToken string)

	// SessionExpired is called when the session is unrecoverable: the
	// refresh token is absent or the refresh call itself failed. This is
	// the one place a local request failure forces a global logout.
	SessionExpired()
}

// nopSink is used until a real sink is wired in.
type nopSink struct{}

func (nopSink) TokensRefreshed(string, string) {}
func (nopSink) SessionExpired()                {}

// Client issues authenticated requests against the CardVault API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      tokens.Store
	sink       StateSink
	log        zerolog.Logger

	// refreshGroup collapses concurrent refresh attempts into a single
	// in-flight call shared by all waiters.
	refreshGroup singleflight.Group
}

// ClientOption modifies a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithStateSink wires the auth-state sink.
func WithStateSink(sink StateSink) ClientOption {
	return func(c *Client) {
		c.sink = sink
	}
}

// WithLogger attaches a logger. Token values are never logged.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a gateway client for the API at baseURL.
func New(baseURL string, store tokens.Store, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[gateway.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[gateway.New] token store is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
		sink:       nopSink{},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// SetStateSink replaces the sink after construction. The application root
// uses this to break the session/gateway construction cycle.
func (c *Client) SetStateSink(sink StateSink) {
	if sink == nil {
		sink = nopSink{}
	}
	c.sink = sink
}

// Get issues an authenticated GET and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authenticated PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do runs one request through the full protocol: attach the current access
// token, send, and on a 401 run exactly one refresh attempt followed by
// exactly one retry. Non-401 failures are returned as-is; the gateway never
// mutates tokens for them.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return errors.Wrap(err, "[Client.Do] marshal body")
	}

	status, err := c.send(ctx, method, path, payload, out, c.store.AccessToken())
	if status != http.StatusUnauthorized {
		return err
	}
	originalErr := err

	newAccess, refreshErr := c.refresh(ctx)
	if refreshErr != nil {
		// Unrecoverable session: the sink transition has already fired
		// inside refresh. The caller gets the original failure.
		return originalErr
	}

	c.log.Debug().Str("path", path).Msg("access token refreshed, retrying request")
	_, err = c.send(ctx, method, path, payload, out, newAccess)
	return err
}

// refresh exchanges the stored refresh token for a new credential pair,
// persists it, and propagates it to the state sink. Concurrent callers
// share a single in-flight attempt.
func (c *Client) refresh(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		refreshToken := c.store.RefreshToken()
		if refreshToken == "" {
			c.log.Warn().Msg("unauthorized with no refresh token, session unrecoverable")
			c.sink.SessionExpired()
			return nil, apperrors.ErrNoRefreshToken
		}

		var payload struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		}
		req := map[string]string{"refreshToken": refreshToken}
		if _, err := c.send(ctx, http.MethodPost, refreshPath, mustMarshal(req), &payload, ""); err != nil {
			c.log.Warn().Err(err).Msg("token refresh failed, clearing session")
			if clearErr := c.store.Clear(); clearErr != nil {
				c.log.Error().Err(clearErr).Msg("failed to clear token store")
			}
			c.sink.SessionExpired()
			return nil, errors.Wrap(err, "[Client.refresh] refresh call")
		}

		if err := c.store.SetAccessToken(payload.AccessToken); err != nil {
			return nil, errors.Wrap(err, "[Client.refresh] persist access token")
		}
		// A rotated refresh token supersedes the old pair; keep the
		// existing one when the server does not rotate.
		newRefresh := refreshToken
		if payload.RefreshToken != "" {
			newRefresh = payload.RefreshToken
			if err := c.store.SetRefreshToken(newRefresh); err != nil {
				return nil, errors.Wrap(err, "[Client.refresh] persist refresh token")
			}
		}
		c.sink.TokensRefreshed(payload.AccessToken, newRefresh)
		return payload.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// send performs a single HTTP exchange and decodes the envelope. The
// returned status is zero when the request never reached the server.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any, accessToken string) (int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, errors.Wrap(err, "[Client.send] NewRequest")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrNetwork, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, apperrors.Wrapf(apperrors.ErrNetwork, "%s %s: read body: %v", method, path, err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return resp.StatusCode, apperrors.Wrapf(apperrors.ErrDecoding, "%s %s: %v", method, path, err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		status := resp.StatusCode
		if status < 400 {
			// Envelope-level failure on a 2xx transport status.
			status = http.StatusBadRequest
		}
		return resp.StatusCode, &APIError{
			Code:       env.Code,
			Message:    env.Message,
			StatusCode: status,
			Errors:     env.Errors,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, apperrors.Wrapf(apperrors.ErrDecoding, "%s %s: data: %v", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
