package gatewaysdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a gateway client for public endpoints. Login returns a Session
// for everything else.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client. Redirects are not followed so callers can
// inspect bank SCA targets and callback answers themselves.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Login opens a gateway session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/login", strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	if err != nil {
		return nil, err
	}

	var login LoginResponse
	if err := decodeJSON(resp, &login, http.StatusOK); err != nil {
		return nil, err
	}
	return c.NewSession(login.AccessToken, login.SessionID), nil
}

// NewSession wraps a token obtained earlier.
func (c *Client) NewSession(accessToken, sessionID string) *Session {
	return &Session{client: c, accessToken: accessToken, sessionID: sessionID}
}

// GetLiveness checks if the gateway is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the gateway is ready to serve.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// FollowCallback requests a bank callback URL the way a browser would and
// returns where the gateway sends the browser next.
func (c *Client) FollowCallback(ctx context.Context, callbackURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callbackURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := parseErrorResponse(resp, body); err != nil {
			return "", err
		}
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Header.Get("Location"), nil
}
