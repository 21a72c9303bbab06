package api

import (
	"context"
	"net/http"
)

// GetLoginRedirectURL asks the backend where to send the user for Steam
// OpenID login. Success payload: {"url": "..."}.
func (c *Client) GetLoginRedirectURL(ctx context.Context) (*Response, error) {
	return c.do(ctx, "getLoginRedirectURL", http.MethodGet, "/v1/auth/steam", nil, nil)
}

// PerformLogin posts the OpenID callback parameters. Success payload:
// {"token": "..."}.
func (c *Client) PerformLogin(ctx context.Context, payload map[string]any) (*Response, error) {
	return c.do(ctx, "performLogin", http.MethodPost, "/v1/auth/steam", nil, payloadOrEmpty(payload))
}

// RefreshToken exchanges the installed token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context) (*Response, error) {
	return c.do(ctx, "refreshToken", http.MethodPost, "/v1/auth/refresh", nil, nil)
}

func (c *Client) GetAccountDetails(ctx context.Context) (*Response, error) {
	return c.do(ctx, "getAccountDetails", http.MethodGet, "/v1/auth/account", nil, nil)
}

func (c *Client) EditAccount(ctx context.Context, payload map[string]any) (*Response, error) {
	return c.do(ctx, "editAccount", http.MethodPatch, "/v1/auth/account", nil, payloadOrEmpty(payload))
}
