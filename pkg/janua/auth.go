package janua

import (
	"context"
	"net/http"
)

// Signup registers a new account and signs the client in with the returned
// token set.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", req, &resp, requestOptions{skipAuth: true})
	if err != nil {
		return nil, err
	}

	if err := c.tokens.SetTokens(ctx, &resp.Tokens); err != nil {
		return nil, err
	}
	c.bus.emit(EventSignedIn)
	return &resp, nil
}

// Login authenticates with email and password and stores the issued token
// set. When the account has MFA enabled the error is an *MFARequiredError;
// complete the sign-in with CompleteMFALogin.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &resp, requestOptions{skipAuth: true})
	if err != nil {
		return nil, err
	}

	if err := c.tokens.SetTokens(ctx, &resp.Tokens); err != nil {
		return nil, err
	}
	c.bus.emit(EventSignedIn)
	return &resp, nil
}

// CompleteMFALogin finishes a sign-in that was challenged with MFA.
// method names the factor being used, e.g. "totp" or "backup_codes".
func (c *Client) CompleteMFALogin(ctx context.Context, mfaToken, method, code string) (*AuthResponse, error) {
	body := map[string]string{
		"mfa_token": mfaToken,
		"method":    method,
		"code":      code,
	}

	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/mfa/challenge", body, &resp, requestOptions{skipAuth: true})
	if err != nil {
		return nil, err
	}

	if err := c.tokens.SetTokens(ctx, &resp.Tokens); err != nil {
		return nil, err
	}
	c.bus.emit(EventSignedIn)
	return &resp, nil
}

// Logout revokes the session server-side and clears the stored token set.
// The local clear happens even when the revoke call fails; a client that
// asked to sign out must end up signed out.
func (c *Client) Logout(ctx context.Context) error {
	revokeErr := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, requestOptions{})

	if err := c.tokens.Clear(ctx); err != nil {
		return err
	}
	return revokeErr
}

// RefreshSession forces an immediate token refresh regardless of how much
// lifetime the current token has left.
func (c *Client) RefreshSession(ctx context.Context) error {
	c.tokens.Invalidate(ctx)
	_, err := c.tokens.AccessToken(ctx)
	return err
}

// ForgotPassword requests a password-reset email. Always appears to
// succeed for unknown addresses; the API does not reveal which emails
// exist.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/password/forgot", body, nil, requestOptions{skipAuth: true})
}

// ResetPassword completes a password reset using the emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "password": newPassword}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/password/reset", body, nil, requestOptions{skipAuth: true})
}

// refreshGrant exchanges a refresh token for a new token set. It is wired
// into the token manager, which guarantees at most one concurrent call;
// transient failures are retried here by the regular pipeline policy.
func (c *Client) refreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var resp TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &resp, requestOptions{skipAuth: true})
	if err != nil {
		c.metrics.RefreshesTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	c.metrics.RefreshesTotal.WithLabelValues("success").Inc()
	return &resp, nil
}
