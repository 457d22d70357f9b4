package janua

import (
	"context"
	"net/http"
	"time"

	"github.com/pquerna/otp/totp"
)

// EnrollTOTP begins TOTP enrollment for the authenticated user. The
// returned secret stays pending until VerifyTOTP confirms the user's
// authenticator produces matching codes.
func (c *Client) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var resp TOTPEnrollResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/mfa/enroll", nil, &resp, requestOptions{}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyTOTP confirms enrollment with a code from the authenticator and
// activates MFA. Returns single-use backup codes; they are shown once.
func (c *Client) VerifyTOTP(ctx context.Context, code string) (*BackupCodesResponse, error) {
	body := map[string]string{"code": code}

	var resp BackupCodesResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/mfa/verify", body, &resp, requestOptions{}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DisableTOTP removes TOTP from the account. A current code is required as
// proof of possession.
func (c *Client) DisableTOTP(ctx context.Context, code string) error {
	body := map[string]string{"code": code}
	return c.do(ctx, http.MethodDelete, "/api/v1/auth/mfa", body, nil, requestOptions{})
}

// RegenerateBackupCodes replaces the account's backup codes, invalidating
// any unused ones.
func (c *Client) RegenerateBackupCodes(ctx context.Context, code string) (*BackupCodesResponse, error) {
	body := map[string]string{"code": code}

	var resp BackupCodesResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/mfa/backup-codes", body, &resp, requestOptions{}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentTOTPCode computes the code an authenticator would show right now
// for an enrollment secret. Used by CLI clients that keep the secret in
// their own secure storage instead of a phone app. No network calls.
func CurrentTOTPCode(secret string) (string, error) {
	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		return "", &ConfigurationError{Message: "invalid TOTP secret: " + err.Error()}
	}
	return code, nil
}
