package janua

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// PKCEChallenge holds a code verifier and its derived challenge per
// RFC 7636. The verifier stays with the client; only the challenge is sent
// to the authorization endpoint.
type PKCEChallenge struct {
	// Verifier is the high-entropy random string, kept secret.
	Verifier string

	// Challenge is BASE64URL(SHA256(verifier)), sent to the server.
	Challenge string

	// Method is always "S256".
	Method string
}

// GeneratePKCEChallenge creates a verifier/challenge pair with 256 bits of
// entropy.
func GeneratePKCEChallenge() (*PKCEChallenge, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate PKCE verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(raw)

	hash := sha256.Sum256([]byte(verifier))
	return &PKCEChallenge{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(hash[:]),
		Method:    "S256",
	}, nil
}

// BuildAuthorizeURL constructs the authorization-code-flow URL the user's
// browser should be sent to. state is recommended for CSRF protection, and
// pkce is required for public clients.
func (c *Client) BuildAuthorizeURL(clientID, redirectURI, state string, scopes []string, pkce *PKCEChallenge) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)

	if state != "" {
		params.Set("state", state)
	}
	if len(scopes) > 0 {
		params.Set("scope", strings.Join(scopes, " "))
	}
	if pkce != nil {
		params.Set("code_challenge", pkce.Challenge)
		params.Set("code_challenge_method", pkce.Method)
	}

	return fmt.Sprintf("%s/api/v1/oauth/authorize?%s", c.baseURL, params.Encode())
}

// ParseAuthorizationCallback extracts the authorization code and state from
// a callback URL, surfacing any error the server redirected back with.
func ParseAuthorizationCallback(callbackURL string) (code, state string, err error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return "", "", fmt.Errorf("parse callback URL: %w", err)
	}

	query := parsed.Query()
	if errCode := query.Get("error"); errCode != "" {
		return "", "", &AuthenticationError{APIError: APIError{
			Code:    errCode,
			Message: query.Get("error_description"),
		}}
	}

	code = query.Get("code")
	if code == "" {
		return "", "", fmt.Errorf("callback is missing authorization code")
	}
	return code, query.Get("state"), nil
}

// ExchangeAuthorizationCode redeems an authorization code (plus the PKCE
// verifier from the original challenge) for a token set and signs the
// client in.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, clientID, redirectURI, code, verifier string) (*TokenResponse, error) {
	body := map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     clientID,
		"redirect_uri":  redirectURI,
		"code":          code,
		"code_verifier": verifier,
	}

	var resp TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/oauth/token", body, &resp, requestOptions{skipAuth: true})
	if err != nil {
		return nil, err
	}

	if err := c.tokens.SetTokens(ctx, &resp); err != nil {
		return nil, err
	}
	c.bus.emit(EventSignedIn)
	return &resp, nil
}
