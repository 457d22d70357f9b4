package janua

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePKCEChallenge(t *testing.T) {
	t.Parallel()

	pkce, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.Equal(t, "S256", pkce.Method)
	require.Len(t, pkce.Verifier, 43) // 32 bytes, unpadded base64url

	hash := sha256.Sum256([]byte(pkce.Verifier))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), pkce.Challenge)

	other, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.NotEqual(t, pkce.Verifier, other.Verifier)
}

func TestBuildAuthorizeURL(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, "http://auth.example.com")

	pkce, err := GeneratePKCEChallenge()
	require.NoError(t, err)

	raw := client.BuildAuthorizeURL(
		"web_app", "https://app.example.com/callback", "st4te",
		[]string{"openid", "profile"}, pkce)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/api/v1/oauth/authorize", parsed.Path)

	query := parsed.Query()
	require.Equal(t, "code", query.Get("response_type"))
	require.Equal(t, "web_app", query.Get("client_id"))
	require.Equal(t, "https://app.example.com/callback", query.Get("redirect_uri"))
	require.Equal(t, "st4te", query.Get("state"))
	require.Equal(t, "openid profile", query.Get("scope"))
	require.Equal(t, pkce.Challenge, query.Get("code_challenge"))
	require.Equal(t, "S256", query.Get("code_challenge_method"))
}

func TestParseAuthorizationCallback(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		code, state, err := ParseAuthorizationCallback(
			"https://app.example.com/callback?code=abc123&state=st4te")
		require.NoError(t, err)
		require.Equal(t, "abc123", code)
		require.Equal(t, "st4te", state)
	})

	t.Run("server error redirect", func(t *testing.T) {
		t.Parallel()
		_, _, err := ParseAuthorizationCallback(
			"https://app.example.com/callback?error=access_denied&error_description=user+refused")

		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "access_denied", authErr.Code)
		require.Equal(t, "user refused", authErr.Message)
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()
		_, _, err := ParseAuthorizationCallback("https://app.example.com/callback?state=st4te")
		require.Error(t, err)
	})
}

func TestExchangeAuthorizationCode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/oauth/token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "authorization_code", body["grant_type"])
		require.Equal(t, "abc123", body["code"])
		require.Equal(t, "verif", body["code_verifier"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "A1",
			RefreshToken: "R1",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
		})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	var signedIn int
	client.Subscribe(EventSignedIn, func() { signedIn++ })

	tokens, err := client.ExchangeAuthorizationCode(context.Background(),
		"web_app", "https://app.example.com/callback", "abc123", "verif")
	require.NoError(t, err)
	require.Equal(t, "A1", tokens.AccessToken)
	require.True(t, client.IsAuthenticated(context.Background()))
	require.Equal(t, 1, signedIn)
}
