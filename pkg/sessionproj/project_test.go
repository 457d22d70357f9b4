package sessionproj

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/madfam-org/janua-go/pkg/janua"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testTokens(expiresAt time.Time) janua.TokenSet {
	return janua.TokenSet{
		AccessToken:  "A1",
		RefreshToken: "R1",
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}
}

func TestProjectAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	cookies, err := Project(testSecret, "u1", testTokens(expiresAt), []string{"admin"}, Options{})
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	session := cookies[0]
	require.Equal(t, "janua_session", session.Name)
	require.Equal(t, "/", session.Path)
	require.True(t, session.HTTPOnly)
	require.Equal(t, expiresAt, session.Expires)

	hint := cookies[1]
	require.Equal(t, "janua_authed", hint.Name)
	require.Equal(t, "1", hint.Value)
	require.False(t, hint.HTTPOnly)

	claims, err := Verify(testSecret, session.Value)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, []string{"admin"}, claims.Roles)
	require.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestProjectNeverLeaksTokens(t *testing.T) {
	t.Parallel()

	tokens := testTokens(time.Now().Add(time.Hour))
	tokens.AccessToken = "access-token-6f2b9c1d8e3a4f5061728394a5b6c7d8"
	tokens.RefreshToken = "refresh-token-d8c7b6a5948372615f4e3a8d1c9b2f6e"
	cookies, err := Project(testSecret, "u1", tokens, nil, Options{})
	require.NoError(t, err)

	for _, cookie := range cookies {
		require.NotContains(t, cookie.Value, tokens.AccessToken)
		require.NotContains(t, cookie.Value, tokens.RefreshToken)
	}
}

func TestProjectOptions(t *testing.T) {
	t.Parallel()

	cookies, err := Project(testSecret, "u1", testTokens(time.Now().Add(time.Hour)), nil, Options{
		Prefix: "acme_",
		Path:   "/app",
		Secure: true,
	})
	require.NoError(t, err)
	require.Equal(t, "acme_session", cookies[0].Name)
	require.Equal(t, "acme_authed", cookies[1].Name)
	for _, cookie := range cookies {
		require.Equal(t, "/app", cookie.Path)
		require.True(t, cookie.Secure)
	}
}

func TestProjectInputValidation(t *testing.T) {
	t.Parallel()

	valid := testTokens(time.Now().Add(time.Hour))

	_, err := Project(nil, "u1", valid, nil, Options{})
	require.Error(t, err)

	noAccess := valid
	noAccess.AccessToken = ""
	_, err = Project(testSecret, "u1", noAccess, nil, Options{})
	require.Error(t, err)

	noExpiry := valid
	noExpiry.ExpiresAt = time.Time{}
	_, err = Project(testSecret, "u1", noExpiry, nil, Options{})
	require.Error(t, err)
}

func TestVerifyRejections(t *testing.T) {
	t.Parallel()

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		cookies, err := Project(testSecret, "u1", testTokens(time.Now().Add(time.Hour)), nil, Options{})
		require.NoError(t, err)

		_, err = Verify([]byte("another-secret-another-secret-32"), cookies[0].Value)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}).SignedString(testSecret)
		require.NoError(t, err)

		_, err = Verify(testSecret, signed)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("no expiry claim", func(t *testing.T) {
		t.Parallel()
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		}).SignedString(testSecret)
		require.NoError(t, err)

		_, err = Verify(testSecret, signed)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("alg none", func(t *testing.T) {
		t.Parallel()
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = Verify(testSecret, unsigned)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := Verify(testSecret, "not-a-jwt")
		require.ErrorIs(t, err, ErrInvalidSession)
	})
}
