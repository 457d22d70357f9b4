// Package sessionproj projects an SDK token set into signed, scoped
// key/value pairs suitable for cookies. It is the integration seam between
// a browser-side client and a server-side request-gating layer: the
// middleware verifies the projection instead of parsing ad hoc cookie
// strings.
//
// Projection is a pure function of its inputs; nothing here performs I/O.
package sessionproj

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/madfam-org/janua-go/pkg/janua"
)

// DefaultPrefix namespaces projected cookie names.
const DefaultPrefix = "janua_"

// ErrInvalidSession reports a projection value that failed verification:
// bad signature, wrong algorithm, or expired.
var ErrInvalidSession = errors.New("sessionproj: invalid session")

// Claims is the payload of the signed session cookie.
type Claims struct {
	jwt.RegisteredClaims

	// Roles carries the principal's roles for request gating.
	Roles []string `json:"roles,omitempty"`
}

// Cookie is one projected key/value pair. The caller turns these into
// http.Cookie (or a Set-Cookie header) as appropriate for its framework.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Expires  time.Time
	Secure   bool
	HTTPOnly bool
}

// Options tunes the projection.
type Options struct {
	// Prefix namespaces cookie names; defaults to DefaultPrefix.
	Prefix string

	// Path scopes the cookies; defaults to "/".
	Path string

	// Secure marks the cookies HTTPS-only.
	Secure bool
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.Path == "" {
		o.Path = "/"
	}
	return o
}

// Project maps a token set plus the principal's roles to the cookie pairs a
// request-gating middleware consumes:
//
//   - "<prefix>session": an HS256-signed JWT carrying subject, roles and
//     the token set's expiry. HTTP-only.
//   - "<prefix>authed": the literal "1", readable by scripts that only need
//     a signed-in hint without access to the session itself.
//
// The access and refresh tokens themselves are never projected.
func Project(secret []byte, subject string, tokens janua.TokenSet, roles []string, opts Options) ([]Cookie, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("sessionproj: signing secret is required")
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("sessionproj: token set has no access token")
	}
	opts = opts.withDefaults()

	expiresAt := tokens.ExpiresAt
	if expiresAt.IsZero() {
		return nil, fmt.Errorf("sessionproj: token set has no expiry")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Roles: roles,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("sessionproj: sign session: %w", err)
	}

	return []Cookie{
		{
			Name:     opts.Prefix + "session",
			Value:    signed,
			Path:     opts.Path,
			Expires:  expiresAt,
			Secure:   opts.Secure,
			HTTPOnly: true,
		},
		{
			Name:    opts.Prefix + "authed",
			Value:   "1",
			Path:    opts.Path,
			Expires: expiresAt,
			Secure:  opts.Secure,
		},
	}, nil
}

// Verify parses and validates a projected session value, returning its
// claims. Rejects anything not signed with HS256 and the given secret, and
// anything expired.
func Verify(secret []byte, value string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(value, &claims,
		func(token *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	return &claims, nil
}
