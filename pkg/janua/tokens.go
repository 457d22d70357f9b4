package janua

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/madfam-org/janua-go/pkg/tokenstore"
)

// Token store keys. All live under the store's namespace prefix.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyTokenType    = "token_type"
	keyExpiresAt    = "expires_at"
	keyScope        = "scope"
)

// tokenManager decides when to refresh, performs the refresh exactly once
// under concurrency, and composes the Authorization header.
//
// The credential lifecycle is: unauthenticated (no access token) -> fresh
// (now < expires_at - buffer) -> stale -> refreshing -> fresh again on
// success, or back to unauthenticated (all tokens cleared) on failure.
type tokenManager struct {
	store  tokenstore.Store
	buffer time.Duration
	now    func() time.Time

	// refresh performs the actual refresh HTTP call. Wired by the Client;
	// transient-failure retry happens inside it, not here.
	refresh func(ctx context.Context, refreshToken string) (*TokenResponse, error)

	// onRefreshed and onCleared are event hooks wired by the Client.
	onRefreshed func()
	onCleared   func()

	// mu guards inflight. inflight is non-nil exactly while one refresh
	// call is running; concurrent callers wait on it rather than issuing a
	// second refresh, since refresh tokens are single-use server-side.
	mu       sync.Mutex
	inflight chan struct{}
}

// SetTokens replaces the stored token set from a token response. There are
// no partial updates: every field is rewritten and the expiry is computed
// here, once, so later reads never re-derive it.
func (m *tokenManager) SetTokens(ctx context.Context, tr *TokenResponse) error {
	expiresAt := m.now().Add(time.Duration(tr.ExpiresIn) * time.Second)

	if err := m.store.Set(ctx, keyAccessToken, tr.AccessToken, expiresAt); err != nil {
		return err
	}
	if err := m.store.Set(ctx, keyExpiresAt, expiresAt.UTC().Format(time.RFC3339), time.Time{}); err != nil {
		return err
	}

	if tr.RefreshToken != "" {
		if err := m.store.Set(ctx, keyRefreshToken, tr.RefreshToken, time.Time{}); err != nil {
			return err
		}
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	if err := m.store.Set(ctx, keyTokenType, tokenType, time.Time{}); err != nil {
		return err
	}

	if tr.Scope != "" {
		if err := m.store.Set(ctx, keyScope, tr.Scope, time.Time{}); err != nil {
			return err
		}
	}

	return nil
}

// Clear destroys the stored token set and notifies subscribers.
func (m *tokenManager) Clear(ctx context.Context) error {
	err := m.store.Clear(ctx)
	if m.onCleared != nil {
		m.onCleared()
	}
	return err
}

// TokenSet returns a snapshot of the stored credentials, or nil when
// unauthenticated.
func (m *tokenManager) TokenSet(ctx context.Context) (*TokenSet, error) {
	access, err := m.store.Get(ctx, keyAccessToken)
	if errors.Is(err, tokenstore.ErrNotFound) {
		access = ""
	} else if err != nil {
		return nil, err
	}

	refresh, err := m.store.Get(ctx, keyRefreshToken)
	if errors.Is(err, tokenstore.ErrNotFound) {
		refresh = ""
	} else if err != nil {
		return nil, err
	}

	if access == "" && refresh == "" {
		return nil, nil
	}

	ts := &TokenSet{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}

	if tokenType, err := m.store.Get(ctx, keyTokenType); err == nil {
		ts.TokenType = tokenType
	}
	if scope, err := m.store.Get(ctx, keyScope); err == nil {
		ts.Scope = scope
	}
	if raw, err := m.store.Get(ctx, keyExpiresAt); err == nil {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			ts.ExpiresAt = t
		}
	}

	return ts, nil
}

// IsAuthenticated reports whether any credential material is stored.
func (m *tokenManager) IsAuthenticated(ctx context.Context) bool {
	ts, err := m.TokenSet(ctx)
	return err == nil && ts != nil
}

// Invalidate marks the current access token stale without touching the
// refresh token, forcing a refresh on the next resolution. Used by the
// pipeline when the server rejects a token with 401.
func (m *tokenManager) Invalidate(ctx context.Context) {
	_ = m.store.Remove(ctx, keyAccessToken)
	_ = m.store.Remove(ctx, keyExpiresAt)
}

// AccessToken returns a usable access token, refreshing proactively when the
// stored one is inside the expiry buffer. Returns ("", nil) when the client
// is unauthenticated or when a refresh it was merely waiting on failed; the
// refresh error itself is only raised to the caller that initiated it.
func (m *tokenManager) AccessToken(ctx context.Context) (string, error) {
	if token, ok, err := m.freshToken(ctx); err != nil {
		return "", err
	} else if ok {
		return token, nil
	}

	m.mu.Lock()

	if m.inflight != nil {
		done := m.inflight
		m.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return "", &NetworkError{Err: ctx.Err()}
		}

		// Observe the outcome through the store: a fresh token means the
		// refresh succeeded, cleared state means it failed.
		if token, ok, err := m.freshToken(ctx); err != nil {
			return "", err
		} else if ok {
			return token, nil
		}
		return "", nil
	}

	// Double-check freshness while holding the decision lock: another
	// caller may have completed a refresh between our first read and here.
	if token, ok, err := m.freshToken(ctx); err != nil {
		m.mu.Unlock()
		return "", err
	} else if ok {
		m.mu.Unlock()
		return token, nil
	}

	refreshToken, err := m.store.Get(ctx, keyRefreshToken)
	if errors.Is(err, tokenstore.ErrNotFound) {
		m.mu.Unlock()
		return "", nil
	}
	if err != nil {
		m.mu.Unlock()
		return "", err
	}

	done := make(chan struct{})
	m.inflight = done
	m.mu.Unlock()

	refreshErr := m.doRefresh(ctx, refreshToken)

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()
	close(done)

	if refreshErr != nil {
		return "", refreshErr
	}

	token, _, err := m.freshToken(ctx)
	return token, err
}

// AuthorizationHeader composes "{token_type} {access_token}", refreshing
// the token first if needed. Empty when unauthenticated.
func (m *tokenManager) AuthorizationHeader(ctx context.Context) (string, error) {
	token, err := m.AccessToken(ctx)
	if err != nil || token == "" {
		return "", err
	}

	tokenType, err := m.store.Get(ctx, keyTokenType)
	if err != nil || tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + token, nil
}

// freshToken reads the stored access token and reports whether it is still
// outside the refresh buffer. A token stored without an expiry record is
// treated as non-expiring.
func (m *tokenManager) freshToken(ctx context.Context) (string, bool, error) {
	token, err := m.store.Get(ctx, keyAccessToken)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	raw, err := m.store.Get(ctx, keyExpiresAt)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return token, true, nil
	}
	if err != nil {
		return "", false, err
	}

	expiresAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", false, nil
	}

	if m.now().Before(expiresAt.Add(-m.buffer)) {
		return token, true, nil
	}
	return "", false, nil
}

// doRefresh performs one refresh call and stores or clears accordingly.
// On failure the whole token set is destroyed: a rejected refresh token is
// terminal for the session and forces re-authentication.
func (m *tokenManager) doRefresh(ctx context.Context, refreshToken string) error {
	tr, err := m.refresh(ctx, refreshToken)
	if err != nil {
		_ = m.Clear(ctx)
		return err
	}

	// Refresh responses that omit the rotated refresh token keep the old
	// one, so replace the set before anything reads it.
	if tr.RefreshToken == "" {
		tr.RefreshToken = refreshToken
	}
	if err := m.SetTokens(ctx, tr); err != nil {
		return err
	}

	if m.onRefreshed != nil {
		m.onRefreshed()
	}
	return nil
}
