/*
Package janua provides a Go client SDK for the Janua identity platform.

# Overview

The package is organized around a single type, Client, which owns a token
store, a token manager with automatic refresh, and a retrying request
pipeline. Every API operation goes through the same pipeline: the
Authorization header is resolved (refreshing the access token when it is
inside the expiry buffer), the request is sent with a per-attempt timeout,
and transient failures are retried with exponential backoff.

	cfg := janua.Config{BaseURL: "https://api.janua.dev"}
	client, err := janua.New(cfg)
	if err != nil {
		// a ConfigurationError: fix the construction site
	}
	defer client.Dispose()

	auth, err := client.Login(ctx, "ada@example.com", "hunter2")
	if err != nil {
		var mfaErr *janua.MFARequiredError
		if errors.As(err, &mfaErr) {
			auth, err = client.CompleteMFALogin(ctx, mfaErr.MFAToken, "totp", code)
		}
	}

	me, err := client.Me(ctx)

# Token Refresh

Access tokens are refreshed proactively, 300 seconds (configurable) before
their actual expiry, so a token never expires mid-request. The refresh is
single-flight: however many goroutines need a token simultaneously, exactly
one refresh HTTP call is made and all of them resume once it resolves.
Refresh tokens are single-use server-side, so this guarantee is what keeps
concurrent callers from invalidating each other's session.

A failed refresh is terminal: all stored tokens are cleared, EventSignedOut
fires, and the application must re-authenticate.

# Token Storage

Tokens live in a tokenstore.Store. By default that is process memory; set
Config.StatePath to keep them in a SQLite file that survives restarts, or
inject any Store implementation with WithStore.

# Errors

Every operation returns one of the typed errors in this package:
NetworkError, AuthenticationError, ValidationError, RateLimitError,
ServerError, ConfigurationError, or MFARequiredError. Branch with
errors.As:

	var valErr *janua.ValidationError
	if errors.As(err, &valErr) {
		// valErr.Details holds field-level messages
	}

Retries are invisible to callers except as latency; only the final outcome
crosses the API boundary.

# Events

Subscribe to auth-state transitions to keep UI or middleware in sync:

	unsubscribe := client.Subscribe(janua.EventSignedOut, func() {
		// redirect to login
	})
	defer unsubscribe()
*/
package janua
