package janua

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error codes commonly returned by the Janua API. The set is open; these
// are the ones the SDK branches on.
const (
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeTokenExpired       = "token_expired"
	ErrorCodeTokenInvalid       = "token_invalid"
	ErrorCodeMFARequired        = "mfa_required"
	ErrorCodeValidationFailed   = "validation_failed"
	ErrorCodeRateLimited        = "rate_limited"
	ErrorCodeServerError        = "server_error"
)

// APIError carries the Janua error envelope for a failed request. It is
// embedded by the concrete error kinds below; callers normally branch with
// errors.As on those kinds rather than on APIError itself.
type APIError struct {
	// StatusCode is the HTTP status of the failing response, or 0 when the
	// error was produced from an application-level envelope on a 2xx.
	StatusCode int

	// Code is the machine-readable error code from the envelope.
	Code string

	// Message is the human-readable description from the envelope.
	Message string

	// Details holds field-level context, typically validation failures.
	Details map[string]any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError reports that no usable response was received: DNS or
// connection failure, or a per-attempt timeout. Always eligible for retry.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// AuthenticationError reports a 401 or an application-level authentication
// failure. The pipeline attempts one token refresh before surfacing it.
type AuthenticationError struct {
	APIError
}

// ValidationError reports a terminal 4xx: the request itself was rejected
// and resending it unchanged cannot succeed.
type ValidationError struct {
	APIError
}

// RateLimitError reports a 429. RetryAfter carries the server's hint when
// one was present, zero otherwise.
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

// ServerError reports a 5xx response.
type ServerError struct {
	APIError
}

// ConfigurationError reports programmer error at the point of misuse, such
// as constructing a client without a base URL. Never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return "janua: " + e.Message }

// MFARequiredError is returned by Login when the account has multi-factor
// authentication enabled. Complete the sign-in with CompleteMFALogin using
// the challenge token.
type MFARequiredError struct {
	// MFAToken identifies the pending challenge.
	MFAToken string

	// Methods lists the available factors (e.g. ["totp", "backup_codes"]).
	Methods []string
}

func (e *MFARequiredError) Error() string {
	return fmt.Sprintf("mfa required: available methods=%v", e.Methods)
}

// errorEnvelope is the wire shape of a non-2xx response body.
type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// appEnvelope detects application-level failures delivered on a 2xx.
type appEnvelope struct {
	Status string `json:"status"`
	Error  struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// classifyResponse converts a non-2xx response into a typed error. Raw
// transport detail never crosses this boundary.
func classifyResponse(resp *http.Response, body []byte) error {
	base := APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    http.StatusText(resp.StatusCode),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		base.Code = envelope.Error.Code
		base.Message = envelope.Error.Message
		base.Details = envelope.Error.Details
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthenticationError{APIError: base}

	case resp.StatusCode == http.StatusConflict && base.Code == ErrorCodeMFARequired:
		var challenge struct {
			MFAToken string   `json:"mfa_token"`
			Methods  []string `json:"mfa_methods"`
		}
		if err := json.Unmarshal(body, &challenge); err == nil && challenge.MFAToken != "" {
			return &MFARequiredError{MFAToken: challenge.MFAToken, Methods: challenge.Methods}
		}
		return &ValidationError{APIError: base}

	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{APIError: base, RetryAfter: parseRetryAfter(resp)}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ValidationError{APIError: base}

	default:
		return &ServerError{APIError: base}
	}
}

// classifyAppError converts an application-level error envelope carried on a
// 2xx response into a typed error. Transport success does not imply the
// operation succeeded.
func classifyAppError(body []byte) error {
	var envelope appEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Status != "error" {
		return nil
	}

	base := APIError{
		Code:    envelope.Error.Code,
		Message: envelope.Error.Message,
		Details: envelope.Error.Details,
	}
	if base.Code == "" {
		base.Code = ErrorCodeServerError
	}

	switch base.Code {
	case ErrorCodeInvalidCredentials, ErrorCodeTokenExpired, ErrorCodeTokenInvalid:
		return &AuthenticationError{APIError: base}
	default:
		return &ValidationError{APIError: base}
	}
}

// parseRetryAfter reads the Retry-After header as whole seconds. Returns
// zero when absent or unparseable; the HTTP-date form is not supported by
// the API and is ignored here.
func parseRetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// statusCodeOf extracts the HTTP status from a typed error, or 0 when the
// error is not status-derived.
func statusCodeOf(err error) int {
	switch e := err.(type) {
	case *AuthenticationError:
		return e.StatusCode
	case *ValidationError:
		return e.StatusCode
	case *RateLimitError:
		return e.StatusCode
	case *ServerError:
		return e.StatusCode
	default:
		return 0
	}
}
