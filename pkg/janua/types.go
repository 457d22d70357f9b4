package janua

import "time"

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is the wire shape returned by the token-issuing endpoints
// (login, refresh, MFA challenge, code exchange).
type TokenResponse struct {
	// AccessToken is the short-lived bearer credential for API requests.
	AccessToken string `json:"access_token"`

	// RefreshToken is the longer-lived credential used to mint a new token
	// set. Absent for some flows.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is prefixed onto the Authorization header, normally "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`

	// Scope is the space-delimited granted-scope string.
	Scope string `json:"scope,omitempty"`
}

// TokenSet is the stored credential bundle for one authenticated principal.
// ExpiresAt is computed once, at storage time, from the issuance time plus
// the server-reported lifetime.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	Scope        string
}

// ============================================================================
// Auth Types
// ============================================================================

// SignupRequest registers a new account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

/// AuthResponse is returned by sign-in style endpoints: the authenticated
// user together with the issued token set.
type AuthResponse struct {
	User   User          `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// ============================================================================
// User Types
// ============================================================================

// User is a Janua account.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	MFAEnabled    bool      `json:"mfa_enabled"`
	Roles         []string  `json:"roles,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpdateUserRequest carries the mutable profile fields. Nil pointers are
// omitted from the request and left unchanged server-side.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// ListOptions selects a page of a collection.
type ListOptions struct {
	Page    int
	PerPage int
}

// UserPage is one page of users plus paging metadata.
type UserPage struct {
	Users   []User `json:"users"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// ============================================================================
// Organization Types
// ============================================================================

// Organization is a tenant grouping users.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateOrganizationRequest creates a new organization.
type CreateOrganizationRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// UpdateOrganizationRequest carries the mutable organization fields.
type UpdateOrganizationRequest struct {
	Name *string `json:"name,omitempty"`
	Slug *string `json:"slug,omitempty"`
}

// OrganizationPage is one page of organizations plus paging metadata.
type OrganizationPage struct {
	Organizations []Organization `json:"organizations"`
	Total         int            `json:"total"`
	Page          int            `json:"page"`
	PerPage       int            `json:"per_page"`
}

// Member is a user's membership within an organization.
type Member struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// InviteMemberRequest invites a user into an organization by email.
type InviteMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// ============================================================================
// MFA Types
// ============================================================================

// TOTPEnrollResponse is returned when TOTP enrollment begins. The secret
// must be verified with VerifyTOTP before MFA becomes active.
type TOTPEnrollResponse struct {
	Secret  string `json:"secret"`
	QRCode  string `json:"qr_code"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// BackupCodesResponse carries single-use recovery codes.
type BackupCodesResponse struct {
	Codes []string `json:"codes"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is the service health report.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}
