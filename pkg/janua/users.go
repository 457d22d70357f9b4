package janua

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Me retrieves the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &user, requestOptions{}); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe updates the authenticated user's profile. Nil fields are left
// unchanged.
func (c *Client) UpdateMe(ctx context.Context, req UpdateUserRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPatch, "/api/v1/users/me", req, &user, requestOptions{}); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword changes the authenticated user's password. The current
// password is required as proof of possession.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/users/me/password", body, nil, requestOptions{})
}

// ListUsers returns a page of users. Admin only.
func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (*UserPage, error) {
	var page UserPage
	err := c.do(ctx, http.MethodGet, "/api/v1/users", nil, &page, requestOptions{query: pageQuery(opts)})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// pageQuery encodes list pagination parameters. Zero values are omitted so
// the server applies its own defaults.
func pageQuery(opts ListOptions) string {
	values := url.Values{}
	if opts.Page > 0 {
		values.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	return values.Encode()
}
