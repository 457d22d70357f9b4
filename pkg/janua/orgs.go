package janua

import (
	"context"
	"net/http"
)

// CreateOrganization creates a new organization owned by the caller.
func (c *Client) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*Organization, error) {
	var org Organization
	if err := c.do(ctx, http.MethodPost, "/api/v1/organizations", req, &org, requestOptions{}); err != nil {
		return nil, err
	}
	return &org, nil
}

// GetOrganization retrieves one organization by ID.
func (c *Client) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	if err := c.do(ctx, http.MethodGet, "/api/v1/organizations/"+id, nil, &org, requestOptions{}); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListOrganizations returns a page of the caller's organizations.
func (c *Client) ListOrganizations(ctx context.Context, opts ListOptions) (*OrganizationPage, error) {
	var page OrganizationPage
	err := c.do(ctx, http.MethodGet, "/api/v1/organizations", nil, &page, requestOptions{query: pageQuery(opts)})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateOrganization updates an organization. Nil fields are left unchanged.
func (c *Client) UpdateOrganization(ctx context.Context, id string, req UpdateOrganizationRequest) (*Organization, error) {
	var org Organization
	if err := c.do(ctx, http.MethodPatch, "/api/v1/organizations/"+id, req, &org, requestOptions{}); err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteOrganization deletes an organization and all its memberships.
func (c *Client) DeleteOrganization(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/organizations/"+id, nil, nil, requestOptions{})
}

// ListMembers returns the members of an organization.
func (c *Client) ListMembers(ctx context.Context, orgID string) ([]Member, error) {
	var resp struct {
		Members []Member `json:"members"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/organizations/"+orgID+"/members", nil, &resp, requestOptions{})
	if err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// InviteMember invites a user into an organization by email.
func (c *Client) InviteMember(ctx context.Context, orgID string, req InviteMemberRequest) error {
	return c.do(ctx, http.MethodPost, "/api/v1/organizations/"+orgID+"/members", req, nil, requestOptions{})
}
