package janua

import (
	"context"
	"net/http"
)

// Health checks the service's liveness endpoint. No authentication is
// required.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &resp, requestOptions{skipAuth: true}); err != nil {
		return nil, err
	}
	return &resp, nil
}
