package janua

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newAuthedClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, _ := newTestClient(t, server.URL)
	require.NoError(t, client.tokens.SetTokens(context.Background(), &TokenResponse{
		AccessToken: "A1",
		ExpiresIn:   3600,
	}))
	return client
}

func TestMe(t *testing.T) {
	t.Parallel()

	client := newAuthedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/users/me", r.URL.Path)
		require.Equal(t, "Bearer A1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Email: "ada@example.com"})
	}))

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
}

func TestUpdateMeSendsOnlySetFields(t *testing.T) {
	t.Parallel()

	client := newAuthedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Equal(t, map[string]any{"name": "Ada Lovelace"}, raw)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Name: "Ada Lovelace"})
	}))

	name := "Ada Lovelace"
	user, err := client.UpdateMe(context.Background(), UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", user.Name)
}

func TestListUsersPagination(t *testing.T) {
	t.Parallel()

	client := newAuthedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "50", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(UserPage{
			Users:   []User{{ID: "u1"}, {ID: "u2"}},
			Total:   102,
			Page:    2,
			PerPage: 50,
		})
	}))

	page, err := client.ListUsers(context.Background(), ListOptions{Page: 2, PerPage: 50})
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	require.Equal(t, 102, page.Total)
}

func TestPageQueryOmitsZeroValues(t *testing.T) {
	t.Parallel()

	require.Empty(t, pageQuery(ListOptions{}))
	require.Equal(t, "page=3", pageQuery(ListOptions{Page: 3}))
	require.Equal(t, "page=1&per_page=25", pageQuery(ListOptions{Page: 1, PerPage: 25}))
}

func TestOrganizationLifecycle(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/organizations", func(w http.ResponseWriter, r *http.Request) {
		var req CreateOrganizationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Organization{ID: "org_1", Name: req.Name, Slug: "acme"})
	})
	mux.HandleFunc("GET /api/v1/organizations/org_1/members", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"members":[{"user_id":"u1","email":"ada@example.com","role":"owner"}]}`))
	})
	mux.HandleFunc("POST /api/v1/organizations/org_1/members", func(w http.ResponseWriter, r *http.Request) {
		var req InviteMemberRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "grace@example.com", req.Email)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/v1/organizations/org_1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	client := newAuthedClient(t, mux)
	ctx := context.Background()

	org, err := client.CreateOrganization(ctx, CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	require.Equal(t, "org_1", org.ID)

	members, err := client.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "owner", members[0].Role)

	require.NoError(t, client.InviteMember(ctx, org.ID, InviteMemberRequest{
		Email: "grace@example.com",
		Role:  "member",
	}))

	require.NoError(t, client.DeleteOrganization(ctx, org.ID))
}
