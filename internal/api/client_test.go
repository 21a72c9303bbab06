package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/slotlist/slotlist/frontend/go-client/pkg/uid"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	ReqID  string
	Body   string
}

type recorder struct {
	mu   sync.Mutex
	reqs []recorded
}

func (r *recorder) last(t *testing.T) recorded {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.reqs)
	return r.reqs[len(r.reqs)-1]
}

func newRecordingServer(t *testing.T, status int, body string) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, recorded{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			ReqID:  r.Header.Get(RequestIDHeader),
			Body:   string(b),
		})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), rec
}

func TestCommunityEndpoints(t *testing.T) {
	ctx := context.Background()
	c, rec := newRecordingServer(t, http.StatusOK, `{"ok":true}`)

	cases := []struct {
		name   string
		call   func() (*Response, error)
		method string
		path   string
		query  string
		body   string
	}{
		{"apply", func() (*Response, error) { return c.ApplyToCommunity(ctx, "foo") }, "POST", "/v1/communities/foo/applications", "", ""},
		{"slugAvailable", func() (*Response, error) { return c.CheckCommunitySlugAvailability(ctx, "new slug") }, "GET", "/v1/communities/slugAvailable", "slug=new+slug", ""},
		{"create", func() (*Response, error) {
			return c.CreateCommunity(ctx, map[string]any{"name": "Foo", "slug": "foo"})
		}, "POST", "/v1/communities", "", `{"name":"Foo","slug":"foo"}`},
		{"delete", func() (*Response, error) { return c.DeleteCommunity(ctx, "foo") }, "DELETE", "/v1/communities/foo", "", ""},
		{"edit", func() (*Response, error) { return c.EditCommunity(ctx, "foo", map[string]any{"name": "Bar"}) }, "PATCH", "/v1/communities/foo", "", `{"name":"Bar"}`},
		{"list default page", func() (*Response, error) { return c.GetCommunities(ctx, Page{}) }, "GET", "/v1/communities", "limit=10&offset=0", ""},
		{"list page", func() (*Response, error) { return c.GetCommunities(ctx, Page{Limit: 25, Offset: 50}) }, "GET", "/v1/communities", "limit=25&offset=50", ""},
		{"applications", func() (*Response, error) { return c.GetCommunityApplications(ctx, "foo", Page{Offset: 10}) }, "GET", "/v1/communities/foo/applications", "limit=10&offset=10", ""},
		{"details", func() (*Response, error) { return c.GetCommunityDetails(ctx, "foo") }, "GET", "/v1/communities/foo", "", ""},
		{"missions", func() (*Response, error) { return c.GetCommunityMissions(ctx, "foo", Page{}) }, "GET", "/v1/communities/foo/missions", "limit=10&offset=0", ""},
		{"accept", func() (*Response, error) { return c.ProcessCommunityApplication(ctx, "foo", "app-1", true) }, "PATCH", "/v1/communities/foo/applications/app-1", "", `{"status":"accepted"}`},
		{"deny", func() (*Response, error) { return c.ProcessCommunityApplication(ctx, "foo", "app-1", false) }, "PATCH", "/v1/communities/foo/applications/app-1", "", `{"status":"denied"}`},
		{"removeMember", func() (*Response, error) { return c.RemoveCommunityMember(ctx, "foo", "u-1") }, "DELETE", "/v1/communities/foo/members/u-1", "", ""},
		{"search", func() (*Response, error) { return c.SearchCommunities(ctx, "a&b") }, "GET", "/v1/communities", "search=a%26b", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := tc.call()
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.JSONEq(t, `{"ok":true}`, string(resp.Body))

			got := rec.last(t)
			require.Equal(t, tc.method, got.Method)
			require.Equal(t, tc.path, got.Path)
			require.Equal(t, tc.query, got.Query)
			if tc.body == "" {
				require.Empty(t, got.Body)
			} else {
				require.JSONEq(t, tc.body, got.Body)
			}
			require.True(t, uid.IsValid(got.ReqID), got.ReqID)
		})
	}
}

func TestAuthEndpoints(t *testing.T) {
	ctx := context.Background()
	c, rec := newRecordingServer(t, http.StatusOK, `{}`)

	_, err := c.GetLoginRedirectURL(ctx)
	require.NoError(t, err)
	require.Equal(t, "GET /v1/auth/steam", rec.last(t).Method+" "+rec.last(t).Path)

	_, err = c.PerformLogin(ctx, map[string]any{"url": "https://cb"})
	require.NoError(t, err)
	require.Equal(t, "POST", rec.last(t).Method)
	require.JSONEq(t, `{"url":"https://cb"}`, rec.last(t).Body)

	_, err = c.RefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "/v1/auth/refresh", rec.last(t).Path)

	_, err = c.GetAccountDetails(ctx)
	require.NoError(t, err)
	require.Equal(t, "GET", rec.last(t).Method)
	require.Equal(t, "/v1/auth/account", rec.last(t).Path)

	_, err = c.EditAccount(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "PATCH", rec.last(t).Method)
	require.JSONEq(t, `{}`, rec.last(t).Body)
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	c, rec := newRecordingServer(t, http.StatusOK, `{}`)
	_, err := c.GetCommunityDetails(context.Background(), "a/b c")
	require.NoError(t, err)
	require.Equal(t, "/v1/communities/a%2Fb%20c", rec.last(t).Path)
}

func TestAuthorizationHeader(t *testing.T) {
	ctx := context.Background()
	c, rec := newRecordingServer(t, http.StatusOK, `{}`)

	_, _ = c.GetCommunities(ctx, Page{})
	require.Empty(t, rec.last(t).Auth)

	c.SetAuthorization("abc")
	_, _ = c.GetCommunities(ctx, Page{})
	require.Equal(t, "JWT abc", rec.last(t).Auth)
	require.Equal(t, "JWT abc", c.Authorization())

	c.ClearAuthorization()
	_, _ = c.GetCommunities(ctx, Page{})
	require.Empty(t, rec.last(t).Auth)

	b := New(c.BaseURL(), WithAuthScheme("Bearer"))
	b.SetAuthorization("xyz")
	_, _ = b.GetCommunities(ctx, Page{})
	require.Equal(t, "Bearer xyz", rec.last(t).Auth)
}

func TestResponseReturnedUnmodified(t *testing.T) {
	c, _ := newRecordingServer(t, http.StatusNotFound, `{"message":"Community not found"}`)
	resp, err := c.GetCommunityDetails(context.Background(), "missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var m MessageResponse
	require.NoError(t, json.Unmarshal(resp.Body, &m))
	require.Equal(t, "Community not found", m.Message)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.GetCommunities(context.Background(), Page{})
	require.Error(t, err)
}
