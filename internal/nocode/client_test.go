package nocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recorre/indie-comments-cloud/internal/types"
)

type capture struct {
	method   string
	path     string
	query    string
	instance string
	auth     string
	content  string
	body     map[string]any
}

func newTestServer(t *testing.T, status int, response string, got *capture) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.instance = r.Header.Get("Instance")
		got.auth = r.Header.Get("Authorization")
		got.content = r.Header.Get("Content-Type")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&got.body)
		}
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
}

func TestReadInjectsCredentials(t *testing.T) {
	var got capture
	srv := newTestServer(t, 200, `{"status":"success","data":[{"id":1,"email":"a@b.co"}],"total":1}`, &got)
	defer srv.Close()

	c := New(srv.URL, "test_instance", "secret-key", 5*time.Second)

	var rows []map[string]any
	total, err := c.Read(context.Background(), "users",
		NewQuery().Eq("email", "a@b.co").IncludeTotal(), &rows)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/read/users", got.path)
	assert.Contains(t, got.query, "email=a%40b.co")
	assert.Contains(t, got.query, "includeTotal=true")
	assert.Equal(t, "test_instance", got.instance)
	assert.Equal(t, "Bearer secret-key", got.auth)
	assert.Equal(t, 1, total)
	assert.Len(t, rows, 1)
}

func TestCreateReturnsID(t *testing.T) {
	var got capture
	srv := newTestServer(t, 200, `{"status":"success","id":"17"}`, &got)
	defer srv.Close()

	c := New(srv.URL, "inst", "key", 5*time.Second)
	id, err := c.Create(context.Background(), "sites", map[string]any{"site_name": "Blog"})
	require.NoError(t, err)

	// String ids on create responses are absorbed.
	assert.Equal(t, uint64(17), id)
	assert.Equal(t, "/create/sites", got.path)
	assert.Equal(t, "application/json", got.content)
	assert.Equal(t, "Blog", got.body["site_name"])
}

func TestUpdateAndDeletePaths(t *testing.T) {
	var got capture
	srv := newTestServer(t, 200, `{"status":"success"}`, &got)
	defer srv.Close()

	c := New(srv.URL, "inst", "key", 5*time.Second)

	require.NoError(t, c.Update(context.Background(), "comments", 9, map[string]any{"visible": true}))
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/update/comments/9", got.path)
	assert.Equal(t, true, got.body["visible"])

	require.NoError(t, c.Delete(context.Background(), "comments", 9))
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/delete/comments/9", got.path)
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		kind   types.Kind
	}{
		{429, `rate limited`, types.KindRateLimit},
		{401, `unauthorized`, types.KindAuth},
		{403, `forbidden`, types.KindAuth},
		{500, `{"status":"error"}`, types.KindAPI},
		{502, `bad gateway`, types.KindAPI},
	}

	for _, tc := range cases {
		var got capture
		srv := newTestServer(t, tc.status, tc.body, &got)

		c := New(srv.URL, "inst", "key", 5*time.Second)
		var rows []map[string]any
		_, err := c.Read(context.Background(), "users", NewQuery(), &rows)
		require.Error(t, err, "status %d", tc.status)
		assert.Equal(t, tc.kind, types.KindOf(err), "status %d", tc.status)

		srv.Close()
	}
}

func TestAPIErrorKeepsBody(t *testing.T) {
	var got capture
	srv := newTestServer(t, 500, `{"status":"error","message":"boom"}`, &got)
	defer srv.Close()

	c := New(srv.URL, "inst", "key", 5*time.Second)
	var rows []map[string]any
	_, err := c.Read(context.Background(), "users", NewQuery(), &rows)

	var taxErr *types.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, `{"status":"error","message":"boom"}`, taxErr.Body)
}

func TestTransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refuse connections

	c := New(srv.URL, "inst", "key", time.Second)
	var rows []map[string]any
	_, err := c.Read(context.Background(), "users", NewQuery(), &rows)
	assert.Equal(t, types.KindNetwork, types.KindOf(err))
}

func TestMalformedResponseIsNetwork(t *testing.T) {
	var got capture
	srv := newTestServer(t, 200, `not json`, &got)
	defer srv.Close()

	c := New(srv.URL, "inst", "key", 5*time.Second)
	var rows []map[string]any
	_, err := c.Read(context.Background(), "users", NewQuery(), &rows)
	assert.Equal(t, types.KindNetwork, types.KindOf(err))
}
