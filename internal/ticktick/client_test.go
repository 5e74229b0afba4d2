package ticktick

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, srv *httptest.Server, creds Credentials, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRetryInterval(time.Millisecond),
	}
	c, err := NewClient(creds, append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresAccessToken(t *testing.T) {
	_, err := NewClient(Credentials{})
	require.Error(t, err)
	assert.Equal(t, KindAuthentication, KindOf(err))
}

func TestDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/project", r.URL.Path)
		w.Write([]byte(`[{"id":"p1","name":"Inbox"}]`))
	}))
	defer srv.Close()

	c := testClient(t, srv, Credentials{AccessToken: "tok"})
	raw, err := c.Do(context.Background(), http.MethodGet, "/project", nil)
	require.NoError(t, err)

	var projects []Project
	require.NoError(t, json.Unmarshal(raw, &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "Inbox", projects[0].Name)
}

func TestDoNormalizesEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := testClient(t, srv, Credentials{AccessToken: "tok"})
	raw, err := c.Do(context.Background(), http.MethodDelete, "/task/t1", nil)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id":"t1","title":"ok"}`))
	}))
	defer srv.Close()

	c := testClient(t, srv, Credentials{AccessToken: "tok"})
	raw, err := c.Do(context.Background(), http.MethodGet, "/task/t1", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoGivesUpAfterRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(t, srv, Credentials{AccessToken: "tok"})
	_, err := c.Do(context.Background(), http.MethodGet, "/project", nil)
	require.Error(t, err)
	assert.Equal(t, KindServer, KindOf(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoDoesNotRetryTerminalStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"forbidden", http.StatusForbidden, KindPermission},
		{"not found", http.StatusNotFound, KindNotFound},
		{"bad request", http.StatusBadRequest, KindUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := testClient(t, srv, Credentials{AccessToken: "tok"})
			_, err := c.Do(context.Background(), http.MethodGet, "/project", nil)
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, int32(1), calls.Load(), "terminal statuses must not be retried")
		})
	}
}

func TestDoRefreshesTokenOnceOn401(t *testing.T) {
	var refreshes atomic.Int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "cid", user)
		assert.Equal(t, "csecret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "refresh-tok", r.FormValue("refresh_token"))
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "fresh-tok",
			"refresh_token": "fresh-refresh",
		})
	}))
	defer tokenSrv.Close()

	var apiCalls atomic.Int32
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh-tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":"t1","title":"after refresh"}`))
	}))
	defer apiSrv.Close()

	c := testClient(t, apiSrv, Credentials{
		ClientID:     "cid",
		ClientSecret: "csecret",
		AccessToken:  "stale-tok",
		RefreshToken: "refresh-tok",
	}, WithTokenURL(tokenSrv.URL))

	raw, err := c.Do(context.Background(), http.MethodGet, "/task/t1", nil)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "after refresh")

	assert.Equal(t, int32(1), refreshes.Load(), "exactly one refresh per call")
	assert.Equal(t, int32(2), apiCalls.Load(), "original attempt plus one retry")

	creds := c.Credentials()
	assert.Equal(t, "fresh-tok", creds.AccessToken)
	assert.Equal(t, "fresh-refresh", creds.RefreshToken)
}

func TestDoCountsRejectedAttemptDuringRefresh(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh-tok"})
	}))
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":"t1"}`))
	}))
	defer apiSrv.Close()

	// A method no other test uses keeps the label deltas isolated on
	// the shared default registry.
	before401 := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodPut, "401"))
	before200 := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodPut, "200"))

	c := testClient(t, apiSrv, Credentials{
		ClientID:     "cid",
		ClientSecret: "csecret",
		AccessToken:  "stale-tok",
		RefreshToken: "refresh-tok",
	}, WithTokenURL(tokenSrv.URL))

	_, err := c.Do(context.Background(), http.MethodPut, "/task/t1", nil)
	require.NoError(t, err)

	after401 := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodPut, "401"))
	after200 := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodPut, "200"))
	assert.Equal(t, 1.0, after401-before401, "the rejected attempt must be counted")
	assert.Equal(t, 1.0, after200-before200, "the retried attempt must be counted")
}

func TestDoSurfaces401WhenRefreshFails(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer tokenSrv.Close()

	var apiCalls atomic.Int32
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer apiSrv.Close()

	c := testClient(t, apiSrv, Credentials{
		ClientID:     "cid",
		ClientSecret: "csecret",
		AccessToken:  "stale-tok",
		RefreshToken: "refresh-tok",
	}, WithTokenURL(tokenSrv.URL))

	_, err := c.Do(context.Background(), http.MethodGet, "/project", nil)
	require.Error(t, err)
	assert.Equal(t, KindAuthentication, KindOf(err))
	assert.Equal(t, int32(1), apiCalls.Load(), "no API retry after a failed refresh")
}

func TestDoWithoutRefreshTokenSurfaces401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv, Credentials{AccessToken: "stale-tok"})
	_, err := c.Do(context.Background(), http.MethodGet, "/project", nil)
	require.Error(t, err)
	assert.Equal(t, KindAuthentication, KindOf(err))
}

func TestDoRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(t, srv, Credentials{AccessToken: "tok"})
	_, err := c.Do(context.Background(), http.MethodGet, "/project", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(t, srv, Credentials{AccessToken: "tok"}, WithRetryInterval(time.Hour))
	_, err := c.Do(ctx, http.MethodGet, "/project", nil)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestStatusErrorRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")
	e := statusError(http.StatusTooManyRequests, h, nil)
	assert.Equal(t, KindRateLimit, e.Kind)
	assert.Equal(t, 7, e.RetryAfter)

	e = statusError(http.StatusTooManyRequests, http.Header{}, nil)
	assert.Equal(t, 0, e.RetryAfter)
}
