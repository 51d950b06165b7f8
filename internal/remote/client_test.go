package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/metrics"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token(context.Context) (string, error) { return "", errors.New("store closed") }

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenSource, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithHTTPClient(srv.Client()), WithLogger(zaptest.NewLogger(t))}, opts...)
	c, err := New(srv.URL+"/api/classroom/", "k-123", tokens, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	t.Parallel()
	_, err := New("  ", "k", nil)
	require.Error(t, err)
}

func TestDo_HeadersAndEnvelope(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey, gotAuth, gotCT string
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get(APIKeyHeader)
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = io.WriteString(w, `{"data":{"name":"ok"}}`)
	}, staticToken("T0K"))

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.Post(context.Background(), "/status", map[string]string{"content": "hi"}, &out))
	require.Equal(t, "/api/classroom/status", gotPath)
	require.Equal(t, "k-123", gotKey)
	require.Equal(t, "Bearer T0K", gotAuth)
	require.Equal(t, "application/json", gotCT)
	require.Equal(t, "hi", gotBody["content"])
	require.Equal(t, "ok", out.Name)
}

func TestDo_BareBodyAndNoToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `[{"name":"a"},{"name":"b"}]`)
	}, staticToken(""))

	var out []struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.Get(context.Background(), "/status", &out))
	require.Empty(t, gotAuth)
	require.Len(t, out, 2)
}

func TestDo_EmptyBodyIsFine(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)
	var out map[string]any
	require.NoError(t, c.Delete(context.Background(), "/status/1", nil, &out))
	require.Nil(t, out)
}

func TestDo_ServerErrorMessages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", 400, `{"message":"content required"}`, "content required"},
		{"error field", 403, `{"error":"forbidden"}`, "forbidden"},
		{"no json", 502, `<html>bad gateway</html>`, "HTTP 502"},
		{"empty", 500, ``, "HTTP 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, nil)
			err := c.Get(context.Background(), "/x", nil)
			var se *errs.ServerError
			require.True(t, errors.As(err, &se))
			require.Equal(t, tc.status, se.Status)
			require.Equal(t, tc.want, se.Error())
		})
	}
}

func TestDo_UnauthorizedIsAuthError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"invalid token"}`)
	}, staticToken("old"))
	err := c.Get(context.Background(), "/profile", nil)
	var ae *errs.AuthError
	require.True(t, errors.As(err, &ae))
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Equal(t, "Please sign in again.", errs.Message(err))
}

func TestDo_TokenSourceFailure(t *testing.T) {
	t.Parallel()

	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true }, failingToken{})
	err := c.Get(context.Background(), "/profile", nil)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.False(t, called)
}

func TestDo_TransportFailureIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	m := metrics.New()
	c, err := New(url, "k", nil, WithMetrics(m))
	require.NoError(t, err)
	err = c.Get(context.Background(), "/status", nil)
	var ne *errs.NetworkError
	require.True(t, errors.As(err, &ne))
	require.Equal(t, "GET /status", ne.Op)
}

func TestDo_QueryStringPath(t *testing.T) {
	t.Parallel()

	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("id")
	}, nil, WithRateLimit(100, 2))
	require.NoError(t, c.Delete(context.Background(), "/status?id=abc", nil, nil))
	require.Equal(t, "abc", gotQuery)
}

func TestDecodeEnvelope_ObjectWithoutData(t *testing.T) {
	t.Parallel()

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, decodeEnvelope([]byte(` {"token":"abc"} `), &out))
	require.Equal(t, "abc", out.Token)
}
