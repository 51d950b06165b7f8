package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/probe"
	"github.com/and161185/classroom/internal/remote"
	"github.com/and161185/classroom/internal/repository"
)

var (
	_ repository.StatusRepository  = (*StatusAPI)(nil)
	_ repository.ProfileRepository = (*AccountAPI)(nil)
	_ repository.ClassRepository   = (*ClassAPI)(nil)
)

type hit struct {
	Method, Path, Query string
	Body               map[string]string
}

// fakeServer records every request and answers via routes keyed by "METHOD path".
type fakeServer struct {
	mu     sync.Mutex
	hits   []hit
	routes map[string]func(w http.ResponseWriter)
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	var body map[string]string
	_ = json.Unmarshal(b, &body)
	f.mu.Lock()
	f.hits = append(f.hits, hit{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
	f.mu.Unlock()
	if h, ok := f.routes[r.Method+" "+r.URL.Path]; ok {
		h(w)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"message":"Cannot `+r.Method+` `+r.URL.Path+`"}`)
}

func newFake(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*fakeServer, *remote.Client) {
	t.Helper()
	fs := &fakeServer{routes: routes}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	c, err := remote.New(srv.URL, "key", nil, remote.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return fs, c
}

func ok(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) { _, _ = io.WriteString(w, body) }
}

func TestStatusAPI_ListAndGet(t *testing.T) {
	t.Parallel()

	_, c := newFake(t, map[string]func(http.ResponseWriter){
		"GET /status":    ok(`{"data":[{"_id":"2","content":"b"},{"_id":"1","content":"a"}]}`),
		"GET /status/s1": ok(`{"data":{"_id":"s1","content":"x","likeCount":3}}`),
	})
	api := NewStatusAPI(c, nil)

	list, err := api.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "2", list[0].ID)

	st, err := api.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, 3, st.EffectiveLikeCount())

	_, err = api.Get(context.Background(), "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStatusAPI_CreateLikeComment(t *testing.T) {
	t.Parallel()

	fs, c := newFake(t, map[string]func(http.ResponseWriter){
		"POST /status":  ok(`{"data":{"_id":"new"}}`),
		"POST /like":    ok(``),
		"POST /comment": ok(``),
	})
	api := NewStatusAPI(c, nil)
	ctx := context.Background()

	require.NoError(t, api.Create(ctx, "hello"))
	require.NoError(t, api.Like(ctx, "s1"))
	require.NoError(t, api.AddComment(ctx, "s1", "nice"))

	require.Equal(t, []hit{
		{Method: "POST", Path: "/status", Body: map[string]string{"content": "hello"}},
		{Method: "POST", Path: "/like", Body: map[string]string{"statusId": "s1"}},
		{Method: "POST", Path: "/comment", Body: map[string]string{"statusId": "s1", "content": "nice"}},
	}, fs.hits)
}

func TestStatusAPI_UnlikeFallsBack(t *testing.T) {
	t.Parallel()

	fs, c := newFake(t, map[string]func(http.ResponseWriter){
		"POST /unlike": ok(``),
	})
	api := NewStatusAPI(c, probe.New(zaptest.NewLogger(t), nil))
	require.NoError(t, api.Unlike(context.Background(), "s9"))

	require.Len(t, fs.hits, 3)
	require.Equal(t, "DELETE /like", fs.hits[0].Method+" "+fs.hits[0].Path)
	require.Equal(t, "DELETE /unlike", fs.hits[1].Method+" "+fs.hits[1].Path)
	require.Equal(t, "POST /unlike", fs.hits[2].Method+" "+fs.hits[2].Path)
	for _, h := range fs.hits {
		require.Equal(t, "s9", h.Body["statusId"])
	}
}

func TestStatusAPI_DeleteAllFailSurfacesLast(t *testing.T) {
	t.Parallel()

	fs, c := newFake(t, nil)
	err := NewStatusAPI(c, nil).Delete(context.Background(), "s1")

	var se *errs.ServerError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "Cannot DELETE /status", se.Message)
	require.Len(t, fs.hits, 4)
	require.Equal(t, "/status/s1", fs.hits[0].Path)
	require.Equal(t, "id=s1", fs.hits[1].Query)
	require.Equal(t, "/status/delete", fs.hits[2].Path)
	require.Equal(t, "s1", fs.hits[2].Body["id"])
	require.Equal(t, "DELETE", fs.hits[3].Method)
	require.Equal(t, "s1", fs.hits[3].Body["id"])
}

func TestStatusAPI_DeleteFirstCandidate(t *testing.T) {
	t.Parallel()

	fs, c := newFake(t, map[string]func(http.ResponseWriter){
		"DELETE /status/s1": ok(``),
	})
	require.NoError(t, NewStatusAPI(c, nil).Delete(context.Background(), "s1"))
	require.Len(t, fs.hits, 1)
}

func TestStatusAPI_DeleteComment(t *testing.T) {
	t.Parallel()

	fs, c := newFake(t, map[string]func(http.ResponseWriter){
		"POST /comment/delete": ok(``),
	})
	require.NoError(t, NewStatusAPI(c, nil).DeleteComment(context.Background(), "c1", "s1"))
	require.Len(t, fs.hits, 4)
	require.Equal(t, "/comment/c1", fs.hits[0].Path)
	require.Equal(t, "s1", fs.hits[0].Body["statusId"])
	require.Equal(t, "id=c1", fs.hits[1].Query)
	require.Equal(t, "DELETE", fs.hits[2].Method)
	require.Equal(t, map[string]string{"id": "c1", "statusId": "s1"}, fs.hits[2].Body)
	require.Equal(t, map[string]string{"id": "c1", "statusId": "s1"}, fs.hits[3].Body)
}

func TestAccountAPI_SignIn(t *testing.T) {
	t.Parallel()

	_, c := newFake(t, map[string]func(http.ResponseWriter){
		"POST /signin": ok(`{"data":{"_id":"u1","email":"me@kku.ac.th","firstname":"A","token":"jwt"}}`),
	})
	tok, id, err := NewAccountAPI(c).SignIn(context.Background(), "me@kku.ac.th", "pw")
	require.NoError(t, err)
	require.Equal(t, "jwt", tok)
	require.Equal(t, "u1", id.ID)
	require.Equal(t, "A", id.DisplayName)
}

func TestAccountAPI_SignInBareAndMissingToken(t *testing.T) {
	t.Parallel()

	_, c := newFake(t, map[string]func(http.ResponseWriter){
		"POST /signin": ok(`{"token":"bare","email":"e@x.io"}`),
	})
	tok, _, err := NewAccountAPI(c).SignIn(context.Background(), "e@x.io", "pw")
	require.NoError(t, err)
	require.Equal(t, "bare", tok)

	_, c2 := newFake(t, map[string]func(http.ResponseWriter){
		"POST /signin": ok(`{"data":{"email":"e@x.io"}}`),
	})
	_, _, err = NewAccountAPI(c2).SignIn(context.Background(), "e@x.io", "pw")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestAccountAPI_ProfileAndUpdate(t *testing.T) {
	t.Parallel()

	fs, c := newFake(t, map[string]func(http.ResponseWriter){
		"GET /profile":   ok(`{"data":{"_id":"u1","email":"old@x.io"}}`),
		"PATCH /profile": ok(`{"data":{"_id":"u1","email":"new@x.io","username":"nu"}}`),
	})
	api := NewAccountAPI(c)
	id, err := api.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "old@x.io", id.Email)

	id, err = api.UpdateProfile(context.Background(), repository.ProfileUpdate{Username: "nu", Email: "new@x.io"})
	require.NoError(t, err)
	require.Equal(t, "nu", id.Username)
	require.Equal(t, map[string]string{"username": "nu", "email": "new@x.io"}, fs.hits[1].Body)
}

func TestClassAPI_MembersByYear(t *testing.T) {
	t.Parallel()

	_, c := newFake(t, map[string]func(http.ResponseWriter){
		"GET /class/2565": ok(`{"data":[{"_id":"m1","firstname":"A","email":"a@kku.ac.th"}]}`),
		"GET /class/2566": ok(`{"data":null}`),
	})
	api := NewClassAPI(c)
	ms, err := api.MembersByYear(context.Background(), "2565")
	require.NoError(t, err)
	require.Len(t, ms, 1)

	ms, err = api.MembersByYear(context.Background(), "2566")
	require.NoError(t, err)
	require.NotNil(t, ms)
	require.Empty(t, ms)
}
