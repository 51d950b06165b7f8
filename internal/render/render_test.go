package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/session"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixed(t *testing.T, theme session.Theme) (*Renderer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := New(&buf, theme)
	r.now = func() time.Time { return now }
	return r, &buf
}

func TestRelativeTime(t *testing.T) {
	t.Parallel()

	require.Empty(t, RelativeTime(time.Time{}, now))
	require.Equal(t, "5 minutes ago", RelativeTime(now.Add(-5*time.Minute), now))
	require.Equal(t, "2 hours ago", RelativeTime(now.Add(-2*time.Hour), now))
}

func TestFeed_Empty(t *testing.T) {
	t.Parallel()

	r, buf := fixed(t, session.ThemeDark)
	r.Feed(nil, "")
	require.Equal(t, "No posts yet.\n", buf.String())
}

func TestStatus_MarksOwnershipLikesAndComments(t *testing.T) {
	t.Parallel()

	n := 3
	st := &model.Status{
		ID:             "s1",
		Content:        "hello class",
		Author:         model.ExpandedAuthor(model.AuthorProfile{Name: "Ann", Email: "ann@kku.ac.th"}),
		LikeCount:      &n,
		ViewerHasLiked: true,
		CreatedAt:      now.Add(-10 * time.Minute),
		Comments: []model.Comment{
			{ID: "c1", Content: "nice", Author: model.RawAuthor("bob@kku.ac.th"), CreatedAt: now.Add(-time.Minute)},
		},
	}
	r, buf := fixed(t, session.ThemeLight)
	r.Status(st, "ANN@kku.ac.th")
	out := buf.String()

	require.Contains(t, out, "Ann · 10 minutes ago (yours)")
	require.Contains(t, out, "hello class")
	require.Contains(t, out, "♥ 3 · 1 comment · id s1")
	require.Contains(t, out, "└ bob@kku.ac.th: nice (1 minute ago) [c1]")
}

func TestFeed_PlaceholderAndUnknownAuthor(t *testing.T) {
	t.Parallel()

	r, buf := fixed(t, session.Theme("neon"))
	r.Feed([]*model.Status{
		{ID: model.NewTempID(), Content: "draft"},
		{ID: "s2", Content: "x", Comments: []model.Comment{{ID: "c"}, {ID: "d"}}},
	}, "")
	out := buf.String()
	require.Contains(t, out, "Unknown (sending)")
	require.Contains(t, out, "♡ 0 · 2 comments · id s2")
	require.NotContains(t, out, "└")
}

func TestMembersAndIdentity(t *testing.T) {
	t.Parallel()

	r, buf := fixed(t, session.ThemeLight)
	r.Members("2567", []model.ClassMember{{FirstName: "A", LastName: "B", Email: "a@kku.ac.th", Education: model.Education{StudentID: "653", Major: "CS"}}})
	r.Identity(model.Identity{ID: "u1", FirstName: "Somchai", Email: "s@kku.ac.th"})
	out := buf.String()
	require.Contains(t, out, "Class of 2567: 1 member")
	require.Contains(t, out, "A B 653 a@kku.ac.th · CS")
	require.Contains(t, out, "Somchai\nemail: s@kku.ac.th")
	require.NotContains(t, out, "username:")
}

func TestAtom(t *testing.T) {
	t.Parallel()

	doc, err := Atom([]*model.Status{
		{ID: "s1", Content: "first line\nsecond", Author: model.RawAuthor("ann@kku.ac.th"), CreatedAt: now.Add(-time.Hour)},
		{ID: model.NewTempID(), Content: "pending"},
	}, "Classroom feed", "https://api.example.com/", now.Add(-2*time.Hour))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(doc, "<?xml"))
	require.Contains(t, doc, "<title>Classroom feed</title>")
	require.Contains(t, doc, "https://api.example.com/status/s1")
	require.Contains(t, doc, "<title>first line</title>")
	require.Contains(t, doc, "ann@kku.ac.th")
	require.NotContains(t, doc, "pending")
}

func TestFirstLine(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", firstLine("  abc\ndef", 10))
	require.Equal(t, "abcd…", firstLine("abcdefgh", 5))
}

func TestStatusViews_JSON(t *testing.T) {
	t.Parallel()

	n := 2
	list := []*model.Status{{
		ID:        "s1",
		Content:   "hi",
		Author:    model.RawAuthor("me@kku.ac.th"),
		Likes:     []model.AuthorRef{model.RawAuthor("ME@kku.ac.th")},
		LikeCount: &n,
		Comments:  []model.Comment{{ID: "c1", Author: model.ExpandedAuthor(model.AuthorProfile{Name: "Bob"})}},
		CreatedAt: now,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, StatusViews(list, "me@kku.ac.th")))
	require.JSONEq(t, `[{
		"id":"s1","content":"hi",
		"author":{"name":"me@kku.ac.th","email":"me@kku.ac.th"},
		"owned":true,"likeCount":2,"liked":true,
		"comments":[{"id":"c1","content":"","author":{"name":"Bob"},"owned":false}],
		"createdAt":"2025-06-01T12:00:00Z"
	}]`, buf.String())
}
