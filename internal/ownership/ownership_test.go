package ownership

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/classroom/internal/model"
)

func TestIsOwnedByViewer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		ref    model.AuthorRef
		viewer string
		want   bool
	}{
		{"raw exact", model.RawAuthor("a@b.com"), "a@b.com", true},
		{"raw case-insensitive", model.RawAuthor("A@B.com"), "a@b.COM", true},
		{"expanded", model.ExpandedAuthor(model.AuthorProfile{Email: "me@kku.ac.th"}), "ME@kku.ac.th", true},
		{"different", model.RawAuthor("x@b.com"), "a@b.com", false},
		{"empty viewer", model.RawAuthor("a@b.com"), "", false},
		{"no email field", model.ExpandedAuthor(model.AuthorProfile{ID: "1", Name: "n"}), "a@b.com", false},
		{"none", model.AuthorRef{}, "a@b.com", false},
		{"both empty", model.RawAuthor(""), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsOwnedByViewer(tc.ref, tc.viewer))
		})
	}
}

func TestIsOwnedByViewer_SymmetricWithExtractedEmail(t *testing.T) {
	t.Parallel()

	emails := []string{"a@b.com", "A@b.com", "c@d.org", ""}
	refs := []model.AuthorRef{
		model.RawAuthor("a@b.com"),
		model.ExpandedAuthor(model.AuthorProfile{Email: "C@D.org"}),
		model.ExpandedAuthor(model.AuthorProfile{Name: "no email"}),
		{},
	}
	for _, ref := range refs {
		for _, e := range emails {
			extracted := strings.ToLower(AuthorEmail(ref))
			want := extracted != "" && extracted == strings.ToLower(e)
			require.Equal(t, want, IsOwnedByViewer(ref, e), "ref=%v email=%q", ref, e)
		}
	}
}

func TestResolveDisplayName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a@b.com", ResolveDisplayName(model.ExpandedAuthor(model.AuthorProfile{Email: "a@b.com"})))
	require.Equal(t, "Unknown", ResolveDisplayName(model.ExpandedAuthor(model.AuthorProfile{})))
	require.Equal(t, "Ann", ResolveDisplayName(model.ExpandedAuthor(model.AuthorProfile{Name: "Ann", Email: "a@b.com"})))
	require.Equal(t, "64ab", ResolveDisplayName(model.ExpandedAuthor(model.AuthorProfile{ID: "64ab"})))
	require.Equal(t, "raw-id", ResolveDisplayName(model.RawAuthor("raw-id")))
	require.Equal(t, "Unknown", ResolveDisplayName(model.RawAuthor("")))
	require.Equal(t, "Unknown", ResolveDisplayName(model.AuthorRef{}))
}

func TestHasViewerLiked(t *testing.T) {
	t.Parallel()

	require.False(t, HasViewerLiked(nil, "a@b.com"))
	require.True(t, HasViewerLiked(&model.Status{ViewerHasLiked: true}, ""))

	st := &model.Status{Likes: []model.AuthorRef{
		model.RawAuthor("someone@else.com"),
		model.ExpandedAuthor(model.AuthorProfile{Email: "Me@Kku.ac.th"}),
	}}
	require.True(t, HasViewerLiked(st, "me@kku.ac.th"))
	require.False(t, HasViewerLiked(st, ""))
	require.False(t, HasViewerLiked(st, "nobody@kku.ac.th"))
	require.True(t, HasViewerLiked(st, "SOMEONE@else.com"))
}
