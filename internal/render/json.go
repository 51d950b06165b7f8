package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/ownership"
)

// AuthorView is the JSON form of an author reference.
type AuthorView struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CommentView is the JSON form of a comment.
type CommentView struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Author    AuthorView `json:"author"`
	Owned     bool       `json:"owned"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// StatusView is the JSON form of a status as seen by the viewer.
type StatusView struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Author    AuthorView    `json:"author"`
	Owned     bool          `json:"owned"`
	LikeCount int           `json:"likeCount"`
	Liked     bool          `json:"liked"`
	Comments  []CommentView `json:"comments"`
	CreatedAt *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
}

func author(ref model.AuthorRef) AuthorView {
	return AuthorView{Name: ownership.ResolveDisplayName(ref), Email: ownership.AuthorEmail(ref)}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// NewStatusView projects st for viewerEmail.
func NewStatusView(st *model.Status, viewerEmail string) StatusView {
	v := StatusView{
		ID:        st.ID,
		Content:   st.Content,
		Author:    author(st.Author),
		Owned:     ownership.IsOwnedByViewer(st.Author, viewerEmail),
		LikeCount: st.EffectiveLikeCount(),
		Liked:     ownership.HasViewerLiked(st, viewerEmail),
		Comments:  make([]CommentView, 0, len(st.Comments)),
		CreatedAt: timePtr(st.CreatedAt),
		UpdatedAt: timePtr(st.UpdatedAt),
	}
	for _, c := range st.Comments {
		v.Comments = append(v.Comments, CommentView{
			ID:        c.ID,
			Content:   c.Content,
			Author:    author(c.Author),
			Owned:     ownership.IsOwnedByViewer(c.Author, viewerEmail),
			CreatedAt: timePtr(c.CreatedAt),
		})
	}
	return v
}

// StatusViews projects a list, preserving order.
func StatusViews(list []*model.Status, viewerEmail string) []StatusView {
	out := make([]StatusView, 0, len(list))
	for _, st := range list {
		out = append(out, NewStatusView(st, viewerEmail))
	}
	return out
}

// WriteJSON writes v indented.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
