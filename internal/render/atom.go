package render

import (
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/ownership"
)

// Atom serializes statuses as an Atom document. baseURL is used to build
// entry links; placeholders are skipped.
func Atom(statuses []*model.Status, title, baseURL string, now time.Time) (string, error) {
	base := strings.TrimRight(baseURL, "/")
	f := &feeds.Feed{
		Title:   title,
		Link:    &feeds.Link{Href: base + "/status"},
		Id:      base + "/status",
		Updated: now,
	}
	for _, st := range statuses {
		if model.IsTempID(st.ID) {
			continue
		}
		link := base + "/status/" + st.ID
		item := &feeds.Item{
			Id:          link,
			Title:       firstLine(st.Content, 60),
			Link:        &feeds.Link{Href: link},
			Description: st.Content,
			Author: &feeds.Author{
				Name:  ownership.ResolveDisplayName(st.Author),
				Email: ownership.AuthorEmail(st.Author),
			},
			Created: st.CreatedAt,
			Updated: st.UpdatedAt,
		}
		f.Items = append(f.Items, item)
		if st.CreatedAt.After(f.Updated) {
			f.Updated = st.CreatedAt
		}
	}
	return f.ToAtom()
}
