// Package ownership answers "who wrote this" and "did I like this" questions
// over author references. Every function is pure and never fails.
package ownership

import (
	"strings"

	"github.com/and161185/classroom/internal/model"
)

// Unknown is shown when an author reference carries nothing displayable.
const Unknown = "Unknown"

// AuthorEmail extracts the email of ref. A raw reference is taken to be an email.
func AuthorEmail(ref model.AuthorRef) string {
	switch ref.Kind() {
	case model.AuthorRaw:
		s, _ := ref.Raw()
		return s
	case model.AuthorExpanded:
		p, _ := ref.Profile()
		return p.Email
	default:
		return ""
	}
}

// IsOwnedByViewer reports whether ref and viewerEmail name the same non-empty
// email, compared case-insensitively. Ambiguity yields false.
func IsOwnedByViewer(ref model.AuthorRef, viewerEmail string) bool {
	author := strings.ToLower(strings.TrimSpace(AuthorEmail(ref)))
	viewer := strings.ToLower(strings.TrimSpace(viewerEmail))
	return author != "" && viewer != "" && author == viewer
}

// ResolveDisplayName returns name, else email, else id, else Unknown.
func ResolveDisplayName(ref model.AuthorRef) string {
	switch ref.Kind() {
	case model.AuthorRaw:
		if s, _ := ref.Raw(); s != "" {
			return s
		}
	case model.AuthorExpanded:
		p, _ := ref.Profile()
		for _, v := range []string{p.Name, p.Email, p.ID} {
			if v != "" {
				return v
			}
		}
	}
	return Unknown
}

// HasViewerLiked trusts an explicit ViewerHasLiked flag, otherwise scans the
// likes for viewerEmail. An empty viewerEmail never matches.
func HasViewerLiked(st *model.Status, viewerEmail string) bool {
	if st == nil {
		return false
	}
	if st.ViewerHasLiked {
		return true
	}
	if strings.TrimSpace(viewerEmail) == "" {
		return false
	}
	for _, like := range st.Likes {
		if IsOwnedByViewer(like, viewerEmail) {
			return true
		}
	}
	return false
}
