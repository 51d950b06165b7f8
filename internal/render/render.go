// Package render prints feed, profile and roster views for the terminal and
// exports the feed as Atom.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/ownership"
	"github.com/and161185/classroom/internal/session"
)

type palette struct {
	accent, dim, text, like, warn string
}

var palettes = map[session.Theme]palette{
	session.ThemeLight: {accent: "#1D4ED8", dim: "#6B7280", text: "#111827", like: "#DC2626", warn: "#B45309"},
	session.ThemeDark:  {accent: "#93C5FD", dim: "#9CA3AF", text: "#F9FAFB", like: "#F87171", warn: "#FBBF24"},
}

type styles struct {
	author, time, content, meta, like, badge, warn lipgloss.Style
}

// Renderer writes themed views to w.
type Renderer struct {
	w   io.Writer
	st  styles
	now func() time.Time
}

// New builds a renderer for w. Unknown themes fall back to light.
func New(w io.Writer, theme session.Theme) *Renderer {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[session.ThemeLight]
	}
	lg := lipgloss.NewRenderer(w)
	return &Renderer{
		w: w,
		st: styles{
			author:  lg.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),
			time:    lg.NewStyle().Foreground(lipgloss.Color(p.dim)),
			content: lg.NewStyle().Foreground(lipgloss.Color(p.text)),
			meta:    lg.NewStyle().Foreground(lipgloss.Color(p.dim)),
			like:    lg.NewStyle().Foreground(lipgloss.Color(p.like)),
			badge:   lg.NewStyle().Italic(true).Foreground(lipgloss.Color(p.accent)),
			warn:    lg.NewStyle().Foreground(lipgloss.Color(p.warn)),
		},
		now: time.Now,
	}
}

// RelativeTime formats t relative to now, or "" for the zero time.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Feed prints every status, newest first as given.
func (r *Renderer) Feed(statuses []*model.Status, viewerEmail string) {
	if len(statuses) == 0 {
		fmt.Fprintln(r.w, r.st.meta.Render("No posts yet."))
		return
	}
	for i, st := range statuses {
		if i > 0 {
			fmt.Fprintln(r.w)
		}
		r.status(st, viewerEmail, false)
	}
}

// Status prints one status with all of its comments.
func (r *Renderer) Status(st *model.Status, viewerEmail string) {
	r.status(st, viewerEmail, true)
}

func (r *Renderer) status(st *model.Status, viewerEmail string, withComments bool) {
	now := r.now()
	head := r.st.author.Render(ownership.ResolveDisplayName(st.Author))
	if rel := RelativeTime(st.CreatedAt, now); rel != "" {
		head += " " + r.st.time.Render("· "+rel)
	}
	if ownership.IsOwnedByViewer(st.Author, viewerEmail) {
		head += " " + r.st.badge.Render("(yours)")
	}
	if model.IsTempID(st.ID) {
		head += " " + r.st.warn.Render("(sending)")
	}
	fmt.Fprintln(r.w, head)
	fmt.Fprintln(r.w, r.st.content.Render(st.Content))

	heart := "♡"
	if ownership.HasViewerLiked(st, viewerEmail) {
		heart = "♥"
	}
	meta := fmt.Sprintf("%s %d", r.st.like.Render(heart), st.EffectiveLikeCount())
	meta += r.st.meta.Render(fmt.Sprintf(" · %s · id %s", plural(len(st.Comments), "comment"), st.ID))
	fmt.Fprintln(r.w, meta)

	if !withComments {
		return
	}
	for _, c := range st.Comments {
		line := "  └ " + r.st.author.Render(ownership.ResolveDisplayName(c.Author)) + ": " + r.st.content.Render(c.Content)
		if rel := RelativeTime(c.CreatedAt, now); rel != "" {
			line += " " + r.st.time.Render("("+rel+")")
		}
		line += r.st.meta.Render(" [" + c.ID + "]")
		fmt.Fprintln(r.w, line)
	}
}

// Identity prints the signed-in profile.
func (r *Renderer) Identity(id model.Identity) {
	fmt.Fprintln(r.w, r.st.author.Render(id.Name()))
	for _, kv := range [][2]string{
		{"email", id.Email},
		{"username", id.Username},
		{"role", id.Role},
		{"id", id.ID},
	} {
		if kv[1] != "" {
			fmt.Fprintln(r.w, r.st.meta.Render(kv[0]+": ")+kv[1])
		}
	}
}

// Members prints a roster.
func (r *Renderer) Members(year string, members []model.ClassMember) {
	fmt.Fprintln(r.w, r.st.meta.Render(fmt.Sprintf("Class of %s: %s", year, plural(len(members), "member"))))
	for _, m := range members {
		line := r.st.author.Render(m.FullName())
		if m.Education.StudentID != "" {
			line += " " + r.st.time.Render(m.Education.StudentID)
		}
		line += " " + m.Email
		if m.Education.Major != "" {
			line += r.st.meta.Render(" · " + m.Education.Major)
		}
		fmt.Fprintln(r.w, line)
	}
}

// Error prints the user-facing text of an error.
func (r *Renderer) Error(msg string) {
	fmt.Fprintln(r.w, r.st.warn.Render(msg))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

// firstLine returns the first line of s cut to n runes.
func firstLine(s string, n int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	rs := []rune(s)
	if len(rs) > n {
		return string(rs[:n-1]) + "…"
	}
	return s
}
