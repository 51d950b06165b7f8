package model

// AuthorKind discriminates the AuthorRef variants.
type AuthorKind uint8

const (
	// AuthorNone means the server sent no usable author.
	AuthorNone AuthorKind = iota
	// AuthorRaw is a bare identifier string (an email on most deployments).
	AuthorRaw
	// AuthorExpanded is an expanded profile record.
	AuthorExpanded
)

// AuthorProfile is the expanded author record. Every field may be empty.
type AuthorProfile struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}

// AuthorRef references the author of a status, comment or like.
// It is immutable; entities replace it wholesale on refetch.
type AuthorRef struct {
	kind    AuthorKind
	raw     string
	profile AuthorProfile
}

// RawAuthor wraps a bare identifier string.
func RawAuthor(s string) AuthorRef { return AuthorRef{kind: AuthorRaw, raw: s} }

// ExpandedAuthor wraps an expanded profile record.
func ExpandedAuthor(p AuthorProfile) AuthorRef { return AuthorRef{kind: AuthorExpanded, profile: p} }

// Kind returns the variant tag.
func (a AuthorRef) Kind() AuthorKind { return a.kind }

// Raw returns the identifier string of an AuthorRaw reference.
func (a AuthorRef) Raw() (string, bool) {
	if a.kind != AuthorRaw {
		return "", false
	}
	return a.raw, true
}

// Profile returns the record of an AuthorExpanded reference.
func (a AuthorRef) Profile() (AuthorProfile, bool) {
	if a.kind != AuthorExpanded {
		return AuthorProfile{}, false
	}
	return a.profile, true
}
