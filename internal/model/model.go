// Package model defines domain entities used by services and repositories.
package model

import (
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// TempIDPrefix marks locally generated placeholder ids of optimistic entities.
const TempIDPrefix = "tmp-"

// NewTempID returns a fresh placeholder id that never collides with server ids.
func NewTempID() string {
	return TempIDPrefix + uuid.Must(uuid.NewV4()).String()
}

// IsTempID reports whether id was produced by NewTempID.
func IsTempID(id string) bool { return strings.HasPrefix(id, TempIDPrefix) }

// Identity is the authenticated user's profile as cached on the device.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Role        string `json:"role,omitempty"`
}

// Name returns the best human-readable name for the identity.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	if full := strings.TrimSpace(i.FirstName + " " + i.LastName); full != "" {
		return full
	}
	if i.Username != "" {
		return i.Username
	}
	return i.Email
}

// AsAuthor expands the identity into an author reference.
func (i Identity) AsAuthor() AuthorRef {
	return ExpandedAuthor(AuthorProfile{ID: i.ID, Name: i.Name(), Email: i.Email, AvatarURL: i.AvatarURL})
}

// Session is an issued bearer token with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the session carries a token that has not expired at now.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}

// ClassMember is a single roster entry for an enrollment year.
type ClassMember struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	ImageURL  string
	Role      string
	Type      string
	Confirmed bool
	Education Education
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name.
func (m ClassMember) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// Education holds the academic part of a roster entry.
type Education struct {
	Major          string
	EnrollmentYear string
	StudentID      string
	SchoolName     string
	AdvisorName    string
	AdvisorEmail   string
}
