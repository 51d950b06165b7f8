// Package repository defines the remote API surfaces implemented by concrete adapters.
package repository

import (
	"context"

	"github.com/and161185/classroom/internal/model"
)

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileRepository provides sign-in and profile access.
type ProfileRepository interface {
	// SignIn exchanges credentials for a bearer token and the signed-in identity.
	SignIn(ctx context.Context, email, password string) (token string, id model.Identity, err error)
	// Profile loads the identity behind the current session.
	Profile(ctx context.Context) (model.Identity, error)
	// UpdateProfile writes the editable fields and returns the stored identity.
	UpdateProfile(ctx context.Context, upd ProfileUpdate) (model.Identity, error)
}

// ClassRepository provides the class roster lookup.
type ClassRepository interface {
	// MembersByYear lists roster entries for a four-digit enrollment year.
	MembersByYear(ctx context.Context, year string) ([]model.ClassMember, error)
}
