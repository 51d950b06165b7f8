package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/and161185/classroom/internal/convert"
	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/remote"
	"github.com/and161185/classroom/internal/repository"
)

// ErrNoToken is returned when /signin succeeds without issuing a token.
var ErrNoToken = errors.New("no token returned from /signin")

// AccountAPI implements ProfileRepository over the REST API.
type AccountAPI struct{ c remote.Caller }

// NewAccountAPI constructs the sign-in/profile adapter.
func NewAccountAPI(c remote.Caller) *AccountAPI { return &AccountAPI{c: c} }

// SignIn accepts both {data:{token,...}} and a bare {token,...} payload.
func (a *AccountAPI) SignIn(ctx context.Context, email, password string) (string, model.Identity, error) {
	body := map[string]string{"email": email, "password": password}
	var out convert.WireIdentity
	if err := a.c.Do(ctx, http.MethodPost, "/signin", body, &out); err != nil {
		return "", model.Identity{}, err
	}
	if out.Token == "" {
		return "", model.Identity{}, ErrNoToken
	}
	return out.Token, convert.Identity(out), nil
}

// Profile loads the identity behind the current session.
func (a *AccountAPI) Profile(ctx context.Context) (model.Identity, error) {
	var out convert.WireIdentity
	if err := a.c.Do(ctx, http.MethodGet, "/profile", nil, &out); err != nil {
		return model.Identity{}, err
	}
	return convert.Identity(out), nil
}

// UpdateProfile patches the editable fields.
func (a *AccountAPI) UpdateProfile(ctx context.Context, upd repository.ProfileUpdate) (model.Identity, error) {
	var out convert.WireIdentity
	if err := a.c.Do(ctx, http.MethodPatch, "/profile", upd, &out); err != nil {
		return model.Identity{}, err
	}
	return convert.Identity(out), nil
}

// ClassAPI implements ClassRepository over the REST API.
type ClassAPI struct{ c remote.Caller }

// NewClassAPI constructs the roster adapter.
func NewClassAPI(c remote.Caller) *ClassAPI { return &ClassAPI{c: c} }

// MembersByYear returns an empty slice when the server sends no data.
func (a *ClassAPI) MembersByYear(ctx context.Context, year string) ([]model.ClassMember, error) {
	var out []convert.WireClassMember
	if err := a.c.Do(ctx, http.MethodGet, "/class/"+url.PathEscape(year), nil, &out); err != nil {
		return nil, err
	}
	members := make([]model.ClassMember, 0, len(out))
	for _, m := range out {
		members = append(members, convert.ClassMember(m))
	}
	return members, nil
}
