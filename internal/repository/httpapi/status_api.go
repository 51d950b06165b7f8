// Package httpapi contains REST implementations of repository interfaces.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/and161185/classroom/internal/convert"
	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/probe"
	"github.com/and161185/classroom/internal/remote"
)

// StatusAPI implements StatusRepository over the REST API.
type StatusAPI struct {
	c     remote.Caller
	probe *probe.Probe
}

// NewStatusAPI constructs a status API adapter. p may be nil.
func NewStatusAPI(c remote.Caller, p *probe.Probe) *StatusAPI {
	if p == nil {
		p = probe.New(nil, nil)
	}
	return &StatusAPI{c: c, probe: p}
}

type statusRef struct {
	StatusID string `json:"statusId"`
}

type idRef struct {
	ID       string `json:"id"`
	StatusID string `json:"statusId,omitempty"`
}

// List returns the server's page verbatim.
func (a *StatusAPI) List(ctx context.Context) ([]*model.Status, error) {
	var out []convert.WireStatus
	if err := a.c.Do(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return convert.Statuses(out), nil
}

// Get returns a single status by id.
func (a *StatusAPI) Get(ctx context.Context, id string) (*model.Status, error) {
	var out *convert.WireStatus
	if err := a.c.Do(ctx, http.MethodGet, "/status/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("status " + id + ": empty payload")
	}
	return convert.Status(*out), nil
}

// Create publishes a status; the response body is ignored.
func (a *StatusAPI) Create(ctx context.Context, content string) error {
	return a.c.Do(ctx, http.MethodPost, "/status", map[string]string{"content": content}, nil)
}

// Delete probes the known delete shapes, most RESTful first.
func (a *StatusAPI) Delete(ctx context.Context, id string) error {
	esc := url.PathEscape(id)
	q := url.QueryEscape(id)
	return a.probe.Run(ctx, "delete_status",
		a.call("DELETE /status/{id}", http.MethodDelete, "/status/"+esc, nil),
		a.call("DELETE /status?id=", http.MethodDelete, "/status?id="+q, nil),
		a.call("POST /status/delete", http.MethodPost, "/status/delete", idRef{ID: id}),
		a.call("DELETE /status", http.MethodDelete, "/status", idRef{ID: id}),
	)
}

// Like uses the single stable like endpoint.
func (a *StatusAPI) Like(ctx context.Context, statusID string) error {
	return a.c.Do(ctx, http.MethodPost, "/like", statusRef{StatusID: statusID}, nil)
}

// Unlike probes the known unlike shapes.
func (a *StatusAPI) Unlike(ctx context.Context, statusID string) error {
	body := statusRef{StatusID: statusID}
	return a.probe.Run(ctx, "unlike",
		a.call("DELETE /like", http.MethodDelete, "/like", body),
		a.call("DELETE /unlike", http.MethodDelete, "/unlike", body),
		a.call("POST /unlike", http.MethodPost, "/unlike", body),
	)
}

// AddComment posts a comment on statusID.
func (a *StatusAPI) AddComment(ctx context.Context, statusID, content string) error {
	return a.c.Do(ctx, http.MethodPost, "/comment", map[string]string{"statusId": statusID, "content": content}, nil)
}

// DeleteComment probes the known comment delete shapes.
func (a *StatusAPI) DeleteComment(ctx context.Context, commentID, statusID string) error {
	ref := idRef{ID: commentID, StatusID: statusID}
	return a.probe.Run(ctx, "delete_comment",
		a.call("DELETE /comment/{id}", http.MethodDelete, "/comment/"+url.PathEscape(commentID), statusRef{StatusID: statusID}),
		a.call("DELETE /comment?id=", http.MethodDelete, "/comment?id="+url.QueryEscape(commentID), nil),
		a.call("DELETE /comment", http.MethodDelete, "/comment", ref),
		a.call("POST /comment/delete", http.MethodPost, "/comment/delete", ref),
	)
}

func (a *StatusAPI) call(name, method, path string, body any) probe.Candidate {
	return probe.Candidate{Name: name, Call: func(ctx context.Context) error {
		return a.c.Do(ctx, method, path, body, nil)
	}}
}
