package repository

import (
	"context"

	"github.com/and161185/classroom/internal/model"
)

// StatusRepository is the remote status/comment/like API.
type StatusRepository interface {
	// List returns the newest-first page of statuses.
	List(ctx context.Context) ([]*model.Status, error)
	// Get returns a single status by ID.
	Get(ctx context.Context, id string) (*model.Status, error)
	// Create publishes a new status. The created entity is not returned.
	Create(ctx context.Context, content string) error
	// Delete removes a status owned by the viewer.
	Delete(ctx context.Context, id string) error
	// Like adds the viewer's like to a status.
	Like(ctx context.Context, statusID string) error
	// Unlike removes the viewer's like from a status.
	Unlike(ctx context.Context, statusID string) error
	// AddComment appends a comment to a status.
	AddComment(ctx context.Context, statusID, content string) error
	// DeleteComment removes a comment owned by the viewer.
	DeleteComment(ctx context.Context, commentID, statusID string) error
}
