package model

import "time"

// Comment is a reply attached to exactly one Status.
type Comment struct {
	ID        string
	Content   string
	Author    AuthorRef
	CreatedAt time.Time
}

// Status is a feed post with its likes and comments.
type Status struct {
	ID      string
	Content string
	Author  AuthorRef
	Likes   []AuthorRef
	// LikeCount is authoritative over len(Likes) when set.
	LikeCount      *int
	ViewerHasLiked bool
	Comments       []Comment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EffectiveLikeCount returns LikeCount when present, else len(Likes).
func (s *Status) EffectiveLikeCount() int {
	if s.LikeCount != nil {
		return *s.LikeCount
	}
	return len(s.Likes)
}

// Clone returns a deep copy safe to mutate without touching s.
func (s *Status) Clone() *Status {
	c := *s
	c.Likes = append([]AuthorRef(nil), s.Likes...)
	c.Comments = append([]Comment(nil), s.Comments...)
	if s.LikeCount != nil {
		n := *s.LikeCount
		c.LikeCount = &n
	}
	return &c
}
