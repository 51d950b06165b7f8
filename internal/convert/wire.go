// Package convert maps the REST API's JSON payloads to domain models.
package convert

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/and161185/classroom/internal/model"
)

// --- helpers ---

func ts(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- authors ---

// WireAuthor is the expanded form of createdBy and like entries.
type WireAuthor struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Author decodes a createdBy/like value: a JSON string or an object.
// Anything else (null, numbers, malformed) yields an empty reference.
func Author(raw json.RawMessage) model.AuthorRef {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return model.AuthorRef{}
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return model.AuthorRef{}
		}
		return model.RawAuthor(s)
	case '{':
		var w WireAuthor
		if json.Unmarshal(raw, &w) != nil {
			return model.AuthorRef{}
		}
		return model.ExpandedAuthor(model.AuthorProfile{ID: w.ID, Name: w.Name, Email: w.Email, AvatarURL: w.Image})
	}
	return model.AuthorRef{}
}

// --- statuses ---

// WireComment is a comment as sent by the server.
type WireComment struct {
	ID        string          `json:"_id"`
	Content   string          `json:"content"`
	CreatedBy json.RawMessage `json:"createdBy"`
	CreatedAt string          `json:"createdAt"`
}

// WireStatus is a status as sent by the server.
type WireStatus struct {
	ID        string            `json:"_id"`
	Content   string            `json:"content"`
	CreatedBy json.RawMessage   `json:"createdBy"`
	Like      []json.RawMessage `json:"like"`
	LikeCount *int              `json:"likeCount"`
	HasLiked  bool              `json:"hasLiked"`
	Comment   []WireComment     `json:"comment"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

// Comment converts a wire comment to the domain model.
func Comment(in WireComment) model.Comment {
	return model.Comment{
		ID:        in.ID,
		Content:   in.Content,
		Author:    Author(in.CreatedBy),
		CreatedAt: ts(in.CreatedAt),
	}
}

// Status converts a wire status to the domain model.
func Status(in WireStatus) *model.Status {
	out := &model.Status{
		ID:             in.ID,
		Content:        in.Content,
		Author:         Author(in.CreatedBy),
		LikeCount:      in.LikeCount,
		ViewerHasLiked: in.HasLiked,
		CreatedAt:      ts(in.CreatedAt),
		UpdatedAt:      ts(in.UpdatedAt),
	}
	if len(in.Like) > 0 {
		out.Likes = make([]model.AuthorRef, 0, len(in.Like))
		for _, l := range in.Like {
			out.Likes = append(out.Likes, Author(l))
		}
	}
	if len(in.Comment) > 0 {
		out.Comments = make([]model.Comment, 0, len(in.Comment))
		for _, c := range in.Comment {
			out.Comments = append(out.Comments, Comment(c))
		}
	}
	return out
}

// Statuses converts a page preserving server order.
func Statuses(in []WireStatus) []*model.Status {
	out := make([]*model.Status, 0, len(in))
	for _, s := range in {
		out = append(out, Status(s))
	}
	return out
}

// --- identity ---

// WireIdentity is a profile (or sign-in payload) as sent by the server.
type WireIdentity struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Role      string `json:"role"`
	Token     string `json:"token,omitempty"`
}

// Identity converts a wire profile to the domain model.
func Identity(in WireIdentity) model.Identity {
	id := model.Identity{
		ID:          in.ID,
		DisplayName: strings.TrimSpace(in.Name),
		Email:       in.Email,
		AvatarURL:   in.Image,
		Username:    in.Username,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Role:        in.Role,
	}
	id.DisplayName = id.Name()
	return id
}

// --- class roster ---

// WireClassMember is a roster entry as sent by the server.
type WireClassMember struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Image     string `json:"image"`
	Role      string `json:"role"`
	Type      string `json:"type"`
	Confirmed bool   `json:"confirmed"`
	Education *struct {
		Major          string `json:"major"`
		EnrollmentYear string `json:"enrollmentYear"`
		StudentID      string `json:"studentId"`
		School         *struct {
			Name string `json:"name"`
		} `json:"school"`
		Advisor *struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"advisor"`
	} `json:"education"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ClassMember converts a wire roster entry to the domain model.
func ClassMember(in WireClassMember) model.ClassMember {
	m := model.ClassMember{
		ID:        in.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		ImageURL:  in.Image,
		Role:      in.Role,
		Type:      in.Type,
		Confirmed: in.Confirmed,
		CreatedAt: ts(in.CreatedAt),
		UpdatedAt: ts(in.UpdatedAt),
	}
	if e := in.Education; e != nil {
		m.Education = model.Education{Major: e.Major, EnrollmentYear: e.EnrollmentYear, StudentID: e.StudentID}
		if e.School != nil {
			m.Education.SchoolName = e.School.Name
		}
		if e.Advisor != nil {
			m.Education.AdvisorName = e.Advisor.Name
			m.Education.AdvisorEmail = e.Advisor.Email
		}
	}
	return m
}
