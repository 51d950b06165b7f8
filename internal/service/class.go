package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/repository"
)

var yearRe = regexp.MustCompile(`^\d{4}$`)

// ClassService looks up the class roster.
type ClassService struct {
	repo repository.ClassRepository
}

// NewClassService constructs ClassService.
func NewClassService(repo repository.ClassRepository) *ClassService {
	return &ClassService{repo: repo}
}

// MembersByYear lists roster entries for a four-digit enrollment year.
func (s *ClassService) MembersByYear(ctx context.Context, year string) ([]model.ClassMember, error) {
	year = strings.TrimSpace(year)
	if !yearRe.MatchString(year) {
		return nil, errs.Invalid("year", "must be four digits, e.g. 2567")
	}
	return s.repo.MembersByYear(ctx, year)
}

// FilterMembers keeps members whose name, email or student id contains
// query, case-insensitively. An empty query keeps everything.
func FilterMembers(members []model.ClassMember, query string) []model.ClassMember {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return members
	}
	out := make([]model.ClassMember, 0, len(members))
	for _, m := range members {
		name := strings.ToLower(m.FirstName + " " + m.LastName)
		if strings.Contains(name, q) ||
			strings.Contains(strings.ToLower(m.Email), q) ||
			strings.Contains(strings.ToLower(m.Education.StudentID), q) {
			out = append(out, m)
		}
	}
	return out
}
