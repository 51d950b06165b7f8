package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/repository"
)

type fakeClass struct {
	members []model.ClassMember
	err     error
	years   []string
}

var _ repository.ClassRepository = (*fakeClass)(nil)

func (f *fakeClass) MembersByYear(_ context.Context, year string) ([]model.ClassMember, error) {
	f.years = append(f.years, year)
	return f.members, f.err
}

func TestClass_MembersByYear_Validation(t *testing.T) {
	t.Parallel()

	repo := &fakeClass{}
	s := NewClassService(repo)
	for _, y := range []string{"", "67", "25670", "abcd", "２５６７"} {
		_, err := s.MembersByYear(context.Background(), y)
		var ve *errs.ValidationError
		require.ErrorAs(t, err, &ve, "year %q", y)
	}
	require.Empty(t, repo.years)

	repo.members = []model.ClassMember{{ID: "m1"}}
	got, err := s.MembersByYear(context.Background(), " 2567 ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []string{"2567"}, repo.years)

	repo.err = errors.New("down")
	_, err = s.MembersByYear(context.Background(), "2567")
	require.EqualError(t, err, "down")
}

func TestFilterMembers(t *testing.T) {
	t.Parallel()

	ms := []model.ClassMember{
		{ID: "1", FirstName: "Somchai", LastName: "Dee", Email: "somchai@kku.ac.th", Education: model.Education{StudentID: "653380001-1"}},
		{ID: "2", FirstName: "Malee", LastName: "Suk", Email: "malee@kku.ac.th", Education: model.Education{StudentID: "653380002-2"}},
	}
	ids := func(in []model.ClassMember) []string {
		out := []string{}
		for _, m := range in {
			out = append(out, m.ID)
		}
		return out
	}

	require.Equal(t, []string{"1", "2"}, ids(FilterMembers(ms, "  ")))
	require.Equal(t, []string{"1"}, ids(FilterMembers(ms, "CHAI d")))
	require.Equal(t, []string{"2"}, ids(FilterMembers(ms, "MALEE@")))
	require.Equal(t, []string{"2"}, ids(FilterMembers(ms, "002")))
	require.Empty(t, FilterMembers(ms, "zzz"))
}
