package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/classroom/internal/metrics"
)

type recorder struct{ calls []string }

func (r *recorder) cand(name string, err error) Candidate {
	return Candidate{Name: name, Call: func(context.Context) error {
		r.calls = append(r.calls, name)
		return err
	}}
}

func TestRun_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := New(zaptest.NewLogger(t), metrics.New())
	err := p.Run(context.Background(), "unlike",
		rec.cand("a", errors.New("e1")),
		rec.cand("b", errors.New("e2")),
		rec.cand("c", nil),
	)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, rec.calls)
}

func TestRun_StopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	err := New(nil, nil).Run(context.Background(), "delete",
		rec.cand("a", nil),
		rec.cand("b", nil),
	)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, rec.calls)
}

func TestRun_AllFailReturnsLastError(t *testing.T) {
	t.Parallel()

	e1, e2, e3 := errors.New("first"), errors.New("second"), errors.New("third")
	rec := &recorder{}
	err := New(nil, nil).Run(context.Background(), "unlike",
		rec.cand("a", e1),
		rec.cand("b", e2),
		rec.cand("c", e3),
	)
	require.ErrorIs(t, err, e3)
	require.NotErrorIs(t, err, e1)
	require.Equal(t, []string{"a", "b", "c"}, rec.calls)
}

func TestRun_NoCandidates(t *testing.T) {
	t.Parallel()
	require.Error(t, New(nil, nil).Run(context.Background(), "x"))
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	first := Candidate{Name: "a", Call: func(context.Context) error {
		rec.calls = append(rec.calls, "a")
		cancel()
		return errors.New("e1")
	}}
	err := New(nil, nil).Run(ctx, "x", first, rec.cand("b", nil))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"a"}, rec.calls)
}
