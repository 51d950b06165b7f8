// Package probe tries alternative request shapes for endpoints whose server
// contract differs between deployments.
package probe

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/classroom/internal/metrics"
)

// Candidate is one request shape. Candidates are ordered from the most to the
// least expected contract.
type Candidate struct {
	Name string
	Call func(ctx context.Context) error
}

// Probe runs candidates in order until one succeeds.
type Probe struct {
	log *zap.Logger
	met *metrics.Metrics
}

// New constructs a Probe. Both arguments may be nil.
func New(log *zap.Logger, met *metrics.Metrics) *Probe {
	if log == nil {
		log = zap.NewNop()
	}
	return &Probe{log: log, met: met}
}

// Run invokes candidates strictly in order and returns nil on the first one
// that succeeds. When all fail it returns the last error only; earlier errors
// are logged at debug level and dropped. Context cancellation stops the walk.
func (p *Probe) Run(ctx context.Context, op string, candidates ...Candidate) error {
	if len(candidates) == 0 {
		return errors.New("probe: no candidates for " + op)
	}
	var last error
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.Call(ctx)
		if err == nil {
			p.met.ProbeAttempt(op, metrics.OutcomeOK)
			if i > 0 {
				p.log.Info("probe fallback succeeded",
					zap.String("op", op),
					zap.String("candidate", c.Name),
					zap.Int("attempt", i+1),
				)
			}
			return nil
		}
		p.met.ProbeAttempt(op, metrics.OutcomeFailed)
		p.log.Debug("probe candidate failed",
			zap.String("op", op),
			zap.String("candidate", c.Name),
			zap.Error(err),
		)
		last = err
	}
	return last
}
