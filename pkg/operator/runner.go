// Package operator runs the controller manager under leader election.
package operator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// ReleaseTimeout bounds lease deletion on shutdown.
const ReleaseTimeout = 5 * time.Second

var (
	errLeadershipLost = errors.New("leadership lost")
	errStoppedEarly   = errors.New("manager stopped while still leading")
)

// Elector is the leadership capability the runner needs.
type Elector interface {
	Enabled() bool
	ReleaseOnShutdown() bool
	ClaimLeadershipLoop(ctx context.Context) error
	RefreshLeadershipLoop(ctx context.Context) error
	Release(ctx context.Context) error
}

// Runner starts the operator once leadership is held. Start is called once
// per leadership term and must build fresh state every time.
type Runner struct {
	Elector Elector
	Start   func(ctx context.Context) error
	Logger  logr.Logger
}

// Run blocks until ctx ends or Start fails. Losing leadership ends the current
// term and the runner goes back to claiming.
func (runner *Runner) Run(ctx context.Context) error {
	if runner.Elector == nil || !runner.Elector.Enabled() {
		runner.Logger.Info("leader election disabled, starting")
		return runner.Start(ctx)
	}

	if runner.Elector.ReleaseOnShutdown() {
		defer runner.release()
	}

	for term := 1; ; term++ {
		if err := runner.Elector.ClaimLeadershipLoop(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("claim leadership: %w", err)
		}

		runner.Logger.Info("leading", "term", term)
		err := runner.lead(ctx)
		switch {
		case ctx.Err() != nil:
			runner.Logger.Info("shutting down", "term", term)
			return nil
		case errors.Is(err, errLeadershipLost):
			runner.Logger.Error(err, "stepping down", "term", term)
		default:
			return err
		}
	}
}

func (runner *Runner) lead(ctx context.Context) error {
	group, termCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := runner.Start(termCtx)
		if err == nil && termCtx.Err() == nil {
			return errStoppedEarly
		}
		return err
	})
	group.Go(func() error {
		if err := runner.Elector.RefreshLeadershipLoop(termCtx); err != nil {
			return fmt.Errorf("%w: %w", errLeadershipLost, err)
		}
		return nil
	})
	return group.Wait()
}

func (runner *Runner) release() {
	ctx, cancel := context.WithTimeout(context.Background(), ReleaseTimeout)
	defer cancel()
	if err := runner.Elector.Release(ctx); err != nil {
		runner.Logger.Error(err, "release lease")
	}
}
