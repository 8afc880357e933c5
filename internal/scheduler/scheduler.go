package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/ananke/internal/errors"
	"github.com/felixgeelhaar/ananke/internal/log"
	"github.com/felixgeelhaar/ananke/internal/task"
	"github.com/felixgeelhaar/ananke/internal/telemetry"
)

// State is the scheduler's position in the lifecycle of a group.
type State int

const (
	StateIdle State = iota
	StateRunningGroup
	StateBarrier
	StateDone
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunningGroup:
		return "running"
	case StateBarrier:
		return "barrier"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Observer is notified as tasks start and finish. Implementations must be
// safe for concurrent use.
type Observer interface {
	TaskStarted(t task.Task)
	TaskFinished(o Outcome)
}

// Scheduler runs one group at a time.
type Scheduler struct {
	Env *task.Env
	// MaxParallel caps concurrent fetch and install tasks; 0 means no cap.
	// Run tasks are long-lived and always start together.
	MaxParallel int
	Observer    Observer
	// OnStateChange is called on every state transition.
	OnStateChange func(phase task.Phase, s State)
	Logger        *log.Logger

	mu    sync.Mutex
	state State
}

// New returns an idle scheduler.
func New(env *task.Env, logger *log.Logger) *Scheduler {
	return &Scheduler{Env: env, Logger: logger}
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) transition(phase task.Phase, to State) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
	if s.OnStateChange != nil {
		s.OnStateChange(phase, to)
	}
}

// Run executes every task of g concurrently and waits for all of them. It
// never returns before the last task has finished. A scheduler left Done by
// the previous group passes through Idle before the next one starts.
func (s *Scheduler) Run(ctx context.Context, g task.Group) Report {
	start := time.Now()
	report := Report{Phase: g.Phase, Outcomes: make([]Outcome, len(g.Tasks))}

	if s.State() != StateIdle {
		s.transition(g.Phase, StateIdle)
	}

	s.transition(g.Phase, StateRunningGroup)
	s.logger().DebugContext(ctx, "dispatching group", "phase", string(g.Phase), "tasks", g.Len())

	var eg errgroup.Group
	if s.MaxParallel > 0 && g.Phase != task.PhaseRun {
		eg.SetLimit(s.MaxParallel)
	}

	for i, t := range g.Tasks {
		eg.Go(func() error {
			report.Outcomes[i] = s.execute(ctx, t)
			return nil
		})
	}

	s.transition(g.Phase, StateBarrier)
	_ = eg.Wait()
	s.transition(g.Phase, StateDone)

	report.Duration = time.Since(start)
	return report
}

func (s *Scheduler) execute(ctx context.Context, t task.Task) (outcome Outcome) {
	d := t.Component()
	outcome = Outcome{Component: d, Phase: t.Phase()}
	start := time.Now()

	ctx, span := telemetry.StartTaskSpan(ctx, string(t.Phase()), d.Name(), d.Version(), d.Kind().String())

	if s.Observer != nil {
		s.Observer.TaskStarted(t)
	}
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = errors.NewTaskFailure(string(t.Phase()), d.Name(), fmt.Errorf("panic: %v", r))
		}
		outcome.Duration = time.Since(start)
		telemetry.End(span, outcome.Err)
		telemetry.RecordTask(ctx, string(t.Phase()), d.Kind().String(), outcome.Duration, outcome.Err)
		if outcome.Err != nil {
			s.logger().WithComponent(d.Name(), string(t.Phase())).WithError(outcome.Err).DebugContext(ctx, "task failed")
		}
		if s.Observer != nil {
			s.Observer.TaskFinished(outcome)
		}
	}()

	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return outcome
	}

	if err := t.Execute(ctx, s.Env); err != nil {
		if ctx.Err() != nil {
			outcome.Err = fmt.Errorf("%s %s: %w", t.Phase(), d.Name(), ctx.Err())
		} else {
			outcome.Err = errors.NewTaskFailure(string(t.Phase()), d.Name(), err)
		}
	}
	return outcome
}

func (s *Scheduler) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.DefaultLogger()
}
