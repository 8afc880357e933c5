package scheduler

import (
	"context"
	"time"

	"github.com/felixgeelhaar/ananke/internal/component"
	"github.com/felixgeelhaar/ananke/internal/errors"
	"github.com/felixgeelhaar/ananke/internal/task"
	"github.com/felixgeelhaar/ananke/internal/telemetry"
)

// PhaseObserver is told when a phase begins and when its barrier is reached.
type PhaseObserver interface {
	PhaseStarted(phase task.Phase, size int)
	PhaseFinished(r Report)
}

// Pipeline runs fetch, install and run in order, each behind a barrier.
type Pipeline struct {
	Builder   *task.Builder
	Scheduler *Scheduler
	// KeepGoing lets components that succeeded continue after a phase in
	// which others failed. Failed components never advance.
	KeepGoing bool
	Observer  PhaseObserver
	// SkipRun stops after the install phase.
	SkipRun bool
}

// Summary holds the report of every phase that ran.
type Summary struct {
	Reports   []Report
	StartTime time.Time
	EndTime   time.Time
}

// Failures returns every failed outcome across phases.
func (s *Summary) Failures() []Outcome {
	var failed []Outcome
	for _, r := range s.Reports {
		failed = append(failed, r.Failures()...)
	}
	return failed
}

// Report returns the report of phase, if it ran.
func (s *Summary) Report(phase task.Phase) (Report, bool) {
	for _, r := range s.Reports {
		if r.Phase == phase {
			return r, true
		}
	}
	return Report{}, false
}

// Execute runs the phases over set. It returns a PHASE-001 error when a
// phase had failures and KeepGoing is off, and a TASK-001 error when any
// component failed with KeepGoing on. Cancellation is returned as ctx.Err().
func (p *Pipeline) Execute(ctx context.Context, set component.Set) (*Summary, error) {
	summary := &Summary{StartTime: time.Now()}
	defer func() { summary.EndTime = time.Now() }()

	remaining := set
	for _, phase := range task.Phases {
		if phase == task.PhaseRun && p.SkipRun {
			break
		}
		if len(remaining) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		report := p.runPhase(ctx, phase, remaining)
		summary.Reports = append(summary.Reports, report)

		if err := ctx.Err(); err != nil {
			return summary, err
		}

		failed := report.FailedNames()
		if len(failed) == 0 {
			continue
		}
		if !p.KeepGoing {
			return summary, errors.NewPhaseFailedError(string(phase), failed)
		}

		excluded := make(map[string]bool, len(failed))
		for _, name := range failed {
			excluded[name] = true
		}
		remaining = remaining.Without(excluded)
	}

	if failures := summary.Failures(); len(failures) > 0 {
		first := failures[0]
		return summary, errors.NewTaskFailure(string(first.Phase), first.Component.Name(), first.Err).
			WithSuggestion("See the per-component status lines above for every failure")
	}
	return summary, nil
}

func (p *Pipeline) runPhase(ctx context.Context, phase task.Phase, set component.Set) Report {
	var (
		group    task.Group
		failures []task.ProbeFailure
	)
	switch phase {
	case task.PhaseFetch:
		group = p.Builder.FetchGroup(set)
	case task.PhaseInstall:
		group, failures = p.Builder.InstallGroup(set)
	case task.PhaseRun:
		group = p.Builder.RunGroup(set)
	}

	if p.Observer != nil {
		p.Observer.PhaseStarted(phase, group.Len())
	}

	ctx, span := telemetry.StartPhaseSpan(ctx, string(phase), group.Len())
	report := p.Scheduler.Run(ctx, group)
	for _, f := range failures {
		o := Outcome{
			Component: f.Component,
			Phase:     phase,
			Err:       errors.NewTaskFailure(string(phase), f.Component.Name(), f.Err),
		}
		report.Outcomes = append(report.Outcomes, o)
		if p.Scheduler.Observer != nil {
			p.Scheduler.Observer.TaskFinished(o)
		}
	}

	var phaseErr error
	if failed := report.FailedNames(); len(failed) > 0 {
		phaseErr = errors.NewPhaseFailedError(string(phase), failed)
	}
	telemetry.End(span, phaseErr)

	if p.Observer != nil {
		p.Observer.PhaseFinished(report)
	}
	return report
}
