package scheduler

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/felixgeelhaar/ananke/internal/component"
	"github.com/felixgeelhaar/ananke/internal/task"
)

// Outcome is the result of one task.
type Outcome struct {
	Component component.Descriptor
	Phase     task.Phase
	Err       error
	Duration  time.Duration
}

// Failed reports whether the task returned an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Interrupted reports whether the task ended because the run was cancelled.
func (o Outcome) Interrupted() bool {
	return stderrors.Is(o.Err, context.Canceled)
}

// Report aggregates the outcomes of one group, in group order.
type Report struct {
	Phase    task.Phase
	Outcomes []Outcome
	Duration time.Duration
}

// Failures returns the failed outcomes.
func (r Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// OK reports whether every task succeeded.
func (r Report) OK() bool {
	return len(r.Failures()) == 0
}

// FailedNames returns the names of failed components.
func (r Report) FailedNames() []string {
	var names []string
	for _, o := range r.Failures() {
		names = append(names, o.Component.Name())
	}
	return names
}
