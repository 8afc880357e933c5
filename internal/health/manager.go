package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Check is the named result of one checker.
type Check struct {
	Name   string  `json:"name" yaml:"name"`
	Result *Result `json:"result" yaml:"result"`
}

// Manager runs checks in parallel, each under its own timeout.
type Manager struct {
	checkers []Checker
	timeout  time.Duration
}

// NewManager creates a new health check manager with default 5-second timeout.
func NewManager(checkers ...Checker) *Manager {
	return &Manager{checkers: checkers, timeout: 5 * time.Second}
}

// WithTimeout sets a custom timeout for health checks.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.timeout = timeout
	return m
}

// Check runs every checker and returns the results in registration order.
func (m *Manager) Check(ctx context.Context) []Check {
	checks := make([]Check, len(m.checkers))

	var eg errgroup.Group
	for i, c := range m.checkers {
		eg.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			start := time.Now()
			result := c.Check(checkCtx)
			if result.Latency == 0 {
				result.Latency = time.Since(start)
			}
			checks[i] = Check{Name: c.Name(), Result: result}
			return nil
		})
	}
	_ = eg.Wait()
	return checks
}

// OverallStatus is the worst status among checks.
func OverallStatus(checks []Check) Status {
	overall := StatusHealthy
	for _, c := range checks {
		switch c.Result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}
