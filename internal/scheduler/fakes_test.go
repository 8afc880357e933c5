package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/felixgeelhaar/ananke/internal/fsprobe"
	"github.com/felixgeelhaar/ananke/internal/log"
	"github.com/felixgeelhaar/ananke/internal/task"
)

// event is one operation performed by the scripted toolchain.
type event struct {
	op        string
	component string
	start     time.Time
	end       time.Time
}

// scriptedToolchain implements task.VCS and task.PackageManager for every
// component. Operations sleep for delays[component] and fail with
// failures[op+" "+component].
type scriptedToolchain struct {
	fs       afero.Fs
	delays   map[string]time.Duration
	failures map[string]error
	block    map[string]bool

	mu     sync.Mutex
	events []event

	running    atomic.Int32
	maxRunning atomic.Int32
}

func newScripted() *scriptedToolchain {
	return &scriptedToolchain{
		fs:       afero.NewMemMapFs(),
		delays:   map[string]time.Duration{},
		failures: map[string]error{},
		block:    map[string]bool{},
	}
}

func (s *scriptedToolchain) env() *task.Env {
	return &task.Env{
		Toolchain:     s,
		Probe:         &fsprobe.Probe{Fs: s.fs, Root: "/work"},
		Workdir:       "/work",
		NewBranchName: func() string { return "ananke/dev/test" },
		Logger:        log.Discard(),
	}
}

func (s *scriptedToolchain) VCS(string) task.VCS                 { return s }
func (s *scriptedToolchain) Packages(string) task.PackageManager { return s }

func (s *scriptedToolchain) do(ctx context.Context, op, dir string) error {
	name := filepath.Base(dir)
	n := s.running.Add(1)
	for {
		m := s.maxRunning.Load()
		if n <= m || s.maxRunning.CompareAndSwap(m, n) {
			break
		}
	}
	defer s.running.Add(-1)

	ev := event{op: op, component: name, start: time.Now()}
	var err error
	if s.block[op+" "+name] {
		<-ctx.Done()
		err = ctx.Err()
	} else {
		select {
		case <-time.After(s.delays[name]):
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	ev.end = time.Now()

	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return s.failures[op+" "+name]
}

func (s *scriptedToolchain) eventsFor(op string) []event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event
	for _, e := range s.events {
		if e.op == op {
			out = append(out, e)
		}
	}
	return out
}

func (s *scriptedToolchain) Clone(ctx context.Context, _ string, dest string) error {
	if err := s.do(ctx, "clone", dest); err != nil {
		return err
	}
	return s.fs.MkdirAll(dest, 0o755)
}

func (s *scriptedToolchain) FetchAll(ctx context.Context, dir string) error {
	return s.do(ctx, "fetch", dir)
}

func (s *scriptedToolchain) Pull(ctx context.Context, dir string) error {
	return s.do(ctx, "pull", dir)
}

func (s *scriptedToolchain) CurrentRef(context.Context, string) (string, error) {
	return "current", nil
}

func (s *scriptedToolchain) ResolveCommit(context.Context, string, string) (string, error) {
	return "abc", nil
}

func (s *scriptedToolchain) Checkout(ctx context.Context, dir, _, _ string) error {
	return s.do(ctx, "checkout", dir)
}

func (s *scriptedToolchain) Install(ctx context.Context, dir string) error {
	if err := s.do(ctx, "install", dir); err != nil {
		return err
	}
	return s.fs.MkdirAll(filepath.Join(dir, task.DefaultDependencyDir), 0o755)
}

func (s *scriptedToolchain) Start(ctx context.Context, dir string) error {
	return s.do(ctx, "start", dir)
}

// recordingObserver collects observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished []Outcome
	phases   []string
}

func (r *recordingObserver) TaskStarted(t task.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, string(t.Phase())+" "+t.Component().Name())
}

func (r *recordingObserver) TaskFinished(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, o)
}

func (r *recordingObserver) PhaseStarted(phase task.Phase, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, "start "+string(phase))
}

func (r *recordingObserver) PhaseFinished(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, "done "+string(rep.Phase))
}
