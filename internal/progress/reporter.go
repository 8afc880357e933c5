package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/ananke/internal/scheduler"
	"github.com/felixgeelhaar/ananke/internal/task"
)

// Reporter prints one status line per component per phase and a final
// summary. It implements scheduler.Observer and scheduler.PhaseObserver.
type Reporter struct {
	console *Console
	// Verbose also prints a line when each task starts.
	Verbose bool
}

// NewReporter returns a reporter printing to console.
func NewReporter(console *Console) *Reporter {
	return &Reporter{console: console}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.console, format, args...)
}

// PhaseStarted prints the phase header.
func (r *Reporter) PhaseStarted(phase task.Phase, size int) {
	header := r.console.header().Render("==> " + string(phase))
	if size == 0 {
		r.printf("%s %s\n", header, r.console.style("8").Render("(nothing to do)"))
		return
	}
	r.printf("%s %s\n", header, r.console.style("8").Render(fmt.Sprintf("(%d component(s))", size)))
}

// PhaseFinished prints the phase tally once the barrier is reached.
func (r *Reporter) PhaseFinished(rep scheduler.Report) {
	if len(rep.Outcomes) == 0 {
		return
	}
	failed := len(rep.Failures())
	line := fmt.Sprintf("    %s: ✓ %d  ✗ %d  %s", rep.Phase, len(rep.Outcomes)-failed, failed, formatDuration(rep.Duration))
	r.printf("%s\n", r.console.style("8").Render(line))
}

// TaskStarted prints a start line in verbose mode.
func (r *Reporter) TaskStarted(t task.Task) {
	if !r.Verbose {
		return
	}
	r.printf("  ▶ %s %s\n", t.Component().Name(), r.console.style("8").Render(t.Describe()))
}

// TaskFinished prints the outcome of one component.
func (r *Reporter) TaskFinished(o scheduler.Outcome) {
	name := o.Component.Name()
	switch {
	case o.Interrupted():
		r.printf("  %s %s interrupted\n", r.console.style("3").Render("⊘"), name)
	case o.Failed():
		r.printf("  %s %s %s\n", r.console.style("1").Render("✗"), name, firstLine(o.Err.Error()))
	default:
		r.printf("  %s %s %s\n", r.console.style("2").Render("✓"), name,
			r.console.style("8").Render("("+formatDuration(o.Duration)+")"))
	}
}

// PrintSummary prints the final summary of a link run.
func (r *Reporter) PrintSummary(s *scheduler.Summary) {
	if s == nil {
		return
	}
	rule := strings.Repeat("═", 59)

	var b strings.Builder
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Link Summary")
	fmt.Fprintln(&b, rule)
	for _, rep := range s.Reports {
		failed := len(rep.Failures())
		fmt.Fprintf(&b, "%-16s %d ✓  %d ✗\n", string(rep.Phase)+":", len(rep.Outcomes)-failed, failed)
	}
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	fmt.Fprintf(&b, "%-16s %s\n", "Total Time:", formatDuration(end.Sub(s.StartTime)))
	fmt.Fprintln(&b, rule)

	if failures := s.Failures(); len(failures) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Failed components:")
		for _, o := range failures {
			fmt.Fprintf(&b, "  ✗ %s (%s) - %s\n", o.Component.Name(), o.Phase, firstLine(o.Err.Error()))
		}
	}
	r.printf("%s", b.String())
}

var (
	_ scheduler.Observer      = (*Reporter)(nil)
	_ scheduler.PhaseObserver = (*Reporter)(nil)
)

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	return fmt.Sprintf("%dm%ds", m, s)
}
