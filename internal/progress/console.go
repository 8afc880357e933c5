package progress

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Console serialises writes from the reporter and every component's output
// stream onto one writer, one whole line at a time.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
	noColor  bool
}

// NewConsole returns a console writing to w. A nil w means os.Stdout.
func NewConsole(w io.Writer, noColor bool) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w, renderer: lipgloss.NewRenderer(w), noColor: noColor}
}

// Write writes p atomically with respect to other console writers.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Write(p)
}

func (c *Console) style(color string) lipgloss.Style {
	s := c.renderer.NewStyle()
	if c.noColor || color == "" {
		return s
	}
	return s.Foreground(lipgloss.Color(color))
}

func (c *Console) header() lipgloss.Style {
	if c.noColor {
		return c.renderer.NewStyle()
	}
	return c.style("99").Bold(true)
}

// Prefixed returns a writer that tags each line with [name].
func (c *Console) Prefixed(name string) *PrefixWriter {
	return &PrefixWriter{
		console: c,
		prefix:  c.style(prefixColor(name)).Render("[" + name + "]"),
		buffer:  make([]byte, 0, 4096),
	}
}

var prefixPalette = []string{"6", "5", "4", "3", "12", "13", "14", "11"}

func prefixColor(name string) string {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*31 + uint32(name[i])
	}
	return prefixPalette[h%uint32(len(prefixPalette))]
}

// PrefixWriter buffers partial lines and writes complete ones to the console
// with a prefix. A PrefixWriter must not be shared between processes.
type PrefixWriter struct {
	console *Console
	prefix  string
	mu      sync.Mutex
	buffer  []byte
}

// Write implements io.Writer
func (pw *PrefixWriter) Write(p []byte) (n int, err error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	n = len(p)
	pw.buffer = append(pw.buffer, p...)

	var out bytes.Buffer
	for {
		idx := bytes.IndexByte(pw.buffer, '\n')
		if idx == -1 {
			break
		}
		pw.writeLine(&out, bytes.TrimRight(pw.buffer[:idx], "\r"))
		pw.buffer = pw.buffer[idx+1:]
	}
	if out.Len() > 0 {
		_, err = pw.console.Write(out.Bytes())
	}
	return n, err
}

// Flush writes any remaining buffered content
func (pw *PrefixWriter) Flush() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if len(pw.buffer) == 0 {
		return nil
	}
	var out bytes.Buffer
	pw.writeLine(&out, pw.buffer)
	pw.buffer = pw.buffer[:0]
	_, err := pw.console.Write(out.Bytes())
	return err
}

func (pw *PrefixWriter) writeLine(out *bytes.Buffer, line []byte) {
	out.WriteString(pw.prefix)
	out.WriteByte(' ')
	out.Write(line)
	out.WriteByte('\n')
}
