package hud

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const defaultStatusLines = 8

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	lineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("6")).Padding(0, 1)
)

// StatusFeed keeps the most recent own-mod status lines for local display.
// They never enter the shared chat.
type StatusFeed struct {
	mu     sync.Mutex
	title  string
	lines  []string
	max    int
	notify func(string)
}

func NewStatusFeed(title string, max int) *StatusFeed {
	if max <= 0 {
		max = defaultStatusLines
	}
	return &StatusFeed{title: title, max: max}
}

// OnPush sets a callback run for each new line, outside the feed lock
func (f *StatusFeed) OnPush(fn func(string)) {
	f.mu.Lock()
	f.notify = fn
	f.mu.Unlock()
}

func (f *StatusFeed) Push(text string) {
	f.mu.Lock()
	f.lines = append(f.lines, text)
	if len(f.lines) > f.max {
		f.lines = f.lines[len(f.lines)-f.max:]
	}
	fn := f.notify
	f.mu.Unlock()

	if fn != nil {
		fn(text)
	}
}

func (f *StatusFeed) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

// Render draws the feed as a bordered panel
func (f *StatusFeed) Render() string {
	lines := f.Lines()
	rows := make([]string, 0, len(lines)+1)
	rows = append(rows, titleStyle.Render("["+f.title+"]"))
	for _, l := range lines {
		rows = append(rows, lineStyle.Render(l))
	}
	return boxStyle.Render(strings.Join(rows, "\n"))
}

// RenderLine formats a single status line for a terminal
func (f *StatusFeed) RenderLine(text string) string {
	return titleStyle.Render("["+f.title+"]") + " " + lineStyle.Render(text)
}
