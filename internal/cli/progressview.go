package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/autorider/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// interactive reports whether stderr is a terminal.
func interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// =============================================================================
// Messages
// =============================================================================

type (
	stageMsg struct {
		title string
		total int
	}
	itemStartMsg struct{ name string }
	itemDoneMsg  struct {
		name string
		err  error
	}
	tickMsg time.Time
)

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// Model
// =============================================================================

// progressModel shows the running stage, its completion count and the
// items currently in flight.
type progressModel struct {
	title  string
	total  int
	done   int
	failed int
	active []string
	frame  int
	width  int
}

func (m progressModel) Init() tea.Cmd { return tick() }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stageMsg:
		m.title, m.total, m.done, m.failed, m.active = msg.title, msg.total, 0, 0, nil
	case itemStartMsg:
		m.active = append(m.active, msg.name)
	case itemDoneMsg:
		m.done++
		if msg.err != nil {
			m.failed++
		}
		for i, name := range m.active {
			if name == msg.name {
				m.active = append(m.active[:i], m.active[i+1:]...)
				break
			}
		}
	case tickMsg:
		m.frame++
		return m, tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.title == "" {
		return ""
	}
	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	line := fmt.Sprintf("%s %s %s",
		styleIconSpinner.Render(frame),
		m.title,
		StyleNumber.Render(fmt.Sprintf("%d/%d", m.done, m.total)))
	if m.failed > 0 {
		line += " " + StyleWarning.Render(fmt.Sprintf("(%d failed)", m.failed))
	}
	if len(m.active) > 0 {
		names := strings.Join(m.active, ", ")
		if m.width > 0 && len(names) > m.width/2 {
			names = names[:max(m.width/2-1, 0)] + "…"
		}
		line += " " + StyleDim.Render(names)
	}
	return line + "\n"
}

// =============================================================================
// Hook Adapters
// =============================================================================

// sender is the part of *tea.Program the hooks need.
type sender interface{ Send(tea.Msg) }

type scanProgress struct {
	observability.NoopScanHooks
	p sender
}

func (h scanProgress) OnQueued(_ context.Context, total int) {
	h.p.Send(stageMsg{title: "Scanning packages", total: total})
}

func (h scanProgress) OnScanStart(_ context.Context, name, _ string) {
	h.p.Send(itemStartMsg{name: name})
}

func (h scanProgress) OnScanComplete(_ context.Context, name, _ string, _ time.Duration, err error) {
	h.p.Send(itemDoneMsg{name: name, err: err})
}

type lookupProgress struct {
	observability.NoopLookupHooks
	p sender
}

func (h lookupProgress) OnQueued(_ context.Context, total int) {
	h.p.Send(stageMsg{title: "Resolving sonames", total: total})
}

func (h lookupProgress) OnLookupStart(_ context.Context, soname string) {
	h.p.Send(itemStartMsg{name: soname})
}

func (h lookupProgress) OnLookupComplete(_ context.Context, soname, _ string, _ time.Duration, err error) {
	h.p.Send(itemDoneMsg{name: soname, err: err})
}

// =============================================================================
// Progress View
// =============================================================================

// progressView runs the model on stderr until stop is called.
type progressView struct {
	program *tea.Program
	done    chan struct{}
}

// startProgressView starts the view and routes scan and lookup hooks to it.
// It returns nil when stderr is not a terminal.
func startProgressView() *progressView {
	if !interactive() {
		return nil
	}
	p := tea.NewProgram(progressModel{}, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	v := &progressView{program: p, done: make(chan struct{})}
	go func() {
		defer close(v.done)
		_, _ = p.Run()
	}()
	observability.SetScanHooks(scanProgress{p: p})
	observability.SetLookupHooks(lookupProgress{p: p})
	return v
}

// stop restores the no-op hooks and clears the view. Safe on a nil view.
func (v *progressView) stop() {
	if v == nil {
		return
	}
	observability.SetScanHooks(observability.NoopScanHooks{})
	observability.SetLookupHooks(observability.NoopLookupHooks{})
	v.program.Quit()
	<-v.done
}
