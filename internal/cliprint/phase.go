package cliprint

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/corpuslens/gitingest/internal/types"
)

// pipelinePhases lists the non-terminal job states in pipeline order, for
// rendering a checklist-style live view.
var pipelinePhases = []types.JobState{
	types.JobResolving,
	types.JobProvisioning,
	types.JobWalking,
	types.JobReading,
	types.JobAssembling,
}

var (
	phaseStyleActive = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	phaseStyleDone   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	phaseStyleFailed = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// phaseModel is a bubbletea model rendering the job state machine as a
// phase checklist.
type phaseModel struct {
	label   string
	current types.JobState
	failed  bool
}

func (m phaseModel) Init() tea.Cmd { return nil }

func (m phaseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case phaseTransitionMsg:
		m.current = msg.to
		if m.current.Terminal() {
			m.failed = m.current != types.JobDone
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m phaseModel) View() string {
	if m.current == types.JobDone {
		return phaseStyleDone.Render(fmt.Sprintf("✓ %s", m.label)) + "\n"
	}
	if m.failed {
		return phaseStyleFailed.Render(fmt.Sprintf("✗ %s (%s)", m.label, m.current)) + "\n"
	}
	out := phaseStyleActive.Render(m.label) + "\n"
	for _, phase := range pipelinePhases {
		marker := "  "
		if phase == m.current {
			marker = "▸ "
		}
		out += fmt.Sprintf("%s%s\n", marker, phase)
	}
	return out
}

type phaseTransitionMsg struct {
	to types.JobState
}

// LivePhaseView is a types.Observer that renders job transitions through a
// background bubbletea program. Use only when attached to a TTY.
type LivePhaseView struct {
	program *tea.Program
}

// NewLivePhaseView starts the live view for a job labeled by source.
func NewLivePhaseView(source string) *LivePhaseView {
	p := tea.NewProgram(phaseModel{label: "Ingesting " + source, current: types.JobCreated})
	go func() { _, _ = p.Run() }()
	return &LivePhaseView{program: p}
}

func (v *LivePhaseView) OnTransition(t types.Transition) {
	v.program.Send(phaseTransitionMsg{to: t.To})
	if t.To.Terminal() {
		// Allow the final frame to render before the caller exits.
		time.Sleep(100 * time.Millisecond)
	}
}

// TextPhaseObserver prints one status line per transition, for non-TTY
// normal mode.
type TextPhaseObserver struct {
	Printer *Printer
}

func (o *TextPhaseObserver) OnTransition(t types.Transition) {
	if o == nil || o.Printer == nil {
		return
	}
	if t.To == types.JobDone {
		o.Printer.ShowStatus("✓ done")
		return
	}
	o.Printer.ShowStatus(fmt.Sprintf("→ %s", t.To))
}

// NoOpObserver drops every transition (quiet/JSON modes, tests).
type NoOpObserver struct{}

func (NoOpObserver) OnTransition(types.Transition) {}
