// Package ui renders pipeline progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"minipack/internal/buildpipeline"
)

// maxRows bounds the module list; older rows scroll off.
const maxRows = 12

type progressModel struct {
	title      string
	events     <-chan buildpipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stage      buildpipeline.Stage
	stageLabel string
	failed     bool
	width      int
	done       bool
}

type fileItem struct {
	path   string
	status string
	copies int
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that lists modules as the
// graph discovers them and tracks the pipeline stage.
func NewProgressModel(title string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(buildpipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	switch {
	case m.failed:
		header = fmt.Sprintf("failed: %s", header)
	case m.done:
		header = fmt.Sprintf("done: %s", header)
	default:
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 10
	if nameWidth < 20 {
		nameWidth = 20
	}

	rows := m.items
	if len(rows) > maxRows {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("... %d more", len(rows)-maxRows)))
		rows = rows[len(rows)-maxRows:]
	}
	for _, item := range rows {
		name := truncate(item.path, nameWidth)
		if item.copies > 1 {
			name += dimStyle.Render(fmt.Sprintf(" x%d", item.copies))
		}
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", statusStyled, name)
	}

	b.WriteString("\n")
	if m.done && !m.failed {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == buildpipeline.StatusError {
			m.failed = true
		}
		if label := statusLabel(ev.Stage, ev.Status); label != "" {
			m.stage = ev.Stage
			m.stageLabel = label
		}
		return m.prog.SetPercent(progressFromStage(ev.Stage, ev.Status))
	}
	idx, ok := m.index[ev.File]
	if !ok {
		idx = len(m.items)
		m.index[ev.File] = idx
		m.items = append(m.items, fileItem{path: ev.File})
	}
	m.items[idx].copies++
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		m.items[idx].status = label
	}
	return nil
}

// progressFromStage maps the pipeline position onto the bar.
func progressFromStage(stage buildpipeline.Stage, status buildpipeline.Status) float64 {
	var start, end float64
	switch stage {
	case buildpipeline.StageGraph:
		start, end = 0, 0.7
	case buildpipeline.StageAnalyze:
		start, end = 0.7, 0.8
	case buildpipeline.StageEmit:
		start, end = 0.8, 0.95
	case buildpipeline.StageWrite:
		start, end = 0.95, 1
	default:
		return 0
	}
	if status == buildpipeline.StatusDone {
		return end
	}
	return start
}

func statusLabel(stage buildpipeline.Stage, status buildpipeline.Status) string {
	switch status {
	case buildpipeline.StatusQueued:
		return "queued"
	case buildpipeline.StatusDone:
		if stage == buildpipeline.StageGraph {
			return "loaded"
		}
		return "done"
	case buildpipeline.StatusError:
		return "error"
	case buildpipeline.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage buildpipeline.Stage) string {
	switch stage {
	case buildpipeline.StageGraph:
		return "resolving"
	case buildpipeline.StageAnalyze:
		return "analyzing"
	case buildpipeline.StageEmit:
		return "emitting"
	case buildpipeline.StageWrite:
		return "writing"
	default:
		return ""
	}
}

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done", "loaded":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "resolving", "analyzing", "emitting", "writing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
