package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"regionck/internal/driver"
)

type progressModel struct {
	title    string
	events   <-chan driver.Event
	spinner  spinner.Model
	prog     progress.Model
	files    []fileRow
	index    map[string]int
	finished int
	failed   int
	width    int
	done     bool
}

type fileRow struct {
	path    string
	label   string
	stage   driver.Stage
	settled bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows which scenario
// files are being loaded and checked. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	rows := make([]fileRow, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		rows[i] = fileRow{path: file, label: "queued"}
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		files:   rows,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.apply(driver.Event(msg))
		return m, tea.Batch(cmd, m.listen())
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
			m.prog.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.files) == 0 {
		return ""
	}
	header := fmt.Sprintf("%s %d/%d", m.title, m.finished, len(m.files))
	if m.failed > 0 {
		header += fmt.Sprintf(", %d failed", m.failed)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(header))
	b.WriteString("\n\n")

	const labelWidth = 10
	nameWidth := max(m.width-labelWidth-4, 20)
	for _, row := range m.files {
		label := labelStyle(row.label).Render(fmt.Sprintf("%*s", labelWidth, row.label))
		fmt.Fprintf(&b, "  %s %s\n", label, truncate(row.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	row := &m.files[idx]
	if row.settled {
		return nil
	}
	row.stage = ev.Stage
	row.label = rowLabel(ev)
	// ошибка загрузки тоже завершает файл
	if ev.Status == driver.StatusDone || ev.Status == driver.StatusError {
		row.settled = true
		m.finished++
		if ev.Status == driver.StatusError {
			m.failed++
		}
	}

	total := 0.0
	for _, r := range m.files {
		total += rowProgress(r)
	}
	return m.prog.SetPercent(total / float64(len(m.files)))
}

func rowProgress(r fileRow) float64 {
	switch {
	case r.settled:
		return 1
	case r.stage == driver.StageCheck:
		return 0.5
	case r.label == "loading":
		return 0.1
	default:
		return 0
	}
}

func rowLabel(ev driver.Event) string {
	switch ev.Status {
	case driver.StatusQueued:
		return "queued"
	case driver.StatusWorking:
		if ev.Stage == driver.StageCheck {
			return "checking"
		}
		return "loading"
	case driver.StatusDone:
		if ev.Cached {
			return "cached"
		}
		return "ok"
	case driver.StatusError:
		return "failed"
	default:
		return string(ev.Status)
	}
}

func labelStyle(label string) lipgloss.Style {
	switch label {
	case "ok", "cached":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "failed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "loading", "checking":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
