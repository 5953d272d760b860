// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"
	"time"

	"neonviz/internal/config"
	"neonviz/internal/visualizer"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Rows above and below the center line when the terminal size is unknown.
const (
	defaultHalfRows = 8
	chromeRows      = 6 // Title, progress, stats, help and spacing.
	glowBlend       = 0.6
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

type tickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type keyMap struct {
	Toggle  key.Binding
	Restart key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Toggle:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/stop")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// VisualizerModel is the Bubble Tea model that drives a Runner from tick
// messages and draws each frame as mirrored bars around a center line.
type VisualizerModel struct {
	runner    *visualizer.Runner
	palette   visualizer.Palette
	showStats bool

	frame    *visualizer.Frame
	progress progress.Model
	styles   map[visualizer.Color]lipgloss.Style

	width  int
	height int
}

// NewVisualizerModel creates the terminal renderer for r.
func NewVisualizerModel(r *visualizer.Runner, cfg *config.Config) VisualizerModel {
	p := r.Pipeline().Palette()
	return VisualizerModel{
		runner:    r,
		palette:   p,
		showStats: cfg.Display.ShowStats,
		frame:     &visualizer.Frame{},
		progress: progress.New(
			progress.WithScaledGradient(p.Cool.Hex(), p.HighPrimary.Hex()),
			progress.WithoutPercentage(),
		),
		styles: make(map[visualizer.Color]lipgloss.Style),
	}
}

// Init schedules the first tick.
func (m VisualizerModel) Init() tea.Cmd {
	return tickCmd(m.runner.Interval())
}

// Update steps the runner on ticks and handles playback keys.
func (m VisualizerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 4
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}

	case tickMsg:
		m.frame.CopyFrom(m.runner.Step())
		return m, tickCmd(m.runner.Interval())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Toggle):
			m.runner.TogglePlayback()
		case key.Matches(msg, keys.Restart):
			m.runner.Restart()
		}
	}
	return m, nil
}

// View renders the latest frame.
func (m VisualizerModel) View() string {
	f := m.frame
	var sb strings.Builder

	if f.Effects.Title {
		title := m.style(m.palette.Text).Bold(true).Render(f.Title)
		sub := m.style(m.palette.Cool).Render(f.Subtitle)
		sb.WriteString(" " + title + "  " + sub + "\n\n")
	}

	sb.WriteString(m.renderBars(m.halfRows(), m.columns()))
	sb.WriteString("\n\n ")
	sb.WriteString(m.progress.ViewAs(float64(f.Progress)))
	sb.WriteString("\n")

	if m.showStats {
		sb.WriteString(" " + statsLine(f) + "\n")
	}

	help := fmt.Sprintf(" %s %s • %s %s • %s %s",
		keys.Toggle.Help().Key, keys.Toggle.Help().Desc,
		keys.Restart.Help().Key, keys.Restart.Help().Desc,
		keys.Quit.Help().Key, keys.Quit.Help().Desc)
	sb.WriteString(m.style(m.palette.MidSecondary).Faint(true).Render(help))
	return sb.String()
}

func (m VisualizerModel) halfRows() int {
	if m.height == 0 {
		return defaultHalfRows
	}
	half := (m.height - chromeRows - 1) / 2
	return max(half, 1)
}

func (m VisualizerModel) columns() int {
	if m.width == 0 || m.width-2 > len(m.frame.Bars) {
		return len(m.frame.Bars)
	}
	return max(m.width-2, 1)
}

// renderBars draws half rows of bars growing up from the center line and a
// glow reflection growing down. When there are more bars than columns the
// bars are sampled.
func (m VisualizerModel) renderBars(half, cols int) string {
	f := m.frame
	if len(f.Bars) == 0 || cols == 0 {
		return ""
	}

	// Height of each column in eighths of a row.
	levels := make([]int, cols)
	colors := make([]visualizer.Color, cols)
	for c := range cols {
		bar := f.Bars[c*len(f.Bars)/cols]
		levels[c] = int(bar.Ratio * float32(half*8))
		colors[c] = bar.Color
	}

	rows := make([]string, 0, 2*half+1)
	for r := half - 1; r >= 0; r-- {
		var line strings.Builder
		line.WriteByte(' ')
		for c := range cols {
			fill := min(max(levels[c]-r*8, 0), 8)
			if fill == 0 && f.Effects.FlowLines && r > 0 && levels[c] > (r-1)*8 {
				next := colors[min(c+1, cols-1)]
				flow := visualizer.FromColorful(colors[c].Colorful().BlendLab(next.Colorful(), 0.5))
				line.WriteString(m.style(flow).Render("·"))
				continue
			}
			line.WriteString(m.style(colors[c]).Render(string(barChars[fill])))
		}
		rows = append(rows, line.String())
	}

	if f.Effects.CenterLine {
		rows = append(rows, " "+m.style(f.CenterColor).Render(strings.Repeat("─", cols)))
	}

	if f.Effects.Glow {
		bg := m.palette.Background.Colorful()
		for r := range half {
			var line strings.Builder
			line.WriteByte(' ')
			for c := range cols {
				if levels[c]-r*8 < 4 {
					line.WriteByte(' ')
					continue
				}
				glow := visualizer.FromColorful(colors[c].Colorful().BlendLab(bg, glowBlend))
				line.WriteString(m.style(glow).Render("█"))
			}
			rows = append(rows, line.String())
		}
	}
	return strings.Join(rows, "\n")
}

func (m VisualizerModel) style(c visualizer.Color) lipgloss.Style {
	if s, ok := m.styles[c]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	m.styles[c] = s
	return s
}

func statsLine(f *visualizer.Frame) string {
	peak, peakValue := f.PeakBin()
	return fmt.Sprintf("frame %d  pos %d/%d  peak bin %d (%.2f)  avg %.3f",
		f.Number, f.Position, f.Length, peak, peakValue, f.Average)
}

// RunVisualizer runs the terminal renderer until the user quits.
func RunVisualizer(r *visualizer.Runner, cfg *config.Config) error {
	p := tea.NewProgram(NewVisualizerModel(r, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
