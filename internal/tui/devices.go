// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"fmt"
	"strings"

	"neonviz/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrNoSelection is returned by PickDevice when the user quits without
// choosing an input device.
var ErrNoSelection = errors.New("no device selected")

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#8400FF")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Faint(true)
)

// Sample rates offered on the configuration screen.
var sampleRates = []float64{44100, 48000, 88200, 96000}

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	ConfigScreen
)

var pickerKeys = struct {
	Up, Down, Select, Back, Quit key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Back:   key.NewBinding(key.WithKeys("esc")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
}

// Selection is the outcome of the device picker.
type Selection struct {
	Device     audio.Device
	SampleRate float64
}

// DevicePickerModel lists input devices and lets the user choose one and a
// capture rate for the record command.
type DevicePickerModel struct {
	devices         []audio.Device
	selectedIndex   int
	sampleRateIndex int
	activeScreen    ScreenType

	viewport viewport.Model
	ready    bool
	err      error

	selection *Selection
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// NewDevicePickerModel creates a picker. Only devices with input channels
// are offered.
func NewDevicePickerModel() DevicePickerModel {
	return DevicePickerModel{activeScreen: ListScreen}
}

// Init fetches the device list.
func (m DevicePickerModel) Init() tea.Cmd {
	return fetchDevices
}

func fetchDevices() tea.Msg {
	devices, err := audio.HostDevices()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{inputDevices(devices)}
}

func inputDevices(devices []audio.Device) []audio.Device {
	inputs := make([]audio.Device, 0, len(devices))
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			inputs = append(inputs, d)
		}
	}
	return inputs
}

// Update handles navigation between the list and configuration screens.
func (m DevicePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case devicesMsg:
		m.devices = msg.devices
		m.refresh()

	case errMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, pickerKeys.Quit) {
			return m, tea.Quit
		}
		if len(m.devices) == 0 {
			return m, nil
		}

		switch m.activeScreen {
		case ListScreen:
			switch {
			case key.Matches(msg, pickerKeys.Up):
				m.selectedIndex = max(m.selectedIndex-1, 0)
			case key.Matches(msg, pickerKeys.Down):
				m.selectedIndex = min(m.selectedIndex+1, len(m.devices)-1)
			case key.Matches(msg, pickerKeys.Select):
				m.activeScreen = ConfigScreen
				m.sampleRateIndex = 0
				for i, rate := range sampleRates {
					if rate == m.devices[m.selectedIndex].DefaultSampleRate {
						m.sampleRateIndex = i
						break
					}
				}
			}

		case ConfigScreen:
			switch {
			case key.Matches(msg, pickerKeys.Back):
				m.activeScreen = ListScreen
			case key.Matches(msg, pickerKeys.Up):
				m.sampleRateIndex = max(m.sampleRateIndex-1, 0)
			case key.Matches(msg, pickerKeys.Down):
				m.sampleRateIndex = min(m.sampleRateIndex+1, len(sampleRates)-1)
			case key.Matches(msg, pickerKeys.Select):
				m.selection = &Selection{
					Device:     m.devices[m.selectedIndex],
					SampleRate: sampleRates[m.sampleRateIndex],
				}
				return m, tea.Quit
			}
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *DevicePickerModel) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == ConfigScreen {
		m.viewport.SetContent(m.renderDeviceConfig())
		return
	}
	m.viewport.SetContent(m.renderDevices())
}

// View renders the active screen.
func (m DevicePickerModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Input Devices")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Configure • q: Quit")
	} else {
		title = titleStyle.Render("Recording Configuration")
		help = infoStyle.Render("↑/↓: Sample rate • Enter: Record • Esc: Back • q: Quit")
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m DevicePickerModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No input devices found."
	}

	var sb strings.Builder
	for i, d := range m.devices {
		info := fmt.Sprintf("[%d] %s (%s)\n", d.ID, d.Name, d.Kind())
		info += dimStyle.Render(fmt.Sprintf("    %d in, %.0f Hz, latency %.1f-%.1f ms",
			d.MaxInputChannels, d.DefaultSampleRate, d.LowInputLatency, d.HighInputLatency))
		if i == m.selectedIndex {
			info = highlightStyle.Render(info)
		}
		sb.WriteString(info)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (m DevicePickerModel) renderDeviceConfig() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Device: %s\n\nSample Rate:\n", m.devices[m.selectedIndex].Name)
	for i, rate := range sampleRates {
		marker := " "
		if i == m.sampleRateIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %.0f Hz\n", marker, rate)
		if i == m.sampleRateIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// PickDevice runs the picker and returns the chosen device and rate.
func PickDevice() (*Selection, error) {
	final, err := tea.NewProgram(NewDevicePickerModel(), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	m := final.(DevicePickerModel)
	if m.err != nil {
		return nil, m.err
	}
	if m.selection == nil {
		return nil, ErrNoSelection
	}
	return m.selection, nil
}
