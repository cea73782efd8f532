package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kakha/internal/config"
)

var (
	settingsPathStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Italic(true).
				MarginBottom(1)

	settingsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#a8dadc"))

	settingsDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3d5a80"))
)

var settingsTabs = []string{"Audio", "Speech", "Learning"}

// Backends describes what the running process could set up.
type Backends struct {
	ConfigPath string
	Player     string // Empty when clip playback is unavailable
	Synth      string // Synthesizer name, empty when none
	Unlocked   bool
	Hints      bool
	BigChar    bool
}

// SettingsModel shows the effective configuration.
type SettingsModel struct {
	config   *config.Config
	backends Backends
	tab      int

	width  int
	height int
}

// NewSettingsModel creates a new settings model.
func NewSettingsModel(cfg *config.Config, backends Backends) SettingsModel {
	if cfg == nil {
		cfg = config.Default()
	}
	return SettingsModel{config: cfg, backends: backends}
}

// SetSize updates the view dimensions.
func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetUnlocked records the unlock state shown on the Audio tab.
func (m *SettingsModel) SetUnlocked(unlocked bool) {
	m.backends.Unlocked = unlocked
}

// Update handles messages.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "right", "l":
			m.tab = (m.tab + 1) % len(settingsTabs)
		case "left", "h":
			m.tab = (m.tab - 1 + len(settingsTabs)) % len(settingsTabs)
		}
	}
	return m, nil
}

// View renders the settings view.
func (m SettingsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Kakha Configuration"))
	b.WriteString("\n")
	path := m.backends.ConfigPath
	if path == "" {
		path = "(defaults, run 'kakha init' to create a config file)"
	}
	b.WriteString(settingsPathStyle.Render("Config: " + path))
	b.WriteString("\n\n")

	var tabs []string
	for i, t := range settingsTabs {
		if i == m.tab {
			tabs = append(tabs, tabActiveStyle.Render(t))
		} else {
			tabs = append(tabs, tabStyle.Render(t))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	b.WriteString(settingsDividerStyle.Render(strings.Repeat("─", min(max(m.width-4, 10), 60))))
	b.WriteString("\n\n")

	switch m.tab {
	case 0:
		b.WriteString(m.renderAudio())
	case 1:
		b.WriteString(m.renderSpeech())
	case 2:
		b.WriteString(m.renderLearning())
	}

	b.WriteString("\n\n")
	b.WriteString(helpLine("←/→: switch tabs", "edit the config file to change settings"))
	return b.String()
}

func (m SettingsModel) renderAudio() string {
	a := m.config.Audio
	rows := []string{
		settingsHeaderStyle.Render("Playback"),
		renderRow("Enabled:", onOff(a.Enabled)),
		renderRow("Device:", orNone(m.backends.Player)),
		renderRow("Unlocked:", onOff(m.backends.Unlocked)),
		renderRow("Assets:", a.AssetsDir),
		renderRow("Format:", fmt.Sprintf("%d Hz, %d ch, volume %.0f%%", a.SampleRate, a.Channels, a.Volume*100)),
		renderRow("Wait clip:", onOff(a.AwaitClip)),
	}
	if a.BaseURL != "" {
		rows = append(rows, renderRow("Clip URL:", a.BaseURL))
	}
	return strings.Join(rows, "\n")
}

func (m SettingsModel) renderSpeech() string {
	a := m.config.Audio
	s := m.config.Speech
	rows := []string{
		settingsHeaderStyle.Render("Synthesis"),
		renderRow("Engine:", s.Engine),
		renderRow("Active:", orNone(m.backends.Synth)),
		renderRow("Says:", a.TextSource),
		renderRow("Language:", a.Language),
		renderRow("Rate:", fmt.Sprintf("%.2f", a.Rate)),
		renderRow("Pitch:", fmt.Sprintf("%.2f", a.Pitch)),
	}
	if s.Voice != "" {
		rows = append(rows, renderRow("Voice:", s.Voice))
	}
	if s.Engine == "google" || s.Google.CredentialsFile != "" {
		rows = append(rows, renderRow("Google:", s.Google.VoiceName))
	}
	return strings.Join(rows, "\n")
}

func (m SettingsModel) renderLearning() string {
	q := m.config.Quiz
	u := m.config.UI
	rows := []string{
		settingsHeaderStyle.Render("Quiz"),
		renderRow("Questions:", fmt.Sprint(q.Questions)),
		renderRow("Options:", fmt.Sprint(q.Options)),
		"",
		settingsHeaderStyle.Render("Display"),
		renderRow("Meanings:", u.MeaningLanguage),
		renderRow("Big glyphs:", onOff(u.BigChar && m.backends.BigChar)),
		renderRow("Daily goal:", fmt.Sprintf("%d letters", u.DailyGoal)),
		renderRow("Hints:", onOff(m.backends.Hints)),
	}
	return strings.Join(rows, "\n")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orNone(s string) string {
	if s == "" {
		return mutedStyle.Render("none")
	}
	return s
}
