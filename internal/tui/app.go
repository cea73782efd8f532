package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/config"
	"github.com/f3rmion/kakha/internal/quiz"
	"github.com/f3rmion/kakha/internal/tui/bigchar"
	"github.com/f3rmion/kakha/internal/tui/views"
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	View     views.Page
	Shortcut string
}

// Options holds the dependencies of the app. Speaker, Hinter and BigChar
// may be nil.
type Options struct {
	Config   *config.Config
	Table    *alphabet.Table
	Speaker  views.Speaker
	Hinter   views.Hinter
	BigChar  *bigchar.Renderer
	Backends views.Backends

	// SkipLanding starts on Start instead of the landing screen. The
	// first listen action then unlocks audio.
	SkipLanding bool
	Start       views.Page
}

// AppModel is the main unified TUI model
type AppModel struct {
	config  *config.Config
	table   *alphabet.Table
	speaker views.Speaker
	big     *bigchar.Renderer

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Landing screen; the first key press there is the unlock gesture.
	landing      bool
	unlockStatus string

	// Navigation
	currentView   views.Page
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	homeView     views.HomeModel
	alphabetView views.AlphabetModel
	learnView    views.LearnModel
	quizView     views.QuizModel
	settingsView views.SettingsModel

	showHelp bool
}

// NewApp creates a new unified TUI application
func NewApp(opts Options) AppModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	big := opts.BigChar
	if !cfg.UI.BigChar {
		big = nil
	}

	newGen := func() *quiz.Generator {
		return quiz.NewGenerator(
			quiz.WithQuestions(cfg.Quiz.Questions),
			quiz.WithOptions(cfg.Quiz.Options),
		)
	}

	app := AppModel{
		config:       cfg,
		table:        opts.Table,
		speaker:      opts.Speaker,
		big:          big,
		sidebarWidth: 20,
		landing:      !opts.SkipLanding,
		menuItems: []MenuItem{
			{Label: "Home", View: views.PageHome, Shortcut: "1"},
			{Label: "Alphabet", View: views.PageAlphabet, Shortcut: "2"},
			{Label: "Learn", View: views.PageLearn, Shortcut: "3"},
			{Label: "Quiz", View: views.PageQuiz, Shortcut: "4"},
			{Label: "Settings", View: views.PageSettings, Shortcut: "5"},
		},

		homeView:     views.NewHomeModel(big, cfg.UI.DailyGoal),
		alphabetView: views.NewAlphabetModel(opts.Table, opts.Speaker),
		learnView:    views.NewLearnModel(opts.Table, opts.Speaker, opts.Hinter, big, cfg.UI.MeaningLanguage),
		quizView:     views.NewQuizModel(opts.Table, newGen, opts.Speaker, big),
		settingsView: views.NewSettingsModel(cfg, opts.Backends),
	}
	app.switchTo(opts.Start)
	return app
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return nil
}

// CurrentView returns the page on screen.
func (m AppModel) CurrentView() views.Page {
	return m.currentView
}

// Landing reports whether the landing screen is shown.
func (m AppModel) Landing() bool {
	return m.landing
}

func (m *AppModel) switchTo(page views.Page) {
	m.currentView = page
	for i, item := range m.menuItems {
		if item.View == page {
			m.selectedMenu = i
			break
		}
	}
	m.sidebarActive = false

	if page == views.PageQuiz {
		if r := m.quizView.Round(); r == nil || r.Done() {
			m.quizView.Start()
		}
	}
}

// capturing reports whether the active view wants raw keystrokes.
func (m AppModel) capturing() bool {
	return m.currentView == views.PageAlphabet && m.alphabetView.Capturing()
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.landing {
			m.landing = false
			cmd := views.UnlockCmd(m.speaker)
			if cmd != nil {
				m.unlockStatus = "Turning on sound..."
			}
			return m, cmd
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if !m.capturing() {
			if cmd, handled := m.handleGlobalKey(msg); handled {
				return m, cmd
			}
		}
		if m.sidebarActive {
			return m, nil
		}
		return m.updateCurrent(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 4
		contentHeight := m.height - 2
		m.homeView.SetSize(contentWidth, contentHeight)
		m.alphabetView.SetSize(contentWidth, contentHeight)
		m.learnView.SetSize(contentWidth, contentHeight)
		m.quizView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		return m, nil

	case views.UnlockedMsg:
		if msg.Result.Err != nil {
			m.unlockStatus = "Sound could not start yet, it will retry on the next listen"
		} else {
			m.unlockStatus = ""
			m.settingsView.SetUnlocked(true)
		}
		return m, nil

	case views.NavigateMsg:
		m.switchTo(msg.Page)
		return m, nil

	case views.OpenCharacterMsg:
		cmd := m.learnView.SetCharacter(msg.Glyph, msg.List)
		m.switchTo(views.PageLearn)
		return m, cmd

	case views.LearnedMsg:
		m.homeView, _ = m.homeView.Update(msg)
		return m, nil
	}

	// Asynchronous results go to every view that may have asked for them.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.alphabetView, cmd = m.alphabetView.Update(msg)
	cmds = append(cmds, cmd)
	m.learnView, cmd = m.learnView.Update(msg)
	cmds = append(cmds, cmd)
	m.quizView, cmd = m.quizView.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *AppModel) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "?":
		m.showHelp = true
		return nil, true
	case "esc":
		if m.sidebarActive {
			return tea.Quit, true
		}
		m.sidebarActive = true
		return nil, true
	case "tab":
		m.sidebarActive = !m.sidebarActive
		return nil, true
	}

	// Number keys answer quiz questions.
	if m.currentView != views.PageQuiz || m.sidebarActive {
		for _, item := range m.menuItems {
			if msg.String() == item.Shortcut {
				m.switchTo(item.View)
				return nil, true
			}
		}
	}

	if m.sidebarActive {
		switch msg.String() {
		case "j", "down":
			if m.selectedMenu < len(m.menuItems)-1 {
				m.selectedMenu++
			}
			return nil, true
		case "k", "up":
			if m.selectedMenu > 0 {
				m.selectedMenu--
			}
			return nil, true
		case "enter", "l", "right":
			m.switchTo(m.menuItems[m.selectedMenu].View)
			return nil, true
		}
	}
	return nil, false
}

func (m AppModel) updateCurrent(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case views.PageHome:
		m.homeView, cmd = m.homeView.Update(msg)
	case views.PageAlphabet:
		m.alphabetView, cmd = m.alphabetView.Update(msg)
	case views.PageLearn:
		m.learnView, cmd = m.learnView.Update(msg)
	case views.PageQuiz:
		m.quizView, cmd = m.quizView.Update(msg)
	case views.PageSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}
	return m, cmd
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.landing {
		return m.renderLanding()
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var content string
	switch m.currentView {
	case views.PageHome:
		content = m.homeView.View()
	case views.PageAlphabet:
		content = m.alphabetView.View()
	case views.PageLearn:
		content = m.learnView.View()
	case views.PageQuiz:
		content = m.quizView.View()
	case views.PageSettings:
		content = m.settingsView.View()
	}
	if m.unlockStatus != "" {
		content = StatusStyle.Render(m.unlockStatus) + "\n\n" + content
	}

	contentWidth := m.width - m.sidebarWidth - 4
	mainContent := ContentStyle.
		Width(contentWidth).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), mainContent)
}

func (m AppModel) renderLanding() string {
	glyph := LandingGlyphStyle.Render("ཀ")
	if art := m.big.Render("ཀ", 20, 8); art != "" {
		glyph = LandingArtStyle.Render(art)
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		glyph,
		"",
		LandingTitleStyle.Render("Tibetan Kids"),
		LandingSubtitleStyle.Render("Learn the ka kha ga nga with sounds and games"),
		"",
		LandingPromptStyle.Render("Press any key to start"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// renderSidebar renders the sidebar navigation
func (m AppModel) renderSidebar() string {
	var items []string

	items = append(items, SidebarTitleStyle.Render(" ཀ་ཁ Kakha "))
	items = append(items, "")

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Label

		var style lipgloss.Style
		switch {
		case i == m.selectedMenu && m.sidebarActive:
			style = SidebarItemActiveStyle
		case i == m.selectedMenu:
			style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
		default:
			style = SidebarItemStyle
		}
		items = append(items, style.Render(label))
	}

	usedHeight := len(items) + 4
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}
	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	row := func(key, desc string) string {
		return HelpKeyStyle.Render(key) + HelpDescStyle.Render(desc) + "\n"
	}

	helpText := HelpTitleStyle.Render("Kakha - Tibetan Alphabet") + "\n\n"

	helpText += HelpSectionStyle.Render("Global Keys") + "\n"
	helpText += row("1-5", "Switch views")
	helpText += row("tab", "Toggle sidebar focus")
	helpText += row("?", "Show this help")
	helpText += row("q", "Quit")

	helpText += HelpSectionStyle.Render("Alphabet") + "\n"
	helpText += row("arrows", "Move around the grid")
	helpText += row("space", "Listen")
	helpText += row("enter", "Open letter")
	helpText += row("f", "All / consonants / vowels")
	helpText += row("/", "Search")

	helpText += HelpSectionStyle.Render("Learn") + "\n"
	helpText += row("space", "Listen")
	helpText += row("e", "Listen to example word")
	helpText += row("←/→", "Prev/next letter")
	helpText += row("m", "Meaning language")
	helpText += row("g", "Memory hint")
	helpText += row("y", "Copy to clipboard")

	helpText += HelpSectionStyle.Render("Quiz") + "\n"
	helpText += row("1-4", "Answer")
	helpText += row("enter", "Confirm / next")
	helpText += row("r", "Play again")

	helpText += "\n" + HelpDismissStyle.Render("Press any key to close")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, HelpBoxStyle.Render(helpText))
}
