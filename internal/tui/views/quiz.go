package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/quiz"
	"github.com/f3rmion/kakha/internal/tui/bigchar"
)

var (
	quizOptionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3d5a80")).
			Foreground(lipgloss.Color("#f1faee")).
			Width(14).
			Align(lipgloss.Center)

	quizOptionActiveStyle = quizOptionStyle.
				BorderForeground(lipgloss.Color("#ffe66d")).
				Bold(true)

	quizOptionRightStyle = quizOptionStyle.
				BorderForeground(lipgloss.Color("#a8e6cf")).
				Foreground(lipgloss.Color("#a8e6cf"))

	quizOptionWrongStyle = quizOptionStyle.
				BorderForeground(lipgloss.Color("#ff6b6b")).
				Foreground(lipgloss.Color("#ff6b6b"))

	quizDotDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a8e6cf")).Render("●")
	quizDotCurrent = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render("●")
	quizDotTodo    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3d5a80")).Render("○")

	quizTrophyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffe66d")).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#ffe66d")).
			Padding(1, 4)
)

// QuizModel runs a multiple-choice round.
type QuizModel struct {
	table   *alphabet.Table
	newGen  func() *quiz.Generator
	speaker Speaker
	big     *bigchar.Renderer

	round    *quiz.Round
	selected int
	revealed *quiz.Answered // Last answer, shown until the learner moves on
	err      error

	width  int
	height int
}

// NewQuizModel creates the quiz view. newGen is called for every round.
func NewQuizModel(table *alphabet.Table, newGen func() *quiz.Generator, speaker Speaker, big *bigchar.Renderer) QuizModel {
	if newGen == nil {
		newGen = func() *quiz.Generator { return quiz.NewGenerator() }
	}
	return QuizModel{
		table:   table,
		newGen:  newGen,
		speaker: speaker,
		big:     big,
	}
}

// SetSize updates the view dimensions.
func (m *QuizModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Start begins a new round.
func (m *QuizModel) Start() {
	m.round, m.err = m.newGen().Round(m.table)
	m.selected = 0
	m.revealed = nil
}

// Round returns the round in progress, if any.
func (m QuizModel) Round() *quiz.Round {
	return m.round
}

// Started reports whether a round exists.
func (m QuizModel) Started() bool {
	return m.round != nil
}

// Update handles messages.
func (m QuizModel) Update(msg tea.Msg) (QuizModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.round == nil {
		return m, nil
	}

	if m.revealed != nil {
		switch key.String() {
		case "enter", " ", "n", "right", "l":
			m.revealed = nil
			m.selected = 0
		case "s":
			c := m.revealed.Question.Character
			return m, SpeakCmd(m.speaker, c.Glyph, CharacterRequest(c))
		}
		return m, nil
	}

	if m.round.Done() {
		switch key.String() {
		case "r":
			m.Start()
		case "enter":
			return m, func() tea.Msg { return NavigateMsg{Page: PageHome} }
		}
		return m, nil
	}

	q, _ := m.round.Current()
	switch k := key.String(); k {
	case "right", "l", "down", "j":
		m.selected = (m.selected + 1) % len(q.Options)
	case "left", "h", "up", "k":
		m.selected = (m.selected - 1 + len(q.Options)) % len(q.Options)
	case "enter", " ":
		return m.answer(m.selected)
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			if i := int(k[0] - '1'); i < len(q.Options) {
				return m.answer(i)
			}
		}
	}
	return m, nil
}

// answer records option i and reveals the glyph's sound.
func (m QuizModel) answer(i int) (QuizModel, tea.Cmd) {
	if _, err := m.round.AnswerIndex(i); err != nil {
		return m, nil
	}
	answers := m.round.Answers()
	last := answers[len(answers)-1]
	m.revealed = &last
	m.selected = i

	c := last.Question.Character
	return m, SpeakCmd(m.speaker, c.Glyph, CharacterRequest(c))
}

// View renders the quiz.
func (m QuizModel) View() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error())
	}
	if m.round == nil {
		return helpStyle.Render("Press enter to start a quiz")
	}
	if m.revealed != nil {
		return m.renderQuestion(m.revealed.Question, m.round.Position()-1)
	}
	if m.round.Done() {
		return m.renderResult()
	}
	q, _ := m.round.Current()
	return m.renderQuestion(q, m.round.Position())
}

func (m QuizModel) renderQuestion(q quiz.Question, pos int) string {
	contentWidth := max(m.width-4, 40)
	var b strings.Builder

	b.WriteString(mutedStyle.Render(fmt.Sprintf("QUESTION %d/%d", pos+1, m.round.Len())))
	b.WriteString("  ")
	b.WriteString(m.renderDots(pos))
	b.WriteString("\n\n")

	glyph := glyphStyle.Padding(2, 8).Render(q.Character.Glyph)
	if art := m.big.Render(q.Character.Glyph, 24, 10); art != "" {
		glyph = pronunciationStyle.Render(art)
	}
	b.WriteString(centered(contentWidth, glyph))
	b.WriteString("\n\n")

	var opts []string
	for i, opt := range q.Options {
		style := quizOptionStyle
		switch {
		case m.revealed != nil && i == q.Correct:
			style = quizOptionRightStyle
		case m.revealed != nil && i == m.selected:
			style = quizOptionWrongStyle
		case m.revealed == nil && i == m.selected:
			style = quizOptionActiveStyle
		}
		opts = append(opts, style.Render(fmt.Sprintf("%d  %s", i+1, opt)))
	}
	half := (len(opts) + 1) / 2
	grid := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.JoinHorizontal(lipgloss.Top, opts[:half]...),
		lipgloss.JoinHorizontal(lipgloss.Top, opts[half:]...),
	)
	b.WriteString(centered(contentWidth, grid))
	b.WriteString("\n\n")

	if m.revealed != nil {
		if m.revealed.Correct {
			b.WriteString(successStyle.Render("Correct!"))
		} else {
			b.WriteString(errorStyle.Render(fmt.Sprintf("%s is %s", q.Character.Glyph, q.Answer())))
		}
		b.WriteString("\n\n")
		b.WriteString(helpLine("enter: next", "s: hear again"))
	} else {
		b.WriteString(helpLine("1-4: answer", "arrows: choose", "enter: confirm"))
	}
	return b.String()
}

func (m QuizModel) renderDots(pos int) string {
	var dots strings.Builder
	for i := 0; i < m.round.Len(); i++ {
		switch {
		case i < pos:
			dots.WriteString(quizDotDone)
		case i == pos:
			dots.WriteString(quizDotCurrent)
		default:
			dots.WriteString(quizDotTodo)
		}
	}
	return dots.String()
}

func (m QuizModel) renderResult() string {
	contentWidth := max(m.width-4, 40)
	res := m.round.Result()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centered(contentWidth, quizTrophyStyle.Render("Amazing!")))
	b.WriteString("\n\n")
	b.WriteString(centered(contentWidth, valueStyle.Render(res.String())))
	b.WriteString("\n\n")

	var missed []string
	for _, a := range m.round.Answers() {
		if !a.Correct {
			missed = append(missed, fmt.Sprintf("%s = %s", a.Question.Character.Glyph, a.Question.Answer()))
		}
	}
	if len(missed) > 0 {
		b.WriteString(centered(contentWidth, mutedStyle.Render("Practice: "+strings.Join(missed, "  "))))
		b.WriteString("\n\n")
	}

	b.WriteString(centered(contentWidth, helpLine("r: play again", "enter: back to home")))
	return b.String()
}
