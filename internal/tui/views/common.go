// Package views provides the individual views for the unified TUI.
package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/audio"
	"github.com/f3rmion/kakha/internal/llm"
	"github.com/f3rmion/kakha/internal/pinyin"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			Background(lipgloss.Color("#1a1a2e")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ecdc4"))

	glyphStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffe66d")).
			Background(lipgloss.Color("#1a1a2e")).
			Padding(1, 6).
			Align(lipgloss.Center)

	pronunciationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ecdc4")).
				Bold(true).
				Align(lipgloss.Center)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8dadc")).
			Bold(true).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf")).
			Bold(true)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe66d")).
			Bold(true).
			Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3d5a80")).
			Padding(1, 2)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 2)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffe66d")).
			Background(lipgloss.Color("#2d3436")).
			Padding(0, 2)
)

// Page identifies a top-level view.
type Page int

const (
	PageHome Page = iota
	PageAlphabet
	PageLearn
	PageQuiz
	PageSettings
)

// NavigateMsg asks the app to switch pages.
type NavigateMsg struct {
	Page Page
}

// OpenCharacterMsg opens the detail view. List is the sequence that
// prev/next walk through.
type OpenCharacterMsg struct {
	Glyph string
	List  []alphabet.Character
}

// LearnedMsg reports a character the learner looked at.
type LearnedMsg struct {
	Glyph string
}

// Speaker is the pronunciation feedback used by the views.
type Speaker interface {
	Unlock(ctx context.Context) audio.StepResult
	Speak(ctx context.Context, req audio.Request) audio.Outcome
}

// Hinter generates memory hints.
type Hinter interface {
	GenerateHint(ctx context.Context, req llm.HintRequest) (string, error)
}

// SpokeMsg is sent when a listen action finished.
type SpokeMsg struct {
	Glyph   string
	Outcome audio.Outcome
}

// UnlockedMsg carries the result of an unlock gesture.
type UnlockedMsg struct {
	Result audio.StepResult
}

// SpeakCmd runs a listen action off the UI goroutine.
func SpeakCmd(s Speaker, glyph string, req audio.Request) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		return SpokeMsg{Glyph: glyph, Outcome: s.Speak(context.Background(), req)}
	}
}

// UnlockCmd runs the unlock gesture off the UI goroutine.
func UnlockCmd(s Speaker) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		return UnlockedMsg{Result: s.Unlock(context.Background())}
	}
}

// CharacterRequest is the listen action for a glyph.
func CharacterRequest(c alphabet.Character) audio.Request {
	return audio.Request{
		Text:          c.Glyph,
		Pronunciation: c.Pronunciation,
		Clip:          c.AudioPath,
	}
}

// ExampleRequest is the listen action for a character's example word.
// It has no romanized reading, so synthesis always says the word.
func ExampleRequest(c alphabet.Character) audio.Request {
	return audio.Request{
		Text: c.ExampleWord,
		Clip: c.ExampleAudioPath,
	}
}

type clearStatusMsg struct {
	id int
}

func clearStatusAfter(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// MeaningLanguages are the supported meaning translations.
var MeaningLanguages = []string{"en", "fr", "zh"}

var annotator = pinyin.NewAnnotator()

// meaning returns the example meaning in lang, falling back to English.
// Chinese meanings carry their pinyin.
func meaning(c alphabet.Character, lang string) string {
	switch lang {
	case "fr":
		if c.ExampleMeaningFr != "" {
			return c.ExampleMeaningFr
		}
	case "zh":
		if c.ExampleMeaningZh != "" {
			return fmt.Sprintf("%s (%s)", c.ExampleMeaningZh, annotator.Annotate(c.ExampleMeaningZh))
		}
	}
	return c.ExampleMeaning
}

func nextLanguage(lang string) string {
	for i, l := range MeaningLanguages {
		if l == lang {
			return MeaningLanguages[(i+1)%len(MeaningLanguages)]
		}
	}
	return MeaningLanguages[0]
}

// outcomeText describes a listen action for the status line.
// superseded reports whether a newer listen action cancelled o. Its
// message can arrive after the newer one and must not overwrite it.
func superseded(o audio.Outcome) bool {
	return errors.Is(o.Synthesis.Err, audio.ErrSuperseded)
}

func outcomeText(o audio.Outcome) string {
	switch o.Strategy {
	case audio.StrategyClip:
		return "♪ playing recording"
	case audio.StrategySynthesis:
		return "♪ speaking"
	}
	return "no audio available"
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}

func renderRow(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func centered(width int, s string) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(s)
}

func helpLine(items ...string) string {
	return helpStyle.Render(strings.Join(items, " • "))
}
