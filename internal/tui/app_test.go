package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/audio"
	"github.com/f3rmion/kakha/internal/tui/views"
)

type fakeSpeaker struct {
	unlockErr error
	unlocks   int
	spoken    []audio.Request
}

func (f *fakeSpeaker) Unlock(context.Context) audio.StepResult {
	f.unlocks++
	return audio.StepResult{Attempted: true, Err: f.unlockErr}
}

func (f *fakeSpeaker) Speak(_ context.Context, req audio.Request) audio.Outcome {
	f.spoken = append(f.spoken, req)
	return audio.Outcome{Strategy: audio.StrategySynthesis}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp(t *testing.T, speaker views.Speaker, skipLanding bool) AppModel {
	t.Helper()
	table, err := alphabet.Default()
	if err != nil {
		t.Fatal(err)
	}
	return NewApp(Options{Table: table, Speaker: speaker, SkipLanding: skipLanding})
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return app, cmd
}

func TestLandingUnlocksOnFirstKey(t *testing.T) {
	speaker := &fakeSpeaker{}
	m := newTestApp(t, speaker, false)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	if !m.Landing() || !strings.Contains(m.View(), "Press any key") {
		t.Fatal("landing screen not shown")
	}

	m, cmd := update(t, m, runeKey("x"))
	if m.Landing() {
		t.Error("landing still shown after a key")
	}
	if cmd == nil {
		t.Fatal("no unlock command")
	}
	msg, ok := cmd().(views.UnlockedMsg)
	if !ok || speaker.unlocks != 1 {
		t.Fatalf("unlock msg = %#v, unlocks = %d", msg, speaker.unlocks)
	}
	if !strings.Contains(m.View(), "Turning on sound") {
		t.Error("unlock status missing")
	}

	m, _ = update(t, m, msg)
	if strings.Contains(m.View(), "Turning on sound") {
		t.Error("unlock status not cleared")
	}
}

func TestLandingUnlockFailure(t *testing.T) {
	speaker := &fakeSpeaker{unlockErr: errors.New("device busy")}
	m := newTestApp(t, speaker, false)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, cmd := update(t, m, runeKey("x"))
	m, _ = update(t, m, cmd())
	if !strings.Contains(m.View(), "retry") {
		t.Error("unlock failure not reported")
	}
}

func TestLandingWithoutSpeaker(t *testing.T) {
	m := newTestApp(t, nil, false)
	m, cmd := update(t, m, runeKey("x"))
	if cmd != nil || m.Landing() || m.unlockStatus != "" {
		t.Errorf("cmd=%v landing=%v status=%q", cmd, m.Landing(), m.unlockStatus)
	}
}

func TestNumberKeysSwitchViews(t *testing.T) {
	m := newTestApp(t, nil, true)

	tests := []struct {
		key  string
		want views.Page
	}{
		{"2", views.PageAlphabet},
		{"3", views.PageLearn},
		{"5", views.PageSettings},
		{"1", views.PageHome},
		{"4", views.PageQuiz},
		// Digits answer questions on the quiz page.
		{"2", views.PageQuiz},
	}
	for _, tt := range tests {
		m, _ = update(t, m, runeKey(tt.key))
		if m.CurrentView() != tt.want {
			t.Errorf("after %s view = %v, want %v", tt.key, m.CurrentView(), tt.want)
		}
	}
	if m.quizView.Round() == nil || m.quizView.Round().Position() != 1 {
		t.Error("digit on quiz page did not answer")
	}
}

func TestSidebarNavigation(t *testing.T) {
	m := newTestApp(t, nil, true)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.CurrentView() != views.PageLearn || m.sidebarActive {
		t.Errorf("view = %v, sidebar = %v", m.CurrentView(), m.sidebarActive)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc from sidebar did not quit")
	}
}

func TestSearchCapturesGlobalKeys(t *testing.T) {
	m := newTestApp(t, nil, true)
	m, _ = update(t, m, runeKey("2"))
	m, _ = update(t, m, runeKey("/"))

	m, cmd := update(t, m, runeKey("q"))
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Fatal("q quit while searching")
		}
	}
	m, _ = update(t, m, runeKey("1"))
	if m.CurrentView() != views.PageAlphabet {
		t.Error("digit switched views while searching")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	_, cmd = update(t, m, runeKey("q"))
	if cmd == nil {
		t.Fatal("q did nothing after closing search")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestOpenCharacterGoesToLearn(t *testing.T) {
	m := newTestApp(t, nil, true)

	m, cmd := update(t, m, views.OpenCharacterMsg{Glyph: "ཁ"})
	if m.CurrentView() != views.PageLearn {
		t.Fatalf("view = %v, want learn", m.CurrentView())
	}
	if c, _ := m.learnView.Current(); c.Glyph != "ཁ" {
		t.Errorf("learn shows %s", c.Glyph)
	}

	m, _ = update(t, m, cmd())
	if m.homeView.Learned() != 1 {
		t.Errorf("learned = %d, want 1", m.homeView.Learned())
	}

	m, _ = update(t, m, views.NavigateMsg{Page: views.PageHome})
	if m.CurrentView() != views.PageHome {
		t.Error("navigate did not switch to home")
	}
}

func TestSpokeMsgReachesViews(t *testing.T) {
	speaker := &fakeSpeaker{}
	m := newTestApp(t, speaker, true)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, runeKey("2"))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd == nil {
		t.Fatal("space did not speak")
	}
	m, _ = update(t, m, cmd())
	if len(speaker.spoken) != 1 || speaker.spoken[0].Text != "ཀ" {
		t.Errorf("spoken = %+v", speaker.spoken)
	}
	if !strings.Contains(m.View(), "speaking") {
		t.Error("status not shown in alphabet view")
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newTestApp(t, nil, true)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, runeKey("?"))
	if !strings.Contains(m.View(), "Global Keys") {
		t.Error("help not shown")
	}
	m, _ = update(t, m, runeKey("x"))
	if strings.Contains(m.View(), "Global Keys") {
		t.Error("help not dismissed")
	}
}
