package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/audio"
)

type fakeSynth struct {
	got  []audio.Utterance
	data []byte
	err  error
}

func (f *fakeSynth) Synthesize(_ context.Context, u audio.Utterance) ([]byte, error) {
	f.got = append(f.got, u)
	return f.data, f.err
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	table, err := alphabet.Default()
	if err != nil {
		t.Fatal(err)
	}
	opts.Logger = log.New(io.Discard)
	srv := httptest.NewServer(New(table, opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s status = %d, want %d: %s", url, resp.StatusCode, wantStatus, body)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
}

func TestListAlphabet(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		query string
		count int
	}{
		{query: "", count: 34},
		{query: "?category=all", count: 34},
		{query: "?category=consonant", count: 30},
		{query: "?category=vowels", count: 4},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got alphabetResponse
			getJSON(t, srv.URL+"/api/v1/alphabet"+tt.query, http.StatusOK, &got)
			if got.Count != tt.count || len(got.Characters) != tt.count {
				t.Errorf("count = %d (%d characters), want %d", got.Count, len(got.Characters), tt.count)
			}
		})
	}

	getJSON(t, srv.URL+"/api/v1/alphabet?category=digits", http.StatusBadRequest, nil)
}

func TestGetCharacter(t *testing.T) {
	srv := newTestServer(t, Options{})

	var ka alphabet.Character
	getJSON(t, srv.URL+"/api/v1/alphabet/ka", http.StatusOK, &ka)
	if ka.Glyph != "ཀ" || ka.AudioPath != "/audio/ka.mp3" {
		t.Errorf("ka = %+v", ka)
	}

	var byGlyph alphabet.Character
	getJSON(t, srv.URL+"/api/v1/alphabet/%E0%BD%81", http.StatusOK, &byGlyph) // ཁ
	if byGlyph.Pronunciation != "kha" {
		t.Errorf("ཁ = %+v", byGlyph)
	}

	var e errorResponse
	getJSON(t, srv.URL+"/api/v1/alphabet/zz", http.StatusNotFound, &e)
	if !strings.Contains(e.Error, "zz") {
		t.Errorf("error = %q", e.Error)
	}
}

func TestNewQuiz(t *testing.T) {
	srv := newTestServer(t, Options{Questions: 10, Choices: 4})

	var got quizResponse
	getJSON(t, srv.URL+"/api/v1/quiz?seed=7", http.StatusOK, &got)
	if len(got.Questions) != 10 {
		t.Fatalf("got %d questions, want 10", len(got.Questions))
	}

	seen := make(map[string]bool)
	for _, q := range got.Questions {
		if seen[q.Glyph] {
			t.Errorf("glyph %s repeated", q.Glyph)
		}
		seen[q.Glyph] = true
		if len(q.Options) != 4 {
			t.Errorf("%s has %d options", q.Glyph, len(q.Options))
		}
		if q.Options[q.Answer] != q.Pronunciation {
			t.Errorf("%s answer index points at %q, want %q", q.Glyph, q.Options[q.Answer], q.Pronunciation)
		}
	}

	var again quizResponse
	getJSON(t, srv.URL+"/api/v1/quiz?seed=7", http.StatusOK, &again)
	for i := range got.Questions {
		if got.Questions[i].Glyph != again.Questions[i].Glyph {
			t.Fatal("same seed produced different rounds")
		}
	}

	var short quizResponse
	getJSON(t, srv.URL+"/api/v1/quiz?count=3", http.StatusOK, &short)
	if len(short.Questions) != 3 {
		t.Errorf("count=3 gave %d questions", len(short.Questions))
	}

	getJSON(t, srv.URL+"/api/v1/quiz?count=0", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/v1/quiz?count=99", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/v1/quiz?seed=-1", http.StatusBadRequest, nil)
}

func postSpeak(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/api/v1/tts/speak", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSpeak(t *testing.T) {
	synth := &fakeSynth{data: []byte("ID3mp3")}
	srv := newTestServer(t, Options{Synthesizer: synth, TextSource: audio.TextFromPronunciation})

	resp := postSpeak(t, srv.URL, `{"key":"ཀ"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ID3mp3" {
		t.Errorf("body = %q", body)
	}
	if len(synth.got) != 1 || synth.got[0].Text != "ka" || synth.got[0].Rate != audio.DefaultVoice.Rate {
		t.Errorf("utterances = %+v", synth.got)
	}

	postSpeak(t, srv.URL, `{"text":"  hello  "}`)
	if synth.got[1].Text != "hello" {
		t.Errorf("text = %q, want trimmed", synth.got[1].Text)
	}

	tests := []struct {
		body   string
		status int
	}{
		{body: `{}`, status: http.StatusBadRequest},
		{body: `not json`, status: http.StatusBadRequest},
		{body: `{"key":"zz"}`, status: http.StatusNotFound},
	}
	for _, tt := range tests {
		if resp := postSpeak(t, srv.URL, tt.body); resp.StatusCode != tt.status {
			t.Errorf("POST %s status = %d, want %d", tt.body, resp.StatusCode, tt.status)
		}
	}
}

func TestSpeakErrors(t *testing.T) {
	noTTS := newTestServer(t, Options{})
	if resp := postSpeak(t, noTTS.URL, `{"text":"ka"}`); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("without synthesizer status = %d", resp.StatusCode)
	}

	failing := newTestServer(t, Options{Synthesizer: &fakeSynth{err: errors.New("quota")}})
	if resp := postSpeak(t, failing.URL, `{"text":"ka"}`); resp.StatusCode != http.StatusBadGateway {
		t.Errorf("failing synthesizer status = %d", resp.StatusCode)
	}
}

func TestStaticAudioAndCORS(t *testing.T) {
	assets := t.TempDir()
	if err := os.MkdirAll(filepath.Join(assets, "audio"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assets, "audio", "ka.mp3"), []byte("clip"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t, Options{AssetsDir: assets, AllowedOrigins: []string{"http://localhost:3000"}})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/audio/ka.mp3", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "clip" {
		t.Errorf("GET /audio/ka.mp3 = %d %q", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	missing, err := http.Get(srv.URL + "/audio/nope.mp3")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("missing clip status = %d", missing.StatusCode)
	}

	var health map[string]any
	getJSON(t, srv.URL+"/api/v1/health", http.StatusOK, &health)
	if health["assets"] != true || health["characters"] != float64(34) {
		t.Errorf("health = %v", health)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	table, err := alphabet.Default()
	if err != nil {
		t.Fatal(err)
	}
	s := New(table, Options{Addr: "127.0.0.1:0", Logger: log.New(io.Discard)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()

	if err := <-done; err != nil {
		t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
	}
}
