package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/audio"
	"github.com/f3rmion/kakha/internal/quiz"
)

type alphabetResponse struct {
	Category   string               `json:"category,omitempty"`
	Count      int                  `json:"count"`
	Characters []alphabet.Character `json:"characters"`
}

type questionResponse struct {
	Glyph         string   `json:"glyph"`
	Category      string   `json:"category"`
	AudioPath     string   `json:"audio_path,omitempty"`
	Options       []string `json:"options"`
	Answer        int      `json:"answer"`
	Pronunciation string   `json:"pronunciation"`
}

type quizResponse struct {
	Questions []questionResponse `json:"questions"`
}

// TTSRequest is the body of POST /api/v1/tts/speak. Key names a
// character whose reading is spoken instead of Text.
type TTSRequest struct {
	Text string `json:"text"`
	Key  string `json:"key"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GET /api/v1/alphabet?category=
func (s *Server) listAlphabet(w http.ResponseWriter, r *http.Request) {
	cat, err := alphabet.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	chars := s.table.Filter(cat)
	writeJSON(w, http.StatusOK, alphabetResponse{
		Category:   string(cat),
		Count:      len(chars),
		Characters: chars,
	})
}

// GET /api/v1/alphabet/{key}
func (s *Server) getCharacter(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	c, ok := s.table.Lookup(key)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no character matches "+strconv.Quote(key)))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GET /api/v1/quiz?count=&seed=
func (s *Server) newQuiz(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var opts []quiz.Option
	if s.opts.Questions > 0 {
		opts = append(opts, quiz.WithQuestions(s.opts.Questions))
	}
	if s.opts.Choices > 0 {
		opts = append(opts, quiz.WithOptions(s.opts.Choices))
	}
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("count must be a positive integer"))
			return
		}
		opts = append(opts, quiz.WithQuestions(n))
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("seed must be an unsigned integer"))
			return
		}
		opts = append(opts, quiz.WithSeed(seed))
	}

	round, err := quiz.NewGenerator(opts...).Round(s.table)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := quizResponse{}
	for _, qu := range round.Questions() {
		resp.Questions = append(resp.Questions, questionResponse{
			Glyph:         qu.Character.Glyph,
			Category:      string(qu.Character.Category),
			AudioPath:     qu.Character.AudioPath,
			Options:       qu.Options,
			Answer:        qu.Correct,
			Pronunciation: qu.Answer(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/v1/tts/speak streams MP3 audio.
func (s *Server) speak(w http.ResponseWriter, r *http.Request) {
	if s.opts.Synthesizer == nil {
		writeError(w, http.StatusServiceUnavailable, audio.ErrSynthesisUnavailable)
		return
	}

	var req TTSRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	text := strings.TrimSpace(req.Text)
	if req.Key != "" {
		c, ok := s.table.Lookup(req.Key)
		if !ok {
			writeError(w, http.StatusNotFound, errors.New("no character matches "+strconv.Quote(req.Key)))
			return
		}
		text = c.Glyph
		if s.opts.TextSource == audio.TextFromPronunciation {
			text = c.Pronunciation
		}
	}
	if text == "" {
		writeError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	data, err := s.opts.Synthesizer.Synthesize(ctx, audio.Utterance{
		Text:     text,
		Language: s.opts.Voice.Language,
		Rate:     s.opts.Voice.Rate,
		Pitch:    s.opts.Voice.Pitch,
	})
	if err != nil {
		s.logger.Warn("synthesis failed", "text", text, "err", err)
		writeError(w, http.StatusBadGateway, errors.New("failed to generate speech"))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("writing audio", "err", err)
	}
}

// GET /api/v1/health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"characters": s.table.Len(),
		"tts":        s.opts.Synthesizer != nil,
		"assets":     s.opts.AssetsDir != "" && assetsExist(s.opts.AssetsDir),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
