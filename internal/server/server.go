// Package server exposes the alphabet, quiz rounds and speech over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/audio"
)

// Synthesizer renders an utterance to MP3 bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, u audio.Utterance) ([]byte, error)
}

// Options configures a Server.
type Options struct {
	Addr           string
	AssetsDir      string   // Served under /audio/ and /images/
	AllowedOrigins []string // CORS origins, "*" for any
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	Questions int // Default quiz round length
	Choices   int // Options per question

	Synthesizer Synthesizer // Optional, enables POST /api/v1/tts/speak
	Voice       audio.Voice
	TextSource  audio.TextSource

	Logger *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	table  *alphabet.Table
	opts   Options
	logger *log.Logger
	router *mux.Router
}

// New creates a Server for table.
func New(table *alphabet.Table, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "localhost:8080"
	}
	if opts.Voice == (audio.Voice{}) {
		opts.Voice = audio.DefaultVoice
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Server{
		table:  table,
		opts:   opts,
		logger: opts.Logger.WithPrefix("http"),
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/alphabet", s.listAlphabet).Methods(http.MethodGet)
	api.HandleFunc("/alphabet/{key}", s.getCharacter).Methods(http.MethodGet)
	api.HandleFunc("/quiz", s.newQuiz).Methods(http.MethodGet)
	api.HandleFunc("/tts/speak", s.speak).Methods(http.MethodPost)
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	if s.opts.AssetsDir != "" {
		for _, dir := range []string{"audio", "images"} {
			prefix := "/" + dir + "/"
			fs := http.FileServer(http.Dir(filepath.Join(s.opts.AssetsDir, dir)))
			s.router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, fs)).Methods(http.MethodGet, http.MethodHead)
		}
	}
}

// Handler returns the router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr, "assets", s.opts.AssetsDir, "tts", s.opts.Synthesizer != nil)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}

func assetsExist(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
