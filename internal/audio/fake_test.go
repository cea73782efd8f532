package audio

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakePlayback struct {
	done chan struct{}
	err  error
}

func finishedPlayback(err error) *fakePlayback {
	pb := &fakePlayback{done: make(chan struct{}), err: err}
	close(pb.done)
	return pb
}

func (p *fakePlayback) Done() <-chan struct{} { return p.done }
func (p *fakePlayback) Err() error            { return p.err }

// fakePlayer simulates a clip player. Clips listed in missing fail to
// start; clips listed in broken start and then fail.
type fakePlayer struct {
	mu        sync.Mutex
	resumeErr error
	warmErr   error
	missing   map[string]bool
	broken    map[string]bool

	resumes int
	warms   int
	played  []string
}

func (p *fakePlayer) Resume(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumes++
	return p.resumeErr
}

func (p *fakePlayer) Warm(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.warms++
	return p.warmErr
}

func (p *fakePlayer) Play(_ context.Context, clip string) (Playback, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.missing[clip] {
		return nil, errors.New("open " + clip + ": no such file or directory")
	}
	p.played = append(p.played, clip)
	if p.broken[clip] {
		return finishedPlayback(errors.New("decoder stalled")), nil
	}
	return finishedPlayback(nil), nil
}

func (p *fakePlayer) Played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}

// fakeSynth records utterances and flags any overlap between them.
type fakeSynth struct {
	mu          sync.Mutex
	unavailable bool
	speakErr    error

	active   bool
	overlaps int
	cancels  int
	spoken   []Utterance
}

func (s *fakeSynth) Name() string { return "fake" }

func (s *fakeSynth) Available() bool { return !s.unavailable }

func (s *fakeSynth) Speak(_ context.Context, u Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speakErr != nil {
		return s.speakErr
	}
	if s.active {
		s.overlaps++
	}
	s.active = true
	s.spoken = append(s.spoken, u)
	return nil
}

func (s *fakeSynth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
	s.active = false
}

func (s *fakeSynth) Spoken() []Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Utterance(nil), s.spoken...)
}

// slowSynth blocks in Speak for texts listed in slow until it is
// cancelled, like a network backend waiting on a round trip.
type slowSynth struct {
	mu       sync.Mutex
	slow     map[string]bool
	started  chan string
	stop     chan struct{}
	finished []string
}

func (s *slowSynth) Name() string { return "slow" }

func (s *slowSynth) Available() bool { return true }

func (s *slowSynth) Speak(ctx context.Context, u Utterance) error {
	stop := make(chan struct{})
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
	s.started <- u.Text

	if s.slow[u.Text] {
		select {
		case <-stop:
			return context.Canceled
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, u.Text)
	return nil
}

func (s *slowSynth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *slowSynth) Finished() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.finished...)
}
