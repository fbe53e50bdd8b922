// internal/session/session.go
//
// Session owns one screen's game.State on a dedicated goroutine.
// Responsibilities:
//   - Serialize commands (skip, correct, acknowledge, restart) and countdown
//     callbacks onto a single loop, so the state is never touched concurrently.
//   - Fan out snapshots to subscribers (latest wins for slow readers).
//   - Report each finished round once through an optional hook.
//   - Tear everything down on Close.
//
// Notes:
//   - Observers and hooks must not call back into the Session synchronously.

package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/countdown"
	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/words"
)

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("session closed")

// loadWords makes sure the word list is usable before a round draws from it.
var loadWords = words.Init

// RoundSummary describes a round whose countdown reached zero.
type RoundSummary struct {
	ScreenID   string
	StartedAt  time.Time
	FinishedAt time.Time
	Score      int
	Corrects   int
	Skips      int
}

// Options configures a Session. The zero value is usable.
type Options struct {
	ID          string             // generated when empty
	Clock       countdown.Clock    // SystemClock when nil
	Shuffle     words.Shuffler     // words.RandomShuffle when nil
	OnRoundOver func(RoundSummary) // called on its own goroutine
	Logger      *zerolog.Logger    // global logger when nil
}

// Session is a running screen.
type Session struct {
	ID      string
	Created time.Time

	clock       countdown.Clock
	state       *game.State
	onRoundOver func(RoundSummary)
	log         zerolog.Logger

	events    chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// loop-owned
	subs          map[int]chan game.Snapshot
	nextSub       int
	roundStarted  time.Time
	lastRoundOver bool
}

// Start creates a session, initializes its state and starts the countdown.
// It fails if the word list cannot be loaded.
func Start(opts Options) (*Session, error) {
	if err := loadWords(); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	clock := opts.Clock
	if clock == nil {
		clock = countdown.SystemClock
	}
	id := opts.ID
	if id == "" {
		id = NewID()
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	s := &Session{
		ID:          id,
		Created:     clock.Now(),
		clock:       clock,
		onRoundOver: opts.OnRoundOver,
		log:         logger.With().Str("screen", id).Logger(),
		events:      make(chan func(), 16),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		subs:        make(map[int]chan game.Snapshot),
	}
	sched := game.TimerScheduler{Clock: clock, Dispatch: s.post}
	s.state = game.New(sched, words.NewQueue(opts.Shuffle))
	s.state.Observe(s.broadcast)

	go s.loop()
	_ = s.do(s.initialize)
	s.log.Info().Msg("screen started")
	return s, nil
}

func (s *Session) loop() {
	defer close(s.stopped)
	for {
		select {
		case fn := <-s.events:
			fn()
		case <-s.done:
			s.shutdown()
			return
		}
	}
}

// post queues fn on the loop without waiting for it to run. Used as the
// countdown dispatcher; dropped once the session is closing.
func (s *Session) post(fn func()) {
	select {
	case s.events <- fn:
	case <-s.done:
	}
}

// do runs fn on the loop and waits for it.
func (s *Session) do(fn func()) error {
	ran := make(chan struct{})
	select {
	case s.events <- func() { fn(); close(ran) }:
	case <-s.done:
		return ErrClosed
	}
	select {
	case <-ran:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

func (s *Session) initialize() {
	s.roundStarted = s.clock.Now()
	s.lastRoundOver = false
	s.state.Initialize()
}

func (s *Session) shutdown() {
	s.state.Teardown()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.log.Info().Msg("screen closed")
}

// broadcast is the state observer; it runs on the loop.
func (s *Session) broadcast(snap game.Snapshot) {
	for _, ch := range s.subs {
		offer(ch, snap)
	}
	if snap.RoundOver && !s.lastRoundOver {
		sum := RoundSummary{
			ScreenID:   s.ID,
			StartedAt:  s.roundStarted,
			FinishedAt: s.clock.Now(),
			Score:      snap.Score,
			Corrects:   snap.Corrects,
			Skips:      snap.Skips,
		}
		s.log.Info().Int("score", sum.Score).Int("corrects", sum.Corrects).Int("skips", sum.Skips).Msg("round over")
		if s.onRoundOver != nil {
			go s.onRoundOver(sum)
		}
	}
	s.lastRoundOver = snap.RoundOver
}

// offer delivers snap, replacing an unread older snapshot if necessary.
func offer(ch chan game.Snapshot, snap game.Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

// Skip passes on the current word.
func (s *Session) Skip() error { return s.do(s.state.OnSkip) }

// Correct marks the current word as guessed.
func (s *Session) Correct() error { return s.do(s.state.OnCorrect) }

// Acknowledge consumes the finished signal.
func (s *Session) Acknowledge() error { return s.do(s.state.AcknowledgeFinish) }

// Restart begins a new round on the same screen.
func (s *Session) Restart() error {
	err := s.do(s.initialize)
	if err == nil {
		s.log.Info().Msg("round restarted")
	}
	return err
}

// Snapshot returns the current state.
func (s *Session) Snapshot() (game.Snapshot, error) {
	var snap game.Snapshot
	err := s.do(func() { snap = s.state.Snapshot() })
	return snap, err
}

// Subscribe returns a channel that receives the current snapshot and then
// every change. The channel is closed by cancel or by Close.
func (s *Session) Subscribe() (<-chan game.Snapshot, func(), error) {
	ch := make(chan game.Snapshot, 1)
	var id int
	err := s.do(func() {
		s.nextSub++
		id = s.nextSub
		s.subs[id] = ch
		offer(ch, s.state.Snapshot())
	})
	if err != nil {
		return nil, func() {}, err
	}
	cancel := func() {
		_ = s.do(func() {
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
	return ch, cancel, nil
}

// Close tears the screen down and waits for the loop to exit. It is
// idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.stopped
}

// Done is closed once Close has been called.
func (s *Session) Done() <-chan struct{} { return s.done }

// NewID returns a compact 16-hex-char identifier.
func NewID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
