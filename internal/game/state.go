// internal/game/state.go
//
// Presentation state of a single guessing screen.
// Responsibilities:
//   - Track word, score, remaining time, finished flag and haptic cue.
//   - Draw words from the shuffled pending queue, refilling as needed.
//   - Drive one 60-second countdown through the injected Scheduler.
//   - Notify observers with a Snapshot after every change.
//
// Notes:
//   - State is single-owner and has no locks. Every method, including the
//     countdown callbacks, must run on one goroutine (see session.Session).
//   - Calls before Initialize and after Teardown are no-ops.
package game

import (
	"time"

	"github.com/robalobadob/guesstheword/internal/words"
)

const (
	// CountdownTime is the length of a round.
	CountdownTime = 60 * time.Second
	// TickInterval is the countdown resolution.
	TickInterval = time.Second
)

type phase int

const (
	phaseIdle phase = iota
	phaseRunning
	phaseOver
	phaseTornDown
)

type observer struct {
	id int
	fn func(Snapshot)
}

// State holds the observable fields of one screen.
type State struct {
	word      string
	score     int
	remaining time.Duration
	finished  bool
	buzz      Buzz
	corrects  int
	skips     int

	phase     phase
	queue     *words.Queue
	sched     Scheduler
	countdown Countdown

	observers []observer
	nextObs   int
}

// New returns an idle state. Nothing happens until Initialize.
// A nil queue gets a randomly shuffled one.
func New(sched Scheduler, queue *words.Queue) *State {
	if queue == nil {
		queue = words.NewQueue(nil)
	}
	return &State{
		remaining: CountdownTime,
		queue:     queue,
		sched:     sched,
	}
}

// Initialize starts a round: resets every field, refills and reshuffles the
// queue, draws the first word and starts the countdown. Calling it again
// abandons the current round and starts a fresh one.
func (s *State) Initialize() {
	if s.phase == phaseTornDown {
		return
	}
	s.stopCountdown()

	s.score = 0
	s.word = ""
	s.remaining = CountdownTime
	s.finished = false
	s.buzz = BuzzNone
	s.corrects, s.skips = 0, 0
	s.phase = phaseRunning

	s.queue.Reset()
	s.advanceWord()

	if s.sched != nil {
		s.countdown = s.sched.Countdown(CountdownTime, TickInterval, s.OnTimerTick, s.OnTimerFinish)
	}
	s.notify()
}

// OnSkip costs a point and moves on. The cue is left as is.
func (s *State) OnSkip() {
	if !s.live() {
		return
	}
	s.score--
	s.skips++
	s.advanceWord()
	s.notify()
}

// OnCorrect earns a point, buzzes and moves on.
func (s *State) OnCorrect() {
	if !s.live() {
		return
	}
	s.score++
	s.corrects++
	s.buzz = BuzzCorrect
	s.advanceWord()
	s.notify()
}

// advanceWord pops the next word, refilling the queue first if it ran dry.
func (s *State) advanceWord() {
	s.word = s.queue.Next()
}

// OnTimerTick records the time left. Every tick selects the panic cue,
// whatever the remaining time.
func (s *State) OnTimerTick(remaining time.Duration) {
	if s.phase != phaseRunning {
		return
	}
	s.remaining = clampRemaining(remaining)
	s.buzz = BuzzPanic
	s.notify()
}

// OnTimerFinish ends the round. Only the first call has an effect.
func (s *State) OnTimerFinish() {
	if s.phase != phaseRunning {
		return
	}
	s.phase = phaseOver
	s.remaining = 0
	s.finished = true
	s.buzz = BuzzGameOver
	s.countdown = nil
	s.notify()
}

// AcknowledgeFinish consumes the finished signal. It does not start a new
// round.
func (s *State) AcknowledgeFinish() {
	if !s.live() || !s.finished {
		return
	}
	s.finished = false
	s.notify()
}

// Teardown cancels the countdown and detaches observers. It is idempotent;
// afterwards every method is a no-op.
func (s *State) Teardown() {
	if s.phase == phaseTornDown {
		return
	}
	s.stopCountdown()
	s.phase = phaseTornDown
	s.observers = nil
}

func (s *State) stopCountdown() {
	if s.countdown != nil {
		s.countdown.Cancel()
		s.countdown = nil
	}
}

func (s *State) live() bool {
	return s.phase == phaseRunning || s.phase == phaseOver
}

func clampRemaining(d time.Duration) time.Duration {
	switch {
	case d < 0:
		return 0
	case d > CountdownTime:
		return CountdownTime
	}
	return d
}

// Observe registers fn to receive a snapshot after every change. The
// returned func unregisters it. Observers run synchronously on the state's
// goroutine and must not call back into the State.
func (s *State) Observe(fn func(Snapshot)) (cancel func()) {
	if s.phase == phaseTornDown {
		return func() {}
	}
	s.nextObs++
	id := s.nextObs
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *State) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, o := range s.observers {
		o.fn(snap)
	}
}

// Snapshot copies the observable fields.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Word:        s.word,
		Score:       s.score,
		Finished:    s.finished,
		RemainingMs: s.remaining.Milliseconds(),
		Time:        FormatElapsed(s.remaining),
		Buzz:        s.buzz,
		Pattern:     s.buzz.PatternMillis(),
		Corrects:    s.corrects,
		Skips:       s.skips,
		RoundOver:   s.phase == phaseOver,
	}
}

func (s *State) Word() string             { return s.word }
func (s *State) Score() int               { return s.score }
func (s *State) Remaining() time.Duration { return s.remaining }
func (s *State) Finished() bool           { return s.finished }
func (s *State) Buzz() Buzz               { return s.buzz }

// Running reports whether the countdown is still going.
func (s *State) Running() bool { return s.phase == phaseRunning }

// RoundOver reports whether the countdown has reached zero.
func (s *State) RoundOver() bool { return s.phase == phaseOver }

// TornDown reports whether Teardown has run.
func (s *State) TornDown() bool { return s.phase == phaseTornDown }
