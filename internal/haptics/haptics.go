// Package haptics turns the screen's cue changes into vibrations.
//
// Patterns follow the platform convention: the first duration is a delay,
// then durations alternate between on and off.
package haptics

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/guesstheword/internal/game"
)

// Vibrator plays a vibration pattern, replacing whatever is playing.
type Vibrator interface {
	Vibrate(pattern []time.Duration)
}

// Nop ignores every pattern.
type Nop struct{}

func (Nop) Vibrate([]time.Duration) {}

// LogVibrator writes each pattern to a logger.
type LogVibrator struct {
	Log zerolog.Logger
}

func (l LogVibrator) Vibrate(pattern []time.Duration) {
	l.Log.Debug().Dur("on", OnTime(pattern)).Int("segments", len(pattern)).Msg("vibrate")
}

// OnTime sums the "on" segments of a pattern.
func OnTime(pattern []time.Duration) time.Duration {
	var on time.Duration
	for i := 1; i < len(pattern); i += 2 {
		on += pattern[i]
	}
	return on
}

// Driver watches snapshots and vibrates whenever a cue is raised: every
// correct guess, every countdown tick, and the end of the round.
type Driver struct {
	v    Vibrator
	prev game.Snapshot
	seen bool
}

// NewDriver wraps v. A nil v means Nop.
func NewDriver(v Vibrator) *Driver {
	if v == nil {
		v = Nop{}
	}
	return &Driver{v: v}
}

// Observe handles the next snapshot of a single screen.
func (d *Driver) Observe(cur game.Snapshot) {
	prev, seen := d.prev, d.seen
	d.prev, d.seen = cur, true
	if !seen {
		prev = game.Snapshot{RemainingMs: -1}
	}
	if raised(prev, cur) {
		d.v.Vibrate(cur.Buzz.Pattern())
	}
}

// Reset forgets the previous snapshot, e.g. when a new round starts.
func (d *Driver) Reset() {
	d.prev, d.seen = game.Snapshot{}, false
}

func raised(prev, cur game.Snapshot) bool {
	switch cur.Buzz {
	case game.BuzzCorrect:
		return cur.Corrects != prev.Corrects || prev.Buzz != game.BuzzCorrect
	case game.BuzzPanic:
		return cur.RemainingMs != prev.RemainingMs || prev.Buzz != game.BuzzPanic
	case game.BuzzGameOver:
		return prev.Buzz != game.BuzzGameOver
	}
	return false
}
