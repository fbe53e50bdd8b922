// internal/game/types.go
//
// Core type definitions for the guessing screen.
// Defines:
//   - Buzz: the haptic cue selected by the last game event.
//   - Snapshot: an immutable copy of everything a renderer shows.
//   - Scheduler/Countdown: the injected periodic-timer capability.

package game

import (
	"fmt"
	"time"
)

// Buzz names a haptic cue. Each maps to a fixed vibration pattern.
type Buzz int

const (
	BuzzNone Buzz = iota
	BuzzCorrect
	BuzzPanic
	BuzzGameOver
)

var buzzNames = [...]string{
	BuzzNone:     "NONE",
	BuzzCorrect:  "CORRECT",
	BuzzPanic:    "PANIC",
	BuzzGameOver: "GAME_OVER",
}

// Vibration patterns in milliseconds: an initial delay, then alternating
// on/off durations.
var buzzPatterns = [...][]int64{
	BuzzNone:     {0},
	BuzzCorrect:  {100, 100, 100, 100, 100, 100},
	BuzzPanic:    {0, 200},
	BuzzGameOver: {0, 2000},
}

func (b Buzz) String() string {
	if b < 0 || int(b) >= len(buzzNames) {
		return fmt.Sprintf("Buzz(%d)", int(b))
	}
	return buzzNames[b]
}

// PatternMillis returns a copy of the cue's pattern in milliseconds.
func (b Buzz) PatternMillis() []int64 {
	if b < 0 || int(b) >= len(buzzPatterns) {
		return []int64{0}
	}
	return append([]int64(nil), buzzPatterns[b]...)
}

// Pattern returns the cue's pattern as durations.
func (b Buzz) Pattern() []time.Duration {
	ms := b.PatternMillis()
	out := make([]time.Duration, len(ms))
	for i, v := range ms {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}

// MarshalText encodes the cue by name.
func (b Buzz) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a cue name.
func (b *Buzz) UnmarshalText(text []byte) error {
	for i, name := range buzzNames {
		if name == string(text) {
			*b = Buzz(i)
			return nil
		}
	}
	return fmt.Errorf("game: unknown buzz %q", text)
}

// Snapshot is the observable state of a screen at one instant.
type Snapshot struct {
	Word        string  `json:"word"`
	Score       int     `json:"score"`
	Finished    bool    `json:"finished"`
	RemainingMs int64   `json:"remainingMs"`
	Time        string  `json:"time"` // MM:SS
	Buzz        Buzz    `json:"buzz"`
	Pattern     []int64 `json:"pattern"`
	Corrects    int     `json:"corrects"`
	Skips       int     `json:"skips"`
	RoundOver   bool    `json:"roundOver"` // timer reached zero; stays set after acknowledge
}

// Countdown is a running timer that can be canceled.
type Countdown interface {
	Cancel()
}

// Scheduler starts countdowns for the state holder. onTick and onFinish must
// be delivered on the same goroutine that drives the State's other methods,
// never concurrently with them.
type Scheduler interface {
	Countdown(total, interval time.Duration, onTick func(remaining time.Duration), onFinish func()) Countdown
}

// FormatElapsed renders d as MM:SS, or H:MM:SS from one hour up.
// Fractions of a second are truncated.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	h, m, s := secs/3600, (secs/60)%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
