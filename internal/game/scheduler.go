package game

import (
	"time"

	"github.com/robalobadob/guesstheword/internal/countdown"
)

// TimerScheduler backs Scheduler with countdown.Timer.
// Dispatch, when set, receives every callback so the owner can run it on the
// State's goroutine; it must not run the callback inline if it is called
// from a goroutine other than the owner's.
type TimerScheduler struct {
	Clock    countdown.Clock
	Dispatch func(func())
}

// Countdown starts a timer and returns it.
func (ts TimerScheduler) Countdown(total, interval time.Duration, onTick func(time.Duration), onFinish func()) Countdown {
	var opts []countdown.Option
	if ts.Clock != nil {
		opts = append(opts, countdown.WithClock(ts.Clock))
	}
	if ts.Dispatch != nil {
		opts = append(opts, countdown.WithDispatcher(ts.Dispatch))
	}
	t := countdown.New(total, interval, onTick, onFinish, opts...)
	t.Start()
	return t
}
