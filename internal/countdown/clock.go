package countdown

import "time"

// Stopper cancels a scheduled callback. Stop reports whether the callback was
// still waiting; false means it already ran or was stopped before.
type Stopper interface {
	Stop() bool
}

// Clock is the time source a countdown runs on: it reads the current time and
// schedules one-shot callbacks. Timer builds its ticks from these alone, so a
// round can run on wall time or on a ManualClock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
	Now() time.Time
}

// SystemClock runs countdowns on wall time. Callbacks fire on their own
// goroutines, as with time.AfterFunc.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

func (systemClock) Now() time.Time { return time.Now() }
