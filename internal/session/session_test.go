package session

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/guesstheword/internal/countdown"
	"github.com/robalobadob/guesstheword/internal/game"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, hook func(RoundSummary)) (*Session, *countdown.ManualClock) {
	t.Helper()
	clock := countdown.NewManualClock(epoch)
	nop := zerolog.Nop()
	s, err := Start(Options{
		ID:          "screen-1",
		Clock:       clock,
		Shuffle:     func(ws []string) { slices.Reverse(ws) },
		OnRoundOver: hook,
		Logger:      &nop,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Close)
	return s, clock
}

func mustSnapshot(t *testing.T, s *Session) game.Snapshot {
	t.Helper()
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return snap
}

func TestStartInitializes(t *testing.T) {
	s, clock := newTestSession(t, nil)
	snap := mustSnapshot(t, s)
	if snap.Score != 0 || snap.RemainingMs != 60000 || snap.Word != "bubble" || snap.Finished {
		t.Fatalf("initial snapshot: %+v", snap)
	}
	if clock.Pending() != 1 {
		t.Errorf("countdown not armed")
	}
	if s.ID != "screen-1" || !s.Created.Equal(epoch) {
		t.Errorf("ID=%q Created=%v", s.ID, s.Created)
	}
}

func TestCommandsAndCountdown(t *testing.T) {
	s, clock := newTestSession(t, nil)
	if err := s.Correct(); err != nil {
		t.Fatal(err)
	}
	if err := s.Skip(); err != nil {
		t.Fatal(err)
	}
	if err := s.Correct(); err != nil {
		t.Fatal(err)
	}
	snap := mustSnapshot(t, s)
	if snap.Score != 1 || snap.Corrects != 2 || snap.Skips != 1 || snap.Buzz != game.BuzzCorrect {
		t.Fatalf("after commands: %+v", snap)
	}

	clock.Advance(20 * time.Second)
	snap = mustSnapshot(t, s)
	if snap.RemainingMs != 40000 || snap.Buzz != game.BuzzPanic || snap.Time != "00:40" {
		t.Fatalf("after 20s: %+v", snap)
	}

	clock.Advance(40 * time.Second)
	snap = mustSnapshot(t, s)
	if !snap.Finished || snap.Buzz != game.BuzzGameOver || snap.RemainingMs != 0 || !snap.RoundOver {
		t.Fatalf("after 60s: %+v", snap)
	}

	if err := s.Acknowledge(); err != nil {
		t.Fatal(err)
	}
	if snap = mustSnapshot(t, s); snap.Finished {
		t.Errorf("still finished after acknowledge")
	}
}

func TestRoundOverHookFiresOnce(t *testing.T) {
	got := make(chan RoundSummary, 4)
	s, clock := newTestSession(t, func(r RoundSummary) { got <- r })
	_ = s.Correct()
	_ = s.Correct()
	_ = s.Skip()
	clock.Advance(time.Minute)
	_ = s.Acknowledge()
	_ = s.Correct()

	select {
	case r := <-got:
		if r.ScreenID != "screen-1" || r.Score != 1 || r.Corrects != 2 || r.Skips != 1 {
			t.Errorf("summary = %+v", r)
		}
		if !r.StartedAt.Equal(epoch) || !r.FinishedAt.Equal(epoch.Add(time.Minute)) {
			t.Errorf("times = %v .. %v", r.StartedAt, r.FinishedAt)
		}
	case <-time.After(time.Second):
		t.Fatal("hook not called")
	}
	select {
	case r := <-got:
		t.Errorf("hook called twice: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRestartStartsNewRound(t *testing.T) {
	s, clock := newTestSession(t, nil)
	_ = s.Correct()
	clock.Advance(time.Minute)
	if err := s.Restart(); err != nil {
		t.Fatal(err)
	}
	snap := mustSnapshot(t, s)
	if snap.Score != 0 || snap.RoundOver || snap.Finished || snap.RemainingMs != 60000 {
		t.Fatalf("after restart: %+v", snap)
	}
	clock.Advance(10 * time.Second)
	if snap = mustSnapshot(t, s); snap.RemainingMs != 50000 {
		t.Errorf("remaining = %d, want 50000", snap.RemainingMs)
	}
}

func waitFor(t *testing.T, ch <-chan game.Snapshot, ok func(game.Snapshot) bool) game.Snapshot {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case snap, open := <-ch:
			if !open {
				t.Fatal("subscription closed")
			}
			if ok(snap) {
				return snap
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestSubscribe(t *testing.T) {
	s, _ := newTestSession(t, nil)
	ch, cancel, err := s.Subscribe()
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, ch, func(sn game.Snapshot) bool { return sn.Score == 0 })

	_ = s.Correct()
	_ = s.Correct()
	waitFor(t, ch, func(sn game.Snapshot) bool { return sn.Score == 2 })

	cancel()
	for range ch {
	}
}

func TestCloseStopsEverything(t *testing.T) {
	s, clock := newTestSession(t, nil)
	ch, _, err := s.Subscribe()
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	s.Close()

	if err := s.Skip(); !errors.Is(err, ErrClosed) {
		t.Errorf("Skip after Close: %v", err)
	}
	if _, err := s.Snapshot(); !errors.Is(err, ErrClosed) {
		t.Errorf("Snapshot after Close: %v", err)
	}
	if _, _, err := s.Subscribe(); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after Close: %v", err)
	}
	if clock.Pending() != 0 {
		t.Errorf("countdown still armed after Close")
	}
	clock.Advance(time.Minute)

	for range ch {
	}
	select {
	case <-s.Done():
	default:
		t.Errorf("Done not closed")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if len(a) != 16 || a == b {
		t.Errorf("NewID() = %q, %q", a, b)
	}
}

func TestStartFailsWithoutWords(t *testing.T) {
	broken := errors.New("word list unreadable")
	prev := loadWords
	loadWords = func() error { return broken }
	t.Cleanup(func() { loadWords = prev })

	clock := countdown.NewManualClock(epoch)
	s, err := Start(Options{Clock: clock})
	if !errors.Is(err, broken) {
		t.Fatalf("Start error = %v, want %v", err, broken)
	}
	if s != nil {
		t.Error("Start returned a session alongside an error")
	}
	if clock.Pending() != 0 {
		t.Error("countdown armed for a session that never started")
	}
}
