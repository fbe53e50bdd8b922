package game

import (
	"encoding/json"
	"slices"
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{60 * time.Second, "01:00"},
		{59999 * time.Millisecond, "00:59"},
		{9 * time.Second, "00:09"},
		{0, "00:00"},
		{-time.Second, "00:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tc := range cases {
		if got := FormatElapsed(tc.in); got != tc.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuzzPatterns(t *testing.T) {
	cases := []struct {
		b    Buzz
		name string
		ms   []int64
	}{
		{BuzzCorrect, "CORRECT", []int64{100, 100, 100, 100, 100, 100}},
		{BuzzPanic, "PANIC", []int64{0, 200}},
		{BuzzGameOver, "GAME_OVER", []int64{0, 2000}},
		{BuzzNone, "NONE", []int64{0}},
	}
	for _, tc := range cases {
		if tc.b.String() != tc.name {
			t.Errorf("String() = %q, want %q", tc.b.String(), tc.name)
		}
		if !slices.Equal(tc.b.PatternMillis(), tc.ms) {
			t.Errorf("%s pattern = %v, want %v", tc.name, tc.b.PatternMillis(), tc.ms)
		}
		if d := tc.b.Pattern(); len(d) != len(tc.ms) || d[0] != time.Duration(tc.ms[0])*time.Millisecond {
			t.Errorf("%s durations = %v", tc.name, d)
		}
	}
}

func TestBuzzPatternIsCopy(t *testing.T) {
	p := BuzzPanic.PatternMillis()
	p[1] = 9999
	if BuzzPanic.PatternMillis()[1] != 200 {
		t.Fatalf("pattern table mutated through copy")
	}
}

func TestBuzzJSON(t *testing.T) {
	b, err := json.Marshal(Snapshot{Buzz: BuzzGameOver})
	if err != nil {
		t.Fatal(err)
	}
	var back struct {
		Buzz Buzz `json:"buzz"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Buzz != BuzzGameOver {
		t.Errorf("round trip = %v", back.Buzz)
	}
	var bad Buzz
	if err := bad.UnmarshalText([]byte("LOUD")); err == nil {
		t.Errorf("expected error for unknown cue")
	}
}
