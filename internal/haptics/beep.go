package haptics

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	buzzFreq   = 140.0
)

// BeepVibrator renders patterns as a low buzz on the speaker, for machines
// without a vibration motor.
type BeepVibrator struct {
	mu          sync.Mutex
	initialized bool
}

// NewBeepVibrator initializes the speaker. On error the caller should fall
// back to another Vibrator.
func NewBeepVibrator() (*BeepVibrator, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &BeepVibrator{initialized: true}, nil
}

// Vibrate stops the current pattern and plays this one.
func (b *BeepVibrator) Vibrate(pattern []time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	s := Streamer(pattern)
	speaker.Clear()
	if s != nil {
		speaker.Play(s)
	}
}

// Close stops playback and releases the speaker.
func (b *BeepVibrator) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	b.initialized = false
}

// Streamer converts a pattern to audio: even segments are silence, odd
// segments are buzz. It returns nil when nothing would be audible.
func Streamer(pattern []time.Duration) beep.Streamer {
	if OnTime(pattern) <= 0 {
		return nil
	}
	parts := make([]beep.Streamer, 0, len(pattern))
	for i, d := range pattern {
		n := sampleRate.N(d)
		if n <= 0 {
			continue
		}
		if i%2 == 0 {
			parts = append(parts, beep.Silence(n))
		} else {
			parts = append(parts, beep.Take(n, newBuzzGenerator(sampleRate, buzzFreq)))
		}
	}
	return beep.Seq(parts...)
}

// buzzGenerator generates a low-pitch buzz with a few harmonics.
type buzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

func newBuzzGenerator(sr beep.SampleRate, freq float64) *buzzGenerator {
	return &buzzGenerator{sr: sr, freq: freq}
}

func (g *buzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		sample := 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*3*t)

		// fade in over 10ms to avoid clicks
		envelope := math.Min(t/0.01, 1.0)
		sample *= envelope * 0.4

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *buzzGenerator) Err() error {
	return nil
}
