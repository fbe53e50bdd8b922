// Command guesstheword-tui plays one screen in the terminal.
//
// Keys: s skip, c or space correct, enter acknowledge, r new round once the
// round is over, q or Esc quit.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/config"
	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/haptics"
	"github.com/robalobadob/guesstheword/internal/session"
)

type ui struct {
	screen tcell.Screen
	sess   *session.Session
	driver *haptics.Driver
	last   game.Snapshot
}

func main() {
	cfg := config.Load()
	closeLog := setupLogging(cfg)
	defer closeLog()

	vib, closeVib := pickVibrator(cfg.Haptics)
	defer closeVib()

	sess, err := session.Start(session.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	u := &ui{
		screen: screen,
		sess:   sess,
		driver: haptics.NewDriver(vib),
	}

	u.run()
}

// setupLogging sends logs to cfg.LogFile; the terminal belongs to the screen.
func setupLogging(cfg config.Config) func() {
	zerolog.SetGlobalLevel(cfg.LogLevel)
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Logger = zerolog.New(io.Discard)
		return func() {}
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { _ = f.Close() }
}

func pickVibrator(mode string) (haptics.Vibrator, func()) {
	switch mode {
	case "off":
		return haptics.Nop{}, func() {}
	case "log":
		return haptics.LogVibrator{Log: log.Logger}, func() {}
	}
	b, err := haptics.NewBeepVibrator()
	if err != nil {
		// Non-fatal, cues still reach the log.
		log.Warn().Err(err).Msg("audio unavailable, logging cues instead")
		return haptics.LogVibrator{Log: log.Logger}, func() {}
	}
	return b, b.Close
}

func (u *ui) run() {
	snaps, cancel, err := u.sess.Subscribe()
	if err != nil {
		return
	}
	defer cancel()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			u.last = snap
			u.driver.Observe(snap)
			u.draw()
		case ev, ok := <-events:
			if !ok || !u.handle(ev) {
				return
			}
		}
	}
}

// handle applies one terminal event. It returns false to quit.
func (u *ui) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyEnter:
			_ = u.sess.Acknowledge()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 's':
				_ = u.sess.Skip()
			case 'c', ' ':
				_ = u.sess.Correct()
			case 'r':
				if u.last.RoundOver {
					u.driver.Reset()
					_ = u.sess.Restart()
				}
			}
		}
	case *tcell.EventResize:
		u.screen.Sync()
		u.draw()
	}
	return true
}

func (u *ui) draw() {
	s := u.last
	u.screen.Clear()
	w, h := u.screen.Size()
	mid := h / 2

	timeStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	switch {
	case s.RoundOver:
		timeStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	case s.RemainingMs <= 10_000:
		timeStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	}

	u.center(w, mid-4, "The word is:", tcell.StyleDefault.Foreground(tcell.ColorGray))
	u.center(w, mid-2, "\""+s.Word+"\"", tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true))
	u.center(w, mid, "Score: "+strconv.Itoa(s.Score), tcell.StyleDefault)
	u.center(w, mid+1, s.Time, timeStyle)

	switch {
	case s.Finished:
		u.center(w, mid+3, "Time's up! Press enter.", tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
	case s.RoundOver:
		u.center(w, mid+3, "Round over. Press r to play again.", tcell.StyleDefault.Foreground(tcell.ColorGray))
	default:
		u.center(w, mid+3, "[s] skip   [c] correct", tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
	if s.Buzz != game.BuzzNone {
		u.center(w, h-1, "buzz: "+s.Buzz.String(), tcell.StyleDefault.Foreground(tcell.ColorPurple))
	}
	u.screen.Show()
}

func (u *ui) center(width, y int, text string, style tcell.Style) {
	x := (width - len(text)) / 2
	if x < 0 {
		x = 0
	}
	for i, r := range []rune(text) {
		u.screen.SetContent(x+i, y, r, nil, style)
	}
}
