// internal/httpserver/routes_screens.go
//
// HTTP routes for screens. Each screen is one independent round holder:
//   - POST   /screens              → start a screen, returns its token
//   - GET    /screens/{id}         → current snapshot
//   - POST   /screens/{id}/skip    → skip-word
//   - POST   /screens/{id}/correct → mark-correct
//   - POST   /screens/{id}/ack     → acknowledge-finish
//   - POST   /screens/{id}/restart → start a new round on the same screen
//   - DELETE /screens/{id}         → tear the screen down
//
// A screen nobody deletes is torn down when its token expires.
//   - GET    /screens/{id}/ws      → snapshot push (see ws.go)

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/session"
)

// mountScreens registers all /screens routes.
func (s *Server) mountScreens() {
	s.r.Route("/screens", func(r chi.Router) {
		r.With(chimw.Timeout(handlerTimeout)).Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.requireScreen)
			r.Get("/ws", s.handleWS)
			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(handlerTimeout))
				r.Get("/", s.handleState)
				r.Post("/skip", s.command((*session.Session).Skip))
				r.Post("/correct", s.command((*session.Session).Correct))
				r.Post("/ack", s.command((*session.Session).Acknowledge))
				r.Post("/restart", s.command((*session.Session).Restart))
				r.Delete("/", s.handleDelete)
			})
		})
	})
}

// createRes is returned by POST /screens.
type createRes struct {
	ScreenID  string        `json:"screenId"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	State     game.Snapshot `json:"state"`
}

// handleCreate starts a new screen session and issues its token.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Start(session.Options{
		Clock:       s.clock,
		OnRoundOver: s.recordRound,
	})
	if err != nil {
		log.Error().Err(err).Msg("start screen")
		jsonError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	tok, exp, err := s.signToken(sess.ID)
	if err != nil {
		sess.Close()
		log.Error().Err(err).Msg("sign screen token")
		jsonError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		sess.Close()
		log.Error().Err(err).Msg("save screen")
		jsonError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.expireAfter(sess.ID, s.ttl)
	snap, err := sess.Snapshot()
	if err != nil {
		jsonError(w, http.StatusGone, "closed")
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createRes{ScreenID: sess.ID, Token: tok, ExpiresAt: exp, State: snap})
}

// handleState returns the current snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeSnapshot(w, screenFrom(r))
}

// command adapts a session command into a handler that answers with the
// resulting snapshot.
func (s *Server) command(fn func(*session.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := screenFrom(r)
		if err := fn(sess); err != nil {
			writeSessionError(w, err)
			return
		}
		writeSnapshot(w, sess)
	}
}

// handleDelete removes and tears down the screen.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.Delete(r.Context(), id)
	if err != nil {
		jsonError(w, http.StatusNotFound, "not_found")
		return
	}
	s.cancelExpiry(id)
	sess.Close()
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// expireAfter schedules the screen's teardown for when its token runs out.
// After that no request can reach the screen.
func (s *Server) expireAfter(id string, d time.Duration) {
	t := s.clock.AfterFunc(d, func() { s.evict(id) })
	s.mu.Lock()
	s.expiry[id] = t
	s.mu.Unlock()
}

func (s *Server) cancelExpiry(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.expiry[id]; ok {
		t.Stop()
		delete(s.expiry, id)
	}
}

// evict removes and closes an expired screen.
func (s *Server) evict(id string) {
	s.mu.Lock()
	delete(s.expiry, id)
	s.mu.Unlock()
	sess, err := s.store.Delete(context.Background(), id)
	if err != nil {
		return
	}
	sess.Close()
	log.Info().Str("screen", id).Msg("screen expired")
}

func writeSnapshot(w http.ResponseWriter, sess *session.Session) {
	snap, err := sess.Snapshot()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrClosed) {
		jsonError(w, http.StatusGone, "closed")
		return
	}
	log.Error().Err(err).Msg("screen command")
	jsonError(w, http.StatusInternalServerError, "server_error")
}
