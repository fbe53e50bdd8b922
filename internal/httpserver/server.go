// internal/httpserver/server.go
//
// HTTP server wiring for the screen host.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words", "/results".
//   - Screen endpoints: POST /screens, then /screens/{id}/* guarded by the
//     screen token issued at creation.
//   - WebSocket push of snapshots on /screens/{id}/ws.
//   - Journaling of finished rounds (best effort).
//   - Eviction of screens once their token has expired.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - The WebSocket route is kept out of the handler timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/countdown"
	"github.com/robalobadob/guesstheword/internal/results"
	"github.com/robalobadob/guesstheword/internal/session"
	"github.com/robalobadob/guesstheword/internal/store"
	"github.com/robalobadob/guesstheword/internal/words"
)

const handlerTimeout = 10 * time.Second

// Journal stores finished rounds. *results.Store implements it.
type Journal interface {
	Record(ctx context.Context, r results.Round) (int64, error)
	Top(ctx context.Context, limit int) ([]results.Round, error)
}

// Options configures a Server.
type Options struct {
	Store        store.Store
	Journal      Journal         // nil disables /results and round journaling
	Secret       string          // HMAC key for screen tokens
	TokenTTL     time.Duration   // screen token lifetime
	ClientOrigin string          // CORS origin
	Clock        countdown.Clock // SystemClock when nil
}

// Server bundles router, session store and journal.
type Server struct {
	r       *chi.Mux
	store   store.Store
	journal Journal
	secret  []byte
	ttl     time.Duration
	origin  string
	clock   countdown.Clock

	mu     sync.Mutex
	expiry map[string]countdown.Stopper // screen ID -> pending eviction
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   opts.Store,
		journal: opts.Journal,
		secret:  []byte(opts.Secret),
		ttl:     opts.TokenTTL,
		origin:  opts.ClientOrigin,
		clock:   opts.Clock,
		expiry:  make(map[string]countdown.Stopper),
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.ttl <= 0 {
		s.ttl = 12 * time.Hour
	}
	if s.origin == "" {
		s.origin = "http://localhost:5173"
	}
	if s.clock == nil {
		s.clock = countdown.SystemClock
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.With(chimw.Timeout(handlerTimeout)).Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"guesstheword","endpoints":["/health","POST /screens","/screens/{id}","/results"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"words": words.Stats(), "screens": s.store.Len()})
	})

	s.mountScreens()
	s.r.With(chimw.Timeout(handlerTimeout)).Get("/results", s.handleResults)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Shutdown cancels pending evictions and closes every live screen.
func (s *Server) Shutdown() {
	s.mu.Lock()
	for id, t := range s.expiry {
		t.Stop()
		delete(s.expiry, id)
	}
	s.mu.Unlock()
	s.store.CloseAll()
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// jsonError writes {"error":code} with status.
func jsonError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// ------------------------------ RESULTS ------------------------------------

type resultsRes struct {
	Top []results.Round `json:"top"`
}

// handleResults returns the best finished rounds (?limit=, default 20, at
// most 100).
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		_ = json.NewEncoder(w).Encode(resultsRes{Top: []results.Round{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.journal.Top(r.Context(), results.ClampLimit(limit))
	if err != nil {
		log.Error().Err(err).Msg("list results")
		jsonError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if rows == nil {
		rows = []results.Round{}
	}
	_ = json.NewEncoder(w).Encode(resultsRes{Top: rows})
}

// recordRound journals a finished round. Failures are logged, not fatal.
func (s *Server) recordRound(sum session.RoundSummary) {
	if s.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := s.journal.Record(ctx, results.Round{
		ScreenID:   sum.ScreenID,
		Score:      sum.Score,
		Corrects:   sum.Corrects,
		Skips:      sum.Skips,
		StartedAt:  sum.StartedAt,
		FinishedAt: sum.FinishedAt,
	})
	if err != nil {
		log.Warn().Err(err).Str("screen", sum.ScreenID).Msg("record round")
		return
	}
	log.Debug().Int64("round", id).Str("screen", sum.ScreenID).Msg("round recorded")
}
