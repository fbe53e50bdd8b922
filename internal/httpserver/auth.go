package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/guesstheword/internal/session"
)

// ctxScreenKey is the context key type for the authorized *session.Session.
type ctxScreenKey struct{}

var errTokenScreen = errors.New("token issued for another screen")

// signToken creates an HS256 JWT that grants control of one screen.
func (s *Server) signToken(screenID string) (string, time.Time, error) {
	now := s.clock.Now()
	exp := now.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": screenID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// verifyToken checks signature, expiry and that the token names screenID.
func (s *Server) verifyToken(tokenStr, screenID string) error {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenInvalidClaims
	}
	if sid, _ := claims["sid"].(string); sid == "" || sid != screenID {
		return errTokenScreen
	}
	return nil
}

// bearerOrQuery extracts a bearer token from the Authorization header, or
// from ?token= for clients that cannot set headers (browser WebSockets).
func bearerOrQuery(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}

// requireScreen enforces a valid screen token for {id} and injects the
// session into the request context.
func (s *Server) requireScreen(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		tokenStr := bearerOrQuery(r)
		if tokenStr == "" {
			jsonError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := s.verifyToken(tokenStr, id); err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		sess, err := s.store.Get(r.Context(), id)
		if err != nil {
			jsonError(w, http.StatusNotFound, "not_found")
			return
		}
		ctx := context.WithValue(r.Context(), ctxScreenKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// screenFrom returns the session placed by requireScreen.
func screenFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(ctxScreenKey{}).(*session.Session)
	return sess
}
