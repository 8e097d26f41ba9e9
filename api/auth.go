/*
auth.go - Login, logout, and cookie sessions

PURPOSE:
  Cookie-based authentication for the dashboard. Users are static
  configuration entries with bcrypt password hashes; a successful login
  issues an opaque session token in the user_token cookie. Everything
  under /api except login requires a live session.

DESIGN:
  Sessions are held in memory with a TTL. Restarting the server logs
  everyone out, which is acceptable for an internal dashboard - there is
  no session persistence requirement.
*/
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/econs/opsboard/config"
)

const (
	sessionCookie = "user_token"
	sessionTTL    = 12 * time.Hour
)

// Session is one logged-in user.
type Session struct {
	Email     string
	Role      string
	ExpiresAt time.Time
}

// SessionStore holds live sessions, keyed by opaque token.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session)}
}

// Create issues a new session token for the user.
func (ss *SessionStore) Create(u *config.User, now time.Time) string {
	token := uuid.NewString()
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{Email: u.Email, Role: u.Role, ExpiresAt: now.Add(sessionTTL)}
	return token
}

// Get returns the session for a token, if present and unexpired.
func (ss *SessionStore) Get(token string, now time.Time) (Session, bool) {
	ss.mu.RLock()
	sess, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if now.After(sess.ExpiresAt) {
		ss.Delete(token)
		return Session{}, false
	}
	return sess, true
}

// Delete removes a session token.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// =============================================================================
// HANDLERS
// =============================================================================

// Login checks credentials against the configured users and sets the
// session cookie. Responds 401 on any mismatch without distinguishing
// unknown email from wrong password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user := h.Cfg.FindUser(req.Email)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token := h.Sessions.Create(user, h.Now())
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"user":   UserDTO{Email: user.Email, Role: user.Role},
	})
}

// Logout drops the session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		h.Sessions.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

// RequireSession rejects requests without a live session cookie.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		if _, ok := h.Sessions.Get(c.Value, h.Now()); !ok {
			writeError(w, http.StatusUnauthorized, "Session expired", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
