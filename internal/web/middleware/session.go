package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/photo-report/internal/photo"
	"github.com/kozaktomas/photo-report/internal/report"
)

const (
	sessionCookieName  = "photo_report_session"
	defaultSessionTTL  = 12 * time.Hour
	minCleanupInterval = time.Second
)

// Session binds a browser to its own report. A session is idle-expired:
// every request moves its deadline forward by the TTL.
type Session struct {
	ID        string
	Report    *report.Report
	CreatedAt time.Time

	lastSeen time.Time // guarded by SessionManager.mu
}

// SessionManager handles session creation and validation.
type SessionManager struct {
	secret   []byte
	ttl      time.Duration
	sessions map[string]*Session
	mu       sync.Mutex
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// randomSecret returns a per-process signing key. Sessions live in memory,
// so cookies signed with it are useless after a restart anyway.
func randomSecret() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return key
}

// NewSessionManager creates a session manager and starts the goroutine that
// evicts idle sessions. Call Stop to end it. An empty secret is replaced by
// a random one.
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	key := []byte(secret)
	if secret == "" {
		key = randomSecret()
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	sm := &SessionManager{
		secret:   key,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go sm.cleanupLoop(max(ttl/4, minCleanupInterval))
	return sm
}

// CreateSession creates a session with an empty report.
func (sm *SessionManager) CreateSession() (*Session, error) {
	idBytes := make([]byte, 32)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, err
	}
	sessionID := base64.RawURLEncoding.EncodeToString(idBytes)

	now := sm.now()
	session := &Session{
		ID:        sessionID,
		Report:    report.New(photo.NewID(), now),
		CreatedAt: now,
		lastSeen:  now,
	}

	sm.mu.Lock()
	sm.sessions[sessionID] = session
	sm.mu.Unlock()

	return session, nil
}

// GetSession retrieves a live session by ID and refreshes its idle deadline.
func (sm *SessionManager) GetSession(sessionID string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[sessionID]
	if !ok {
		return nil
	}
	now := sm.now()
	if now.Sub(session.lastSeen) > sm.ttl {
		delete(sm.sessions, sessionID)
		return nil
	}
	session.lastSeen = now
	return session
}

// DeleteSession removes a session.
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()
}

// Count returns the number of sessions held, expired or not.
func (sm *SessionManager) Count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

// SetSessionCookie sets the session cookie on the response.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID + "." + sm.signData(session.ID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie.
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionFromRequest extracts the session from the signed cookie or a
// bearer token.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *Session {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if sessionID, signature, ok := strings.Cut(cookie.Value, "."); ok && sm.verifySignature(sessionID, signature) {
			if session := sm.GetSession(sessionID); session != nil {
				return session
			}
		}
	}

	authHeader := r.Header.Get("Authorization")
	if sessionID, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return sm.GetSession(sessionID)
	}
	return nil
}

// CleanupExpired removes sessions idle for longer than the TTL and returns
// how many were removed.
func (sm *SessionManager) CleanupExpired() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	removed := 0
	for id, session := range sm.sessions {
		if now.Sub(session.lastSeen) > sm.ttl {
			delete(sm.sessions, id)
			removed++
		}
	}
	return removed
}

func (sm *SessionManager) cleanupLoop(interval time.Duration) {
	defer close(sm.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-sm.stop:
			return
		case <-ticker.C:
			if n := sm.CleanupExpired(); n > 0 {
				log.Printf("Sessions: evicted %d idle session(s)", n)
			}
		}
	}
}

// Stop ends the cleanup goroutine and waits for it to exit. It is safe to
// call more than once.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() { close(sm.stop) })
	<-sm.done
}

// signData creates an HMAC signature for data.
func (sm *SessionManager) signData(data string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies an HMAC signature.
func (sm *SessionManager) verifySignature(data, signature string) bool {
	return hmac.Equal([]byte(signature), []byte(sm.signData(data)))
}
