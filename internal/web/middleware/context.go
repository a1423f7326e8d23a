package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/kozaktomas/photo-report/internal/report"
)

type contextKey string

const sessionContextKey contextKey = "session"

// EnsureSession attaches the caller's session to the request context,
// creating a new session and report on first contact.
func EnsureSession(sm *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sm.GetSessionFromRequest(r)
			if session == nil {
				var err error
				session, err = sm.CreateSession()
				if err != nil {
					log.Printf("Sessions: failed to create session: %v", err)
					http.Error(w, `{"error": "failed to create session"}`, http.StatusInternalServerError)
					return
				}
				sm.SetSessionCookie(w, session)
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext retrieves the session from the request context.
func GetSessionFromContext(ctx context.Context) *Session {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return session
}

// SetSessionInContext adds a session to the context.
// This is primarily for testing - use EnsureSession middleware in production.
func SetSessionInContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// MustGetReport retrieves the session report from context.
// If not available, writes an error response and returns nil.
// Handlers should return immediately after receiving nil.
func MustGetReport(ctx context.Context, w http.ResponseWriter) *report.Report {
	session := GetSessionFromContext(ctx)
	if session == nil || session.Report == nil {
		http.Error(w, `{"error": "no report session"}`, http.StatusInternalServerError)
		return nil
	}
	return session.Report
}
