package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biliticket/sessionstore/internal/metrics"
	"biliticket/sessionstore/internal/session"
	"biliticket/sessionstore/pkg/crypto"
	"biliticket/sessionstore/pkg/response"
)

const (
	ContextKeySession = "session"

	contextKeySaveHandler = "session_save_handler"
)

var (
	ErrNoSession = errors.New("session not found in context")

	// ErrWriteRefused is returned when the save handler reports a failed write
	// without an error.
	ErrWriteRefused = errors.New("session handler refused write")
)

// SessionOptions controls cookie issuing and garbage collection for the
// Session middleware.
type SessionOptions struct {
	Name          string
	SavePath      string
	Lifetime      time.Duration
	CookieSecure  bool
	CookieDomain  string
	GCProbability int
	GCDivisor     int

	// roll returns a number in [0, n); defaults to math/rand.
	roll func(n int) int
}

func (o SessionOptions) shouldGC() bool {
	if o.GCProbability <= 0 || o.GCDivisor <= 0 {
		return false
	}
	roll := o.roll
	if roll == nil {
		roll = rand.IntN
	}
	return roll(o.GCDivisor) < o.GCProbability
}

// Session loads the request's session through h before the handlers run and
// persists it afterwards. The payload is JSON-encoded here; h only ever sees
// opaque bytes.
func Session(h session.SaveHandler, opts SessionOptions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if _, err := h.Open(ctx, opts.SavePath, opts.Name); err != nil {
			logger.Error("open session handler", zap.Error(err))
			response.InternalError(c, "session unavailable")
			c.Abort()
			return
		}
		defer func() {
			if _, err := h.Close(ctx); err != nil {
				logger.Warn("close session handler", zap.Error(err))
			}
		}()

		sess, err := loadSession(ctx, c, h, opts, logger)
		if err != nil {
			logger.Error("load session", zap.Error(err))
			response.InternalError(c, "session unavailable")
			c.Abort()
			return
		}

		c.Set(ContextKeySession, sess)
		c.Set(contextKeySaveHandler, h)
		c.Next()

		// Handlers that did not call SaveSession are persisted here. A failure
		// can only become a 500 if nothing has been written yet.
		if !sess.saved {
			if err := persist(ctx, h, sess); err != nil {
				logger.Error("save session", zap.Error(err))
				if !c.Writer.Written() {
					response.InternalError(c, "failed to save session")
				}
			}
		}

		if opts.shouldGC() {
			if _, err := h.GC(ctx, opts.Lifetime); err != nil {
				logger.Warn("session gc", zap.Error(err))
			} else {
				metrics.SessionEventsTotal.WithLabelValues("gc").Inc()
			}
		}
	}
}

// GetSession returns the session attached by the Session middleware.
func GetSession(c *gin.Context) (*SessionState, error) {
	v, exists := c.Get(ContextKeySession)
	if !exists {
		return nil, ErrNoSession
	}
	sess, ok := v.(*SessionState)
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

// SaveSession persists the request's session immediately so a store failure
// can still be reported to the client. Handlers call it before writing the
// response; the middleware skips its own save when nothing changed since.
func SaveSession(c *gin.Context) error {
	sess, err := GetSession(c)
	if err != nil {
		return err
	}
	v, _ := c.Get(contextKeySaveHandler)
	h, ok := v.(session.SaveHandler)
	if !ok {
		return ErrNoSession
	}
	return persist(c.Request.Context(), h, sess)
}

func persist(ctx context.Context, h session.SaveHandler, sess *SessionState) error {
	if err := saveSession(ctx, h, sess); err != nil {
		return err
	}
	sess.saved = true
	return nil
}

func loadSession(ctx context.Context, c *gin.Context, h session.SaveHandler, opts SessionOptions, logger *zap.Logger) (*SessionState, error) {
	issue := func(id string) { setSessionCookie(c, opts, id) }
	revoke := func() { clearSessionCookie(c, opts) }

	id, err := c.Cookie(opts.Name)
	if err == nil && crypto.IsSessionID(id) {
		raw, err := h.Read(ctx, id)
		if err != nil {
			return nil, err
		}
		// Unknown IDs are never adopted; a fresh one is issued instead.
		if len(raw) > 0 {
			values := make(map[string]any)
			if err := json.Unmarshal(raw, &values); err != nil {
				logger.Warn("discarding undecodable session payload", zap.Error(err))
				values = make(map[string]any)
			}
			sess := newSessionState(id, values, false, issue, revoke)
			// Refresh the cookie expiry alongside the store TTL.
			issue(id)
			return sess, nil
		}
	}

	id, err = crypto.GenerateSessionID()
	if err != nil {
		return nil, err
	}
	metrics.SessionEventsTotal.WithLabelValues("created").Inc()
	sess := newSessionState(id, make(map[string]any), true, issue, revoke)
	issue(id)
	return sess, nil
}

func saveSession(ctx context.Context, h session.SaveHandler, sess *SessionState) error {
	for len(sess.retiredIDs) > 0 {
		if _, err := h.Destroy(ctx, sess.retiredIDs[0]); err != nil {
			return err
		}
		sess.retiredIDs = sess.retiredIDs[1:]
	}

	if sess.destroyed {
		if _, err := h.Destroy(ctx, sess.id); err != nil {
			return err
		}
		metrics.SessionEventsTotal.WithLabelValues("destroyed").Inc()
		return nil
	}

	// Empty new sessions are not persisted. Every other session is written on
	// each request, even when unchanged, so the store TTL is refreshed together
	// with the cookie Max-Age.
	if sess.isNew && len(sess.values) == 0 {
		return nil
	}

	payload, err := json.Marshal(sess.values)
	if err != nil {
		return err
	}
	ok, err := h.Write(ctx, sess.id, payload)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWriteRefused
	}
	metrics.SessionEventsTotal.WithLabelValues("written").Inc()
	return nil
}

func setSessionCookie(c *gin.Context, opts SessionOptions, id string) {
	replaceCookie(c.Writer, &http.Cookie{
		Name:     opts.Name,
		Value:    id,
		Path:     "/",
		Domain:   opts.CookieDomain,
		MaxAge:   int(opts.Lifetime.Seconds()),
		HttpOnly: true,
		Secure:   opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c *gin.Context, opts SessionOptions) {
	replaceCookie(c.Writer, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     "/",
		Domain:   opts.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// replaceCookie drops any Set-Cookie header already queued for the same name,
// so a regenerated or destroyed session sends a single cookie.
func replaceCookie(w http.ResponseWriter, cookie *http.Cookie) {
	header := w.Header()
	prefix := cookie.Name + "="
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}
	if v := cookie.String(); v != "" {
		header.Add("Set-Cookie", v)
	}
}
