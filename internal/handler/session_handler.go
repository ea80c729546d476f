package handler

import (
	"github.com/gin-gonic/gin"

	"biliticket/sessionstore/internal/handler/middleware"
	"biliticket/sessionstore/internal/metrics"
	"biliticket/sessionstore/pkg/response"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type SessionView struct {
	ID     string         `json:"id"`
	New    bool           `json:"new"`
	Values map[string]any `json:"values"`
}

func viewOf(sess *middleware.SessionState) SessionView {
	return SessionView{ID: sess.ID(), New: sess.IsNew(), Values: sess.All()}
}

// save persists the session before the response is written and reports a
// store failure as 500.
func save(c *gin.Context) bool {
	if err := middleware.SaveSession(c); err != nil {
		response.InternalError(c, "failed to save session")
		return false
	}
	return true
}

// Show returns the current session values.
func (h *SessionHandler) Show(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		response.InternalError(c, "session unavailable")
		return
	}
	if !save(c) {
		return
	}
	response.Success(c, viewOf(sess))
}

// Update merges a JSON object into the session. A null value removes the key.
func (h *SessionHandler) Update(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		response.InternalError(c, "session unavailable")
		return
	}

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	for k, v := range req {
		if v == nil {
			sess.Delete(k)
			continue
		}
		sess.Set(k, v)
	}
	if !save(c) {
		return
	}
	response.Success(c, viewOf(sess))
}

// Destroy ends the session.
func (h *SessionHandler) Destroy(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		response.InternalError(c, "session unavailable")
		return
	}
	sess.Destroy()
	if !save(c) {
		return
	}
	response.Success(c, nil)
}

type RegenerateRequest struct {
	KeepOld bool `json:"keep_old"`
}

// Regenerate moves the session to a new ID.
func (h *SessionHandler) Regenerate(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		response.InternalError(c, "session unavailable")
		return
	}

	var req RegenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	if err := sess.Regenerate(!req.KeepOld); err != nil {
		response.InternalError(c, "failed to regenerate session")
		return
	}
	if !save(c) {
		return
	}
	metrics.SessionEventsTotal.WithLabelValues("regenerated").Inc()
	response.Success(c, viewOf(sess))
}
