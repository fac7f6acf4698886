package handlers

import (
	"net/http"

	"github.com/ayase/tomodachi/internal/services/activity"
	"github.com/gin-gonic/gin"
)

// ActivityHandler serves unread counts, the notification feed, and the point
// events that clear them
type ActivityHandler struct {
	sessions *activity.Manager
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(sessions *activity.Manager) *ActivityHandler {
	return &ActivityHandler{sessions: sessions}
}

// Counts handles GET /activity/counts
func (h *ActivityHandler) Counts(c *gin.Context) {
	session := h.sessions.Session(currentUserID(c))
	snap := session.Snapshot()
	if snap.RefreshedAt.IsZero() {
		// First contact: compute synchronously instead of serving zeros
		// until the poller's first cycle lands
		if err := session.Refresh(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		snap = session.Snapshot()
	}

	c.JSON(http.StatusOK, gin.H{
		"unread_requests": snap.Counts.UnreadRequests,
		"unread_messages": snap.Counts.UnreadMessages,
	})
}

// Feed handles GET /activity/feed
func (h *ActivityHandler) Feed(c *gin.Context) {
	session := h.sessions.Session(currentUserID(c))
	snap := session.Snapshot()
	if snap.RefreshedAt.IsZero() {
		if err := session.Refresh(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		snap = session.Snapshot()
	}

	entries := make([]gin.H, 0, len(snap.Feed))
	for _, e := range snap.Feed {
		entries = append(entries, gin.H{
			"id":         e.ID,
			"kind":       string(e.Kind),
			"subject_id": e.SubjectID,
			"message":    e.Message,
			"timestamp":  formatTime(e.Timestamp),
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// OpenMessages handles POST /activity/messages/open
func (h *ActivityHandler) OpenMessages(c *gin.Context) {
	session := h.sessions.Session(currentUserID(c))
	if err := session.OpenMessages(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DismissNotifications handles POST /activity/notifications/dismiss
func (h *ActivityHandler) DismissNotifications(c *gin.Context) {
	session := h.sessions.Session(currentUserID(c))
	if err := session.DismissNotifications(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EndSession handles DELETE /activity/session. Clients call it on logout or
// user switch so the server stops polling for the departed user.
func (h *ActivityHandler) EndSession(c *gin.Context) {
	h.sessions.Remove(currentUserID(c))
	c.Status(http.StatusNoContent)
}
