package handlers

import (
	"net/http"

	"github.com/ayase/tomodachi/internal/services/activity"
	"github.com/ayase/tomodachi/internal/services/relationship"
	"github.com/ayase/tomodachi/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// RelationshipHandler handles friend-request lifecycle requests
type RelationshipHandler struct {
	relationshipService relationship.ServiceInterface
	sessions            *activity.Manager
}

// NewRelationshipHandler creates a new RelationshipHandler
func NewRelationshipHandler(relationshipService relationship.ServiceInterface, sessions *activity.Manager) *RelationshipHandler {
	return &RelationshipHandler{
		relationshipService: relationshipService,
		sessions:            sessions,
	}
}

type sendRequestBody struct {
	UserID string `json:"user_id"`
}

type unfriendBody struct {
	Confirmed bool `json:"confirmed"`
}

// Status handles GET /relationships/status/:userID
func (h *RelationshipHandler) Status(c *gin.Context) {
	state, err := h.relationshipService.Status(c.Request.Context(), currentUserID(c), c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": string(state)})
}

// SendRequest handles POST /relationships/requests
func (h *RelationshipHandler) SendRequest(c *gin.Context) {
	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, apperrors.InvalidArgument("invalid request body"))
		return
	}

	me := currentUserID(c)
	rel, err := h.relationshipService.Request(c.Request.Context(), me, body.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	// The addressee's badge should pick this up before the next tick
	h.sessions.Trigger(body.UserID)

	c.JSON(http.StatusCreated, gin.H{
		"id":         rel.ID,
		"status":     string(rel.Status),
		"created_at": formatTime(rel.CreatedAt),
	})
}

// AcceptRequest handles POST /relationships/requests/:userID/accept
func (h *RelationshipHandler) AcceptRequest(c *gin.Context) {
	me := currentUserID(c)
	other := c.Param("userID")
	if err := h.relationshipService.Accept(c.Request.Context(), me, other); err != nil {
		respondError(c, err)
		return
	}

	h.sessions.Trigger(me)
	h.sessions.Trigger(other)

	c.Status(http.StatusNoContent)
}

// DeclineRequest handles POST /relationships/requests/:userID/decline
func (h *RelationshipHandler) DeclineRequest(c *gin.Context) {
	me := currentUserID(c)
	other := c.Param("userID")
	if err := h.relationshipService.Decline(c.Request.Context(), me, other); err != nil {
		respondError(c, err)
		return
	}

	h.sessions.Trigger(me)

	c.Status(http.StatusNoContent)
}

// CancelRequest handles DELETE /relationships/requests/:userID
func (h *RelationshipHandler) CancelRequest(c *gin.Context) {
	me := currentUserID(c)
	other := c.Param("userID")
	if err := h.relationshipService.Cancel(c.Request.Context(), me, other); err != nil {
		respondError(c, err)
		return
	}

	// The withdrawn request must vanish from the addressee's feed
	h.sessions.Trigger(other)

	c.Status(http.StatusNoContent)
}

// Unfriend handles DELETE /friends/:userID
func (h *RelationshipHandler) Unfriend(c *gin.Context) {
	var body unfriendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, apperrors.InvalidArgument("invalid request body"))
		return
	}

	err := h.relationshipService.Unfriend(c.Request.Context(), &relationship.UnfriendRequest{
		UserID:    currentUserID(c),
		OtherID:   c.Param("userID"),
		Confirmed: body.Confirmed,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListFriends handles GET /friends
func (h *RelationshipHandler) ListFriends(c *gin.Context) {
	friends, err := h.relationshipService.ListFriends(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(friends))
	for _, f := range friends {
		resp = append(resp, gin.H{
			"user":          toUserResponse(f.User),
			"friends_since": formatTime(f.FriendsSince),
		})
	}
	c.JSON(http.StatusOK, gin.H{"friends": resp})
}

// ListPendingReceived handles GET /relationships/pending
func (h *RelationshipHandler) ListPendingReceived(c *gin.Context) {
	pending, err := h.relationshipService.ListPendingReceived(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": toPendingResponse(pending)})
}

// ListPendingSent handles GET /relationships/sent
func (h *RelationshipHandler) ListPendingSent(c *gin.Context) {
	pending, err := h.relationshipService.ListPendingSent(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": toPendingResponse(pending)})
}

func toPendingResponse(pending []*relationship.PendingRequest) []gin.H {
	resp := make([]gin.H, 0, len(pending))
	for _, p := range pending {
		resp = append(resp, gin.H{
			"user":         toUserResponse(p.User),
			"requested_at": formatTime(p.RequestedAt),
		})
	}
	return resp
}
