package handlers

import (
	"net/http"

	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the read-only user directory
type UserHandler struct {
	userRepo repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// List handles GET /users: everyone except the caller, for the add-friends page
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userRepo.ListOthers(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}
