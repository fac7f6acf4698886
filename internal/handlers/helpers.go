package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// userResponse is the wire shape of a user profile
type userResponse struct {
	ID          string `json:"id"`
	UserName    string `json:"username"`
	Email       string `json:"email"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	DisplayName string `json:"display_name"`
}

func toUserResponse(u *entities.User) userResponse {
	return userResponse{
		ID:          u.ID,
		UserName:    u.UserName,
		Email:       u.Email,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		DisplayName: u.DisplayName(),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// respondError maps an engine error to an HTTP response.
// The body always carries the machine-readable code alongside the message so
// clients can branch without parsing text.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": "INTERNAL", "message": "internal server error"},
		})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.CodeNotAuthorized:
		status = http.StatusForbidden
	case apperrors.CodeConflict, apperrors.CodeInvalidState:
		status = http.StatusConflict
	case apperrors.CodeTransport:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"error": gin.H{"code": string(appErr.Code), "message": appErr.Message},
	})
}
