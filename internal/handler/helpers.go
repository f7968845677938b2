package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// requireUserID extracts the authenticated user identity from the
// X-User-ID header the auth gateway sets. Requests without it get a 401
// and the handler should return immediately.
func requireUserID(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "Missing user identity",
		})
		return "", false
	}

	c.Set("user_id", userID)
	return userID, true
}
