package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListUsers returns all staff accounts (admin only)
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to fetch users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}
