package handlers

import (
	"net/http"

	"table-order-api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a staff user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.FindByEmail(ctx, req.Email)
	if isNotFound(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		h.internalError(c, "Login failed", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}

	now := h.Clock()
	token, err := middleware.GenerateToken(user, h.JWTSecret, now)
	if err != nil {
		h.internalError(c, "Failed to generate token", err)
		return
	}
	if err := h.Users.TouchLastLogin(ctx, user.ID, now.UTC()); err != nil {
		h.Logger.Warn("failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Logout is client side: the token is simply discarded
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Verify returns the user behind a still-valid token
func (h *Handler) Verify(c *gin.Context) {
	user, err := h.Users.FindByID(c.Request.Context(), middleware.GetUserID(c))
	if isNotFound(err) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to verify token", err)
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": user})
}
