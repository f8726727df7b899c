package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ar-viewer-backend/internal/auth"
	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/models"
	"ar-viewer-backend/internal/store"
)

type AuthHandler struct {
	users  *store.UserStore
	issuer *auth.TokenIssuer
	log    *logger.Logger
}

func NewAuthHandler(users *store.UserStore, issuer *auth.TokenIssuer, log *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, log: log}
}

// Login exchanges username/password for a bearer token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "username and password are required"})
		return
	}

	user, ok := h.users.GetByUsername(req.Username)
	if !ok || !auth.VerifyPassword(req.Password, user.Password) {
		h.log.Info("rejected login", "username", req.Username)
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials"})
		return
	}

	token, err := h.issuer.Generate(user.ID.String(), user.Username, user.IsAdmin)
	if err != nil {
		h.log.Error("failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		User:    models.UserInfo{ID: user.ID.String(), Username: user.Username},
		Token:   token,
		IsAdmin: user.IsAdmin,
	})
}
