package server

import (
	"errors"
	"net/http"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/auth"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const signInMessage = "Please log in or sign up to save your canvas."

// requireOwner authenticates the session and places the owner on the request context.
func (h *httpHandler) requireOwner(c *gin.Context) {
	claims, err := h.sessions.Request(c.Request)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			h.logger.Debug("session missing", zap.String("path", c.FullPath()))
		case errors.Is(err, auth.ErrExpiredToken):
			h.logger.Info("session validation failed", zap.Error(err))
		default:
			h.logger.Warn("session validation failed", zap.Error(err))
		}
		abortUnauthenticated(c)
		return
	}

	owner, err := h.owners.Resolve(c.Request.Context(), claims)
	if err != nil {
		h.logger.Warn("owner resolution failed", zap.Error(err))
		abortUnauthenticated(c)
		return
	}

	c.Request = c.Request.WithContext(documents.WithOwner(c.Request.Context(), owner))
	c.Next()
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": signInMessage,
	})
}
