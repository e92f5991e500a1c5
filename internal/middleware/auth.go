package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// Authenticator resolves an access token to a user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthRequired rejects requests without a valid access token and stores the
// authenticated user in the context
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := GetAccessToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			var unauthorized *models.UnauthorizedError
			if errors.As(err, &unauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Error()})
				return
			}
			logger.WithError(err).Error("Authentication failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// GetUser retrieves the authenticated user from the context
func GetUser(c *gin.Context) *models.User {
	val, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}

	if user, ok := val.(*models.User); ok {
		return user
	}

	return nil
}
