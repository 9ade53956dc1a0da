package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/larek/pkg/errors"
)

// AdminAuth checks the bearer key against the configured bcrypt hash
func AdminAuth(keyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := verifyAdminKey(keyHash, c.GetHeader("Authorization")); err != nil {
			logger.Warn("Rejected admin request",
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Message})
			c.Abort()
			return
		}

		c.Next()
	}
}

func verifyAdminKey(keyHash, authHeader string) *errors.ErrUnauthorized {
	if authHeader == "" {
		return &errors.ErrUnauthorized{Message: "missing authorization header"}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return &errors.ErrUnauthorized{Message: "invalid authorization header format"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(parts[1])); err != nil {
		return &errors.ErrUnauthorized{Message: "invalid admin key"}
	}
	return nil
}
