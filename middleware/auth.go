// middleware/auth.go
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/warden/config"
	logger "github.com/dev-mohitbeniwal/warden/logging"
)

// Claims carried by the upstream identity provider's tokens. The engine
// trusts the collaborator for authentication; authorization stays here.
type Claims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"org_id"`
	Email          string `json:"email"`
}

// Auth validates the bearer token and threads the acting user and
// organization through the gin context for the enforcement layer.
func Auth() gin.HandlerFunc {
	secret := []byte(config.GetString("auth.jwtSecret"))

	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			logger.Warn("No Authorization token provided")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Invalid token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if claims.Subject == "" {
			logger.Warn("Token has no subject")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("requestingUserID", claims.Subject)
		c.Set("organizationID", claims.OrganizationID)

		c.Next()
	}
}
