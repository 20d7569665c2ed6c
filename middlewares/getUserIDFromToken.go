package middlewares

import (
	"fmt"
	"strings"

	"meepleserver/apperr"
	"meepleserver/auth"
	"meepleserver/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetUserIDFromToken parses the bearer token on the request, provisions the
// profile on first contact and returns the internal profile id. Errors wrap
// apperr.ErrUnauthenticated so handlers map them uniformly.
func GetUserIDFromToken(c *gin.Context, db *gorm.DB, logger *zap.Logger) (uint, error) {
	tokenString := c.GetHeader("Authorization")
	if strings.HasPrefix(tokenString, "Bearer ") {
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	}

	if tokenString == "" {
		return 0, fmt.Errorf("%w: token is required", apperr.ErrUnauthenticated)
	}

	claims := &models.MyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return auth.JwtKey, nil
	})
	if err != nil || !token.Valid || claims.ExternalID == "" {
		logger.Error("Failed to parse JWT token", zap.Error(err))
		return 0, fmt.Errorf("%w: invalid token", apperr.ErrUnauthenticated)
	}

	profile, err := auth.ProvisionProfile(db, claims)
	if err != nil {
		logger.Error("Failed to provision profile", zap.Error(err))
		return 0, fmt.Errorf("%w: profile lookup failed", apperr.ErrUnauthenticated)
	}

	return profile.ID, nil
}
