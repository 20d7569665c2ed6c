package handlers

import (
	"net/http"
	"time"

	"meepleserver/auth"
	"meepleserver/models"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	jwt "github.com/dgrijalva/jwt-go"
)

// Login validates an existing token or mints one for an externally-issued
// identity. A token close to expiry is refreshed.
func Login(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Login request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if request.Token != "" {
		claims := &models.MyClaims{}
		token, err := jwt.ParseWithClaims(request.Token, claims, func(token *jwt.Token) (interface{}, error) {
			return auth.JwtKey, nil
		})
		if err != nil || !token.Valid {
			logger.Error("Token validation error", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if time.Until(time.Unix(claims.ExpiresAt, 0)) < time.Hour {
			newToken, err := auth.GenerateToken(claims.ExternalID, claims.Nickname, claims.Tier)
			if err != nil {
				logger.Error("Token generation error", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": newToken})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "token valid"})
		return
	}

	if request.ExternalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "externalId is required"})
		return
	}

	token, err := auth.GenerateToken(request.ExternalID, request.Nickname, request.Tier)
	if err != nil {
		logger.Error("Token generation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
