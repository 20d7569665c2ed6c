package auth

import (
	"errors"
	"os"
	"time"

	"meepleserver/apperr"
	"meepleserver/models"

	jwt "github.com/dgrijalva/jwt-go"
	"gorm.io/gorm"
)

// JwtKey signs every token. Must come from the environment in production.
var JwtKey = []byte(func() string {
	if k := os.Getenv("JWT_KEY"); k != "" {
		return k
	}
	return "dev-only-insecure-key"
}())

// GenerateToken mints a token for an externally-issued identity.
func GenerateToken(externalID, nickname, tier string) (string, error) {
	claims := &models.MyClaims{
		ExternalID: externalID,
		Nickname:   nickname,
		Tier:       tier,
		StandardClaims: jwt.StandardClaims{
			Subject:   externalID,
			ExpiresAt: time.Now().Add(72 * time.Hour).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ProvisionProfile finds the profile for an external identity, creating it
// on first contact.
func ProvisionProfile(db *gorm.DB, claims *models.MyClaims) (*models.Profile, error) {
	var profile models.Profile
	err := db.Where("external_id = ?", claims.ExternalID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	nickname := claims.Nickname
	if nickname == "" {
		nickname = "player-" + claims.ExternalID
	}
	tier := claims.Tier
	if tier == "" {
		tier = "free"
	}
	profile = models.Profile{
		ExternalID: claims.ExternalID,
		Nickname:   nickname,
		Tier:       tier,
	}
	if err := db.Create(&profile).Error; err != nil {
		// a concurrent first request may have created it already
		if lookupErr := db.Where("external_id = ?", claims.ExternalID).First(&profile).Error; lookupErr == nil {
			return &profile, nil
		}
		return nil, err
	}
	return &profile, nil
}

// IsAdmin reports whether the profile carries the admin flag.
func IsAdmin(db *gorm.DB, userID uint) (bool, error) {
	var profile models.Profile
	if err := db.First(&profile, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.ErrNotFound
		}
		return false, err
	}
	return profile.IsAdmin, nil
}
