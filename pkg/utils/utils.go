package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	PurposeAccess      = "access"
	PurposeVerifyEmail = "verify_email"

	AccessTokenTTL       = 24 * time.Hour
	VerificationTokenTTL = 72 * time.Hour
)

var ErrTokenPurpose = errors.New("token issued for a different purpose")

type Claims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken issues an access token.
func GenerateToken(userID, role, secret string) (string, error) {
	return signToken(userID, role, PurposeAccess, AccessTokenTTL, secret)
}

// GenerateVerificationToken issues the single-purpose token mailed to new
// users to confirm their address.
func GenerateVerificationToken(userID, secret string) (string, error) {
	return signToken(userID, "", PurposeVerifyEmail, VerificationTokenTTL, secret)
}

// ValidateToken accepts access tokens only.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	return validate(tokenString, secret, PurposeAccess)
}

func ValidateVerificationToken(tokenString, secret string) (*Claims, error) {
	return validate(tokenString, secret, PurposeVerifyEmail)
}

func signToken(userID, role, purpose string, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func validate(tokenString, secret, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Purpose != purpose {
		return nil, ErrTokenPurpose
	}
	return claims, nil
}
