package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates commissioner tokens. The league has a
// single commissioner login whose bcrypt hash comes from configuration; all
// mutating endpoints require a valid token.
type AuthService struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenExpiry  time.Duration
}

// CommissionerClaims are the claims carried in a commissioner token.
type CommissionerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

func NewAuthService(passwordHash, jwtSecret string) *AuthService {
	return &AuthService{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(jwtSecret),
		tokenExpiry:  7 * 24 * time.Hour,
	}
}

// HashPassword generates the bcrypt hash for COMMISSIONER_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks the commissioner password and returns a signed token.
func (a *AuthService) Login(password string) (string, error) {
	if len(a.passwordHash) == 0 {
		return "", fmt.Errorf("commissioner password hash not configured")
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := CommissionerClaims{
		Role: "commissioner",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "commissioner",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken parses and verifies a commissioner token.
func (a *AuthService) ValidateToken(tokenString string) (*CommissionerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CommissionerClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*CommissionerClaims)
	if !ok || !token.Valid || claims.Role != "commissioner" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
