package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/student-roster/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminSubject  = "admin"
	tokenLifetime = 24 * time.Hour
)

// AuthService guards the admin API with a single shared password and
// HS256-signed session tokens.
type AuthService struct {
	passwordHash []byte
	jwtSecret    []byte
}

// NewAuthService hashes the admin password with the given bcrypt cost.
// An empty password disables admin login.
func NewAuthService(adminPassword, jwtSecret string, bcryptCost int) (*AuthService, error) {
	s := &AuthService{jwtSecret: []byte(jwtSecret)}
	if adminPassword == "" {
		return s, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	s.passwordHash = hash
	return s, nil
}

// Enabled reports whether an admin password is configured.
func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0
}

// Login checks the admin password and returns a signed token.
func (s *AuthService) Login(password string) (string, error) {
	if !s.Enabled() {
		return "", domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ValidateToken accepts only unexpired HS256 admin tokens.
func (s *AuthService) ValidateToken(tokenString string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return domain.ErrUnauthorized
	}
	if claims.Subject != adminSubject {
		return domain.ErrUnauthorized
	}
	return nil
}
