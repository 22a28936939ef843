package service

import (
	"alcyxob/fitlog-bot/internal/clock"
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid username or password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrAdminDisabled        = errors.New("admin login is not configured")
)

// Role is carried in admin tokens.
type Role string

const RoleAdmin Role = "admin"

// Claims is the JWT payload issued by Login and checked by the API middleware.
type Claims struct {
	UserID string `json:"uid"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, err error)
	GetJWTSecret() string
}

// authService authenticates the single configured admin account.
type authService struct {
	username      string
	passwordHash  string
	jwtSecret     string
	jwtExpiration time.Duration
	clock         clock.Clock
}

// NewAuthService creates a new instance of authService.
func NewAuthService(username, passwordHash, jwtSecret string, jwtExpiration time.Duration, clk clock.Clock) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &authService{
		username:      username,
		passwordHash:  passwordHash,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		clock:         clk,
	}
}

// Login checks the credentials and issues a signed token.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	// 1. The admin API is off without a configured account
	if s.username == "" || s.passwordHash == "" {
		return "", ErrAdminDisabled
	}
	if username == "" || password == "" {
		return "", ErrAuthenticationFailed
	}

	// 2. Username and password; bcrypt runs even on a name mismatch
	err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password))
	if err != nil || username != s.username {
		return "", ErrAuthenticationFailed
	}

	// 3. Authentication successful - Generate JWT
	token, err := s.generateJWT(username)
	if err != nil {
		return "", ErrTokenGeneration
	}
	return token, nil
}

// generateJWT creates a new HS256 token for the admin.
func (s *authService) generateJWT(username string) (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		UserID: username,
		Role:   RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "fitlog-bot",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
