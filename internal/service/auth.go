package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"fundcrm/internal/domain"
)

// SessionClaims are the JWT claims carried by the session cookie.
type SessionClaims struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and revokes sessions. A login only succeeds once
// its LOGIN audit entry is durably appended; if the append fails, no
// token is issued.
type AuthService struct {
	users      domain.UserRepository
	audit      *AuditService
	jwtSecret  []byte
	sessionTTL time.Duration
}

func NewAuthService(users domain.UserRepository, audit *AuditService, jwtSecret []byte, sessionTTL time.Duration) *AuthService {
	return &AuthService{users: users, audit: audit, jwtSecret: jwtSecret, sessionTTL: sessionTTL}
}

// Login checks credentials and returns the user and a signed session
// token. Unknown email and wrong password return the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", domain.ErrValidation("email and password are required")
	}

	u, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		return nil, "", domain.ErrUnauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrUnauthorized("invalid credentials")
	}

	actor := domain.ContextUser{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
	if err := s.audit.RecordAs(ctx, actor, domain.ActionLogin, domain.EntitySession, nil, &u.Email, nil); err != nil {
		return nil, "", err
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, "", fmt.Errorf("update last login: %w", err)
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout records the session end. The cookie itself is cleared by the
// handler.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.audit.Record(ctx, domain.ActionLogout, domain.EntitySession, nil, nil, nil)
}

// SessionTTL exposes the configured session lifetime for cookie expiry.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *AuthService) issueToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
