package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
)

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// Claims carried in access tokens. Business membership is resolved per
// request, not baked into the token, so a freshly registered business is
// visible without re-login.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
}

// JWTService issues and validates HS256 access tokens.
type JWTService struct {
	cfg JWTConfig
}

// NewJWTService creates a JWT service.
func NewJWTService(cfg JWTConfig) *JWTService {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "facturador"
	}
	return &JWTService{cfg: cfg}
}

// Generate signs a token for the user.
func (s *JWTService) Generate(u *User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: u.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, apperror.NewInternal(err)
	}
	return token, expiresAt, nil
}

// Validate parses and verifies a token, returning the user identity.
func (s *JWTService) Validate(tokenString string) (id.ID, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.NewUnauthorized("unexpected signing method")
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return id.Nil(), "", apperror.NewUnauthorized("invalid or expired token")
	}

	userID, err := id.Parse(claims.Subject)
	if err != nil {
		return id.Nil(), "", apperror.NewUnauthorized("malformed token subject")
	}
	return userID, claims.Email, nil
}
