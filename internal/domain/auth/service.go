package auth

import (
	"context"
	"time"

	"facturador/internal/core/apperror"
	"facturador/pkg/logger"
)

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// Service provides authentication operations.
type Service struct {
	users Repository
	jwt   *JWTService
	log   *logger.Logger
}

// NewService creates the auth service.
func NewService(users Repository, jwtService *JWTService, log *logger.Logger) *Service {
	return &Service{
		users: users,
		jwt:   jwtService,
		log:   log,
	}
}

// Login verifies credentials and issues a session token. Wrong email and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperror.NewUnauthorized("account is disabled")
	}

	if !user.CheckPassword(password) {
		s.log.WithContext(ctx).Warnw("failed login attempt", "email", email)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	user, err := NewUser(email, password)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Infow("user registered", "user_id", user.ID.String())
	return user, nil
}

// Identify resolves the user for a bearer token.
func (s *Service) Identify(ctx context.Context, token string) (*User, error) {
	userID, _, err := s.jwt.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("unknown user")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.NewUnauthorized("account is disabled")
	}
	return user, nil
}
