package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vedran77/tweeter/internal/domain"
	"github.com/vedran77/tweeter/internal/repository"
	"github.com/vedran77/tweeter/internal/util"
)

// PasswordHasher hashes and verifies user secrets.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, stored string) bool
}

// TokenIssuer issues opaque access tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// LoginLimiter throttles repeated login attempts for one key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type AuthService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	clock    util.Clock
	logger   logrus.FieldLogger
	limiter  LoginLimiter
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	clock util.Clock,
	logger logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		clock:    clock,
		logger:   logger,
	}
}

// SetLoginLimiter enables login throttling (optional dependency).
func (s *AuthService) SetLoginLimiter(l LoginLimiter) {
	s.limiter = l
}

type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims every field and lowercases username and email.
func (in RegisterInput) Normalize() RegisterInput {
	return RegisterInput{
		Name:     strings.TrimSpace(in.Name),
		Username: strings.ToLower(strings.TrimSpace(in.Username)),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: strings.TrimSpace(in.Password),
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Normalize() LoginInput {
	return LoginInput{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: strings.TrimSpace(in.Password),
	}
}

type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input = input.Normalize()
	if input.Name == "" || input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	existing, err = s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Following:    []uuid.UUID{},
		Followers:    []uuid.UUID{},
		CreatedAt:    s.clock.NowUtc(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent registration.
			if taken, _ := s.userRepo.GetByEmail(ctx, input.Email); taken != nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, errors.Wrap(err, "creating user")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("user registered")

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	input = input.Normalize()
	if input.Email == "" || input.Password == "" {
		return nil, ErrInvalidCreds
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, input.Email)
		if err != nil {
			// Fail open when the limiter is unavailable.
			s.logger.WithError(err).Warn("login limiter unavailable")
		} else if !ok {
			return nil, ErrTooManyLogins
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.WithField("email", input.Email).Debug("login attempt for unknown email")
		return nil, ErrInvalidCreds
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.logger.WithField("user_id", user.ID).Debug("login attempt with wrong password")
		return nil, ErrInvalidCreds
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "issuing token")
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, input.Email); err != nil {
			s.logger.WithError(err).Warn("resetting login limiter")
		}
	}

	return &AuthResponse{User: user, AccessToken: token}, nil
}
