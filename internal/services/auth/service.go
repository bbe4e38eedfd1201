package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"note-sync/internal/config"
	"note-sync/internal/utils/crypto"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service registers accounts and signs access tokens. The sync layer never sees
// it; it only consumes the Identity carried by a verified token.
type Service struct {
	repo       UsersRepo
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	log        *slog.Logger
	now        func() time.Time
}

// NewService creates the auth service from the token and hashing settings of cfg.
func NewService(repo UsersRepo, cfg config.Config, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		secret:     []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL(),
		bcryptCost: cfg.BcryptCost,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SignUp creates an account and signs its first token. Every failure, a taken
// email included, is reported as ErrRegistrationFailed.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		s.log.Info("sign-up for registered email")
		return nil, ErrRegistrationFailed
	}

	hash, err := crypto.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return nil, ErrRegistrationFailed
	}

	now := s.now()
	user := &User{
		ID:           bson.NewObjectID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// a concurrent sign-up may win the unique index
		if !errors.Is(err, ErrDuplicate) {
			s.log.Error("failed to create user", "error", err)
		}
		return nil, ErrRegistrationFailed
	}

	s.log.Info("user registered", "user_id", user.ID.Hex())
	return s.issue(user)
}

// SignIn checks the credentials and signs a new token.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		s.log.Info("sign-in for unknown email", "error", err)
		return nil, ErrInvalidCredentials
	}
	if err := crypto.CheckPassword(req.Password, user.PasswordHash); err != nil {
		s.log.Info("sign-in with wrong password", "user_id", user.ID.Hex())
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *Service) issue(user *User) (*AuthResponse, error) {
	now := s.now()
	id := user.Identity()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     id.UserID.Hex(),
		"user_id": id.UserID.Hex(),
		"email":   id.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}).SignedString(s.secret)
	if err != nil {
		s.log.Error(ErrGenAccessToken.Error(), "error", err, "user_id", id.UserID.Hex())
		return nil, ErrGenAccessToken
	}
	return &AuthResponse{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
