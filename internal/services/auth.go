package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GuideNet/GuideNet/internal/domain"
)

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrNotVerified    = errors.New("email not verified")
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkVerified(ctx context.Context, id domain.UserID) error
	UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error
}

type TokenStore interface {
	SaveVerification(ctx context.Context, token string, uid domain.UserID) error
	ConsumeVerification(ctx context.Context, token string) (domain.UserID, error)
	SaveReset(ctx context.Context, token string, uid domain.UserID) error
	ConsumeReset(ctx context.Context, token string) (domain.UserID, error)
}

type AuthService struct {
	users  UserStore
	tokens TokenStore
	jwt    *TokenService
	mailer Mailer
}

func NewAuthService(users UserStore, tokens TokenStore, jwt *TokenService, mailer Mailer) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwt: jwt, mailer: mailer}
}

// Register creates an unverified account and mails a verification token.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := domain.NewUser(username, email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.tokens.SaveVerification(ctx, token, user.ID); err != nil {
		return nil, err
	}
	if err := s.mailer.SendVerification(user.Email, token); err != nil {
		log.Error().Err(err).Str("module", "services.auth").Msg("verification mail failed")
	}
	return user, nil
}

func (s *AuthService) Verify(ctx context.Context, token string) error {
	uid, err := s.tokens.ConsumeVerification(ctx, token)
	if err != nil {
		return err
	}
	return s.users.MarkVerified(ctx, uid)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrBadCredentials
	}
	if !user.Verified {
		return "", nil, ErrNotVerified
	}
	token, err := s.jwt.Generate(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ForgotPassword always succeeds from the caller's view, so the endpoint
// does not leak which emails exist.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	token := uuid.NewString()
	if err := s.tokens.SaveReset(ctx, token, user.ID); err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(user.Email, token); err != nil {
		log.Error().Err(err).Str("module", "services.auth").Msg("reset mail failed")
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	uid, err := s.tokens.ConsumeReset(ctx, token)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, uid, string(hash))
}
