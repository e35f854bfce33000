package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/mfedotov/shop_backend/internal/hash"
	"github.com/mfedotov/shop_backend/internal/logging"
	"github.com/mfedotov/shop_backend/internal/models"
	"github.com/mfedotov/shop_backend/internal/repo"
	"github.com/mfedotov/shop_backend/internal/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Hasher hash.PasswordHasher
	Codec  tokens.Codec
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	pwHash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("cannot hash password", "error", err)
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("signup conflict", "email", email)
			return nil, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return nil, err
	}
	return &user, nil
}

// SignIn verifies the password and issues a fresh access/refresh pair,
// overwriting the user's stored refresh token: one live session per user.
// Unknown email and bad password produce the same error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signin")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("signin failed", "reason", "unknown email")
			return nil, nil, fmt.Errorf("%w: email or password is invalid", ErrUnauthorized)
		}
		return nil, nil, err
	}
	if !s.Hasher.Check(user.PasswordHash, password) {
		l.Warn("signin failed", "reason", "password mismatch", "user_id", user.ID)
		return nil, nil, fmt.Errorf("%w: email or password is invalid", ErrUnauthorized)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	l.Info("signin ok", "user_id", user.ID)
	return user, pair, nil
}

// Refresh rotates the refresh credential: the presented token must verify,
// match the stored row byte for byte, and is superseded by a new one in the
// same call. A superseded token presented again fails here.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if rawToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrBadRequest)
	}

	claims, err := s.Codec.VerifyRefresh(rawToken)
	if err != nil {
		l.Warn("refresh failed", "reason", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, err := tokens.UserID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}

	stored, err := s.Repo.FindRefreshToken(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("refresh failed", "reason", "no stored token", "user_id", userID)
			return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(stored.Token), []byte(rawToken)) != 1 {
		l.Warn("refresh failed", "reason", "superseded token reuse", "user_id", userID)
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
		}
		return nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	l.Info("refresh ok", "user_id", userID)
	return pair, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.Codec.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpsertRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}

	now := time.Now()
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    now.Add(s.Codec.AccessTTL),
		RefreshExp:   now.Add(s.Codec.RefreshTTL),
	}, nil
}
