package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mfedotov/shop_backend/internal/models"
)

func TestSignUp(t *testing.T) {
	svc, store := newTestAuth(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "user@example.com", "password")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)
	require.NotEqual(t, "password", user.PasswordHash)

	_, err = svc.SignUp(ctx, "user@example.com", "other")
	require.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, store.DB.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSignInIssuesTokensAndUpsertsRefreshRow(t *testing.T) {
	svc, store := newTestAuth(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "user@example.com", "password")
	require.NoError(t, err)

	_, first, err := svc.SignIn(ctx, "user@example.com", "password")
	require.NoError(t, err)
	require.NotEmpty(t, first.AccessToken)
	require.NotEmpty(t, first.RefreshToken)

	claims, err := svc.Codec.VerifyAccess(first.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", claims.Email)
	require.Equal(t, models.RoleUser, claims.Role)

	_, second, err := svc.SignIn(ctx, "user@example.com", "password")
	require.NoError(t, err)

	// single live session per user: the row is overwritten, not appended
	var rows []models.RefreshToken
	require.NoError(t, store.DB.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, user.ID, rows[0].UserID)
	require.Equal(t, second.RefreshToken, rows[0].Token)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "user@example.com", "password")
	require.NoError(t, err)

	_, _, unknownErr := svc.SignIn(ctx, "nobody@example.com", "password")
	require.ErrorIs(t, unknownErr, ErrUnauthorized)

	_, _, mismatchErr := svc.SignIn(ctx, "user@example.com", "wrong")
	require.ErrorIs(t, mismatchErr, ErrUnauthorized)

	// same message for unknown email and bad password
	require.Equal(t, unknownErr.Error(), mismatchErr.Error())
}

func TestRefreshRotation(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "user@example.com", "password")
	require.NoError(t, err)
	_, pair, err := svc.SignIn(ctx, "user@example.com", "password")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// the superseded token is permanently unusable
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	// the new one works exactly once before being superseded again
	again, err := svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Refresh(ctx, again.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshMissingToken(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.Refresh(context.Background(), "")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestRefreshMalformedToken(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	svc.Codec.RefreshTTL = -time.Minute
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "user@example.com", "password")
	require.NoError(t, err)
	_, pair, err := svc.SignIn(ctx, "user@example.com", "password")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshWithoutStoredRow(t *testing.T) {
	svc, store := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "user@example.com", "password")
	require.NoError(t, err)
	_, pair, err := svc.SignIn(ctx, "user@example.com", "password")
	require.NoError(t, err)

	require.NoError(t, store.DB.Where("1 = 1").Delete(&models.RefreshToken{}).Error)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}
