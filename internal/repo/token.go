package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/mfedotov/shop_backend/internal/models"
)

// UpsertRefreshToken overwrites the user's single refresh-token row in one
// statement, so concurrent sign-in/refresh from the same user resolve to
// last writer wins.
func (r *GormRepo) UpsertRefreshToken(ctx context.Context, userID uint, token string) error {
	rt := models.RefreshToken{UserID: userID, Token: token}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
		}).
		Create(&rt).Error
}

func (r *GormRepo) FindRefreshToken(ctx context.Context, userID uint) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}
