package repo

import (
	"context"

	"github.com/mfedotov/shop_backend/internal/models"
)

// ListOrders pages through a user's orders in creation order and counts the
// full result set with the same filter.
func (r *GormRepo) ListOrders(ctx context.Context, userID uint, offset, limit int) ([]models.Order, int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err = r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
