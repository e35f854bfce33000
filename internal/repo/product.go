package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/mfedotov/shop_backend/internal/models"
)

func (r *GormRepo) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock is the oversell guard: a conditional single-statement
// decrement that only applies when enough stock remains. Zero rows affected
// means the check failed (missing product or insufficient quantity) and the
// surrounding transaction must abort. Call through WithTx so the decrement
// joins the placement transaction.
func (r *GormRepo) DecrementStock(productID uint, qty int64) (bool, error) {
	res := r.DB.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
