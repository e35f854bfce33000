package repo

import (
	"gorm.io/gorm"
)

// GormRepo is the single persistence gateway. Services own transaction
// boundaries via r.DB.Transaction and run tx-scoped queries through
// r.WithTx(tx).
type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// WithTx returns a gateway bound to the given transaction handle, so the
// same query methods work inside and outside a transaction.
func (r *GormRepo) WithTx(tx *gorm.DB) *GormRepo {
	return &GormRepo{DB: tx}
}
