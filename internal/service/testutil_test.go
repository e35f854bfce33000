package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mfedotov/shop_backend/internal/hash"
	"github.com/mfedotov/shop_backend/internal/models"
	"github.com/mfedotov/shop_backend/internal/repo"
	"github.com/mfedotov/shop_backend/internal/tokens"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// keep every session on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.RefreshToken{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(newTestDB(t))
}

func newTestCodec() tokens.Codec {
	return tokens.NewCodec([]byte("test-access-secret"), []byte("test-refresh-secret"), "shop_backend_test")
}

func newTestAuth(t *testing.T) (*AuthService, *repo.GormRepo) {
	t.Helper()
	store := newTestRepo(t)
	svc := &AuthService{
		Repo:   store,
		Hasher: hash.Bcrypt{Cost: bcrypt.MinCost},
		Codec:  newTestCodec(),
	}
	return svc, store
}

func seedProduct(t *testing.T, store *repo.GormRepo, name string, price, quantity int64) *models.Product {
	t.Helper()
	p := models.Product{Name: name, Description: name + " description", Price: price, Quantity: quantity}
	require.NoError(t, store.DB.Create(&p).Error)
	return &p
}

func seedCart(t *testing.T, store *repo.GormRepo, userID uint, lines ...models.CartItem) *models.Cart {
	t.Helper()
	cart := models.Cart{UserID: userID}
	require.NoError(t, store.DB.Create(&cart).Error)
	for i := range lines {
		lines[i].CartID = cart.ID
		require.NoError(t, store.DB.Create(&lines[i]).Error)
	}
	return &cart
}
