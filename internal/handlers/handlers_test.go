package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mfedotov/shop_backend/internal/handlers"
	"github.com/mfedotov/shop_backend/internal/hash"
	"github.com/mfedotov/shop_backend/internal/models"
	"github.com/mfedotov/shop_backend/internal/repo"
	"github.com/mfedotov/shop_backend/internal/service"
	"github.com/mfedotov/shop_backend/internal/tokens"
	httpserver "github.com/mfedotov/shop_backend/internal/transport/http"
)

type testEnv struct {
	t     *testing.T
	e     *echo.Echo
	store *repo.GormRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
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

	store := repo.New(db)
	codec := tokens.NewCodec([]byte("test-access-secret"), []byte("test-refresh-secret"), "shop_backend_test")

	deps := httpserver.Deps{
		Codec:          codec,
		AuthHandler:    &handlers.AuthHandler{Auth: &service.AuthService{Repo: store, Hasher: hash.Bcrypt{Cost: bcrypt.MinCost}, Codec: codec}},
		CartHandler:    &handlers.CartHandler{Cart: &service.CartService{Repo: store}},
		OrderHandler:   &handlers.OrderHandler{Orders: &service.OrderService{Repo: store}},
		ProductHandler: &handlers.ProductHandler{Repo: store},
	}

	e := echo.New()
	httpserver.Register(e, &deps)

	return &testEnv{t: t, e: e, store: store}
}

func (env *testEnv) do(method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) signIn(email, password string) (*http.Cookie, *http.Cookie) {
	env.t.Helper()

	rec := env.do(http.MethodPost, "/api/v1/auth/signup", map[string]string{"email": email, "password": password})
	require.Equal(env.t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/auth/signin", map[string]string{"email": email, "password": password})
	require.Equal(env.t, http.StatusOK, rec.Code)

	var access, refresh *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		switch ck.Name {
		case "accessToken":
			access = ck
		case "refreshToken":
			refresh = ck
		}
	}
	require.NotNil(env.t, access)
	require.NotNil(env.t, refresh)
	return access, refresh
}

func TestEndToEndOrderFlow(t *testing.T) {
	env := newTestEnv(t)

	productA := models.Product{Name: "keyboard", Description: "mech", Price: 500, Quantity: 10}
	productB := models.Product{Name: "mouse", Description: "optical", Price: 300, Quantity: 1}
	require.NoError(t, env.store.DB.Create(&productA).Error)
	require.NoError(t, env.store.DB.Create(&productB).Error)

	access, _ := env.signIn("buyer@example.com", "password")

	rec := env.do(http.MethodPost, "/api/v1/cart/item",
		map[string]any{"product_id": productA.ID, "quantity": 2}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/cart/item",
		map[string]any{"product_id": productB.ID, "quantity": 1}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/order",
		map[string]string{"shipping_address": "X"}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, models.StatusPending, order.Status)
	require.Equal(t, int64(2*500+1*300), order.TotalPrice)
	require.Len(t, order.Items, 2)

	var a, b models.Product
	require.NoError(t, env.store.DB.First(&a, productA.ID).Error)
	require.NoError(t, env.store.DB.First(&b, productB.ID).Error)
	require.Equal(t, int64(8), a.Quantity)
	require.Equal(t, int64(0), b.Quantity)

	rec = env.do(http.MethodGet, "/api/v1/cart", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	var view service.CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Empty(t, view.Items)

	rec = env.do(http.MethodGet, "/api/v1/order?page=1&size=10", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	var page service.OrderPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, int64(1), page.TotalItems)
	require.Equal(t, 1, page.TotalPage)
	require.Len(t, page.Items, 1)
}

func TestCartRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	bad := &http.Cookie{Name: "accessToken", Value: "garbage", Path: "/"}
	rec = env.do(http.MethodGet, "/api/v1/cart", nil, bad)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrderEmptyCartHTTP(t *testing.T) {
	env := newTestEnv(t)

	access, _ := env.signIn("buyer@example.com", "password")

	rec := env.do(http.MethodPost, "/api/v1/order", map[string]string{"shipping_address": "X"}, access)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsufficientStockHTTP(t *testing.T) {
	env := newTestEnv(t)

	product := models.Product{Name: "keyboard", Description: "mech", Price: 500, Quantity: 5}
	require.NoError(t, env.store.DB.Create(&product).Error)

	access, _ := env.signIn("buyer@example.com", "password")

	rec := env.do(http.MethodPost, "/api/v1/cart/item",
		map[string]any{"product_id": product.ID, "quantity": 3}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	// second add would exceed the available stock
	rec = env.do(http.MethodPost, "/api/v1/cart/item",
		map[string]any{"product_id": product.ID, "quantity": 9}, access)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRefreshRotationHTTP(t *testing.T) {
	env := newTestEnv(t)

	_, refresh := env.signIn("buyer@example.com", "password")

	rec := env.do(http.MethodPost, "/api/v1/auth/refresh_token", nil, refresh)
	require.Equal(t, http.StatusCreated, rec.Code)

	// the superseded cookie no longer works
	rec = env.do(http.MethodPost, "/api/v1/auth/refresh_token", nil, refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/auth/refresh_token", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	product := models.Product{Name: "keyboard", Description: "mech", Price: 500, Quantity: 5}
	require.NoError(t, env.store.DB.Create(&product).Error)

	rec := env.do(http.MethodGet, "/api/v1/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, product.Name, got.Name)

	rec = env.do(http.MethodGet, "/api/v1/products/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
