package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/mfedotov/shop_backend/internal/logging"
	"github.com/mfedotov/shop_backend/internal/models"
	"github.com/mfedotov/shop_backend/internal/repo"
	"github.com/mfedotov/shop_backend/internal/util"
)

// placeRetries bounds re-runs of the placement transaction when the store
// reports a serialization conflict. Business failures are never retried.
const placeRetries = 3

type OrderService struct {
	Repo *repo.GormRepo
}

type OrderPage struct {
	CurrentPage int            `json:"current_page"`
	Size        int            `json:"size"`
	TotalPage   int            `json:"total_page"`
	TotalItems  int64          `json:"total_items"`
	Items       []models.Order `json:"items"`
}

// PlaceOrder converts the user's cart into an immutable PENDING order:
// stock is decremented, each line's price is snapshotted, the order and its
// items are written and the cart is emptied, all in one transaction. If any
// line lacks stock the whole call rolls back and nothing is persisted.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, shippingAddress string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", userID)

	var (
		order *models.Order
		err   error
	)
	for attempt := 1; attempt <= placeRetries; attempt++ {
		order, err = s.placeOnce(ctx, userID, shippingAddress)
		if err == nil || !retryableStoreError(err) {
			break
		}
		l.Warn("placement conflict, retrying", "attempt", attempt, "error", err)
	}
	if err != nil {
		return nil, err
	}

	l.Info("order placed", "order_id", order.ID, "total_price", order.TotalPrice, "items", len(order.Items))
	return order, nil
}

func (s *OrderService) placeOnce(ctx context.Context, userID uint, shippingAddress string) (*models.Order, error) {
	var placed models.Order

	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.Repo.WithTx(tx)

		var cart models.Cart
		if err := tx.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoCart
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		// Decrement in ascending product-id order so two placements that
		// overlap on several products take row locks in the same sequence.
		items := make([]models.CartItem, len(cart.Items))
		copy(items, cart.Items)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		var (
			orderItems []models.OrderItem
			total      int64
		)
		for _, it := range items {
			if it.Product.ID == 0 {
				return fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
			}
			ok, err := txRepo.DecrementStock(it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ProductID: it.ProductID}
			}
			orderItems = append(orderItems, models.OrderItem{
				ProductID:  it.ProductID,
				OrderPrice: it.Product.Price,
				Quantity:   it.Quantity,
			})
			total += it.Product.Price * it.Quantity
		}

		placed = models.Order{
			UserID:          userID,
			ShippingAddress: shippingAddress,
			TotalPrice:      total,
			Status:          models.StatusPending,
			Items:           orderItems,
		}
		if err := tx.Create(&placed).Error; err != nil {
			return err
		}

		return txRepo.ClearCart(cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return &placed, nil
}

// ListOrders returns one page of the user's orders in creation order with
// totals computed from a real count over the same filter. An out-of-range
// page yields an empty page, not an error.
func (s *OrderService) ListOrders(ctx context.Context, userID uint, page, size int) (*OrderPage, error) {
	offset, limit := util.Calculate(page, size)

	orders, total, err := s.Repo.ListOrders(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPage := int(total) / limit
	if int(total)%limit != 0 {
		totalPage++
	}

	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderPage{
		CurrentPage: offset/limit + 1,
		Size:        len(orders),
		TotalPage:   totalPage,
		TotalItems:  total,
		Items:       orders,
	}, nil
}

// retryableStoreError matches transient conflicts worth re-running the
// placement for: postgres serialization/deadlock failures and sqlite busy.
func retryableStoreError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 40001") ||
		strings.Contains(msg, "SQLSTATE 40P01") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
