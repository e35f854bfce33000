package service

import (
	"context"
	"fmt"

	"github.com/mfedotov/shop_backend/internal/logging"
	"github.com/mfedotov/shop_backend/internal/models"
	"github.com/mfedotov/shop_backend/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

// CartView is the read model for GetCart: the cart with resolved products
// and the running total. A user who never added anything gets the empty
// sentinel (ID 0, no items) instead of an error.
type CartView struct {
	ID         uint              `json:"id"`
	Items      []models.CartItem `json:"items"`
	TotalPrice int64             `json:"total_price"`
}

// AddItem puts quantity units of a product into the user's cart, creating
// the cart lazily and folding repeated products into one line. The stock
// check here is advisory only; the real reservation happens at placement.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int64) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID, "product_id", productID)

	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	product, err := s.Repo.FindProduct(ctx, productID)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("product not found")
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}
	if product.Quantity < quantity {
		l.Warn("insufficient stock", "available", product.Quantity, "requested", quantity)
		return nil, &InsufficientStockError{ProductID: productID}
	}

	cart, err := s.Repo.FindOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.FindCartItem(ctx, cart.ID, productID)
	if err == nil {
		item.Quantity += quantity
		if err := s.Repo.SaveCartItem(ctx, item); err != nil {
			return nil, err
		}
		return item, nil
	}
	if !repo.IsNotFound(err) {
		return nil, err
	}

	newItem := models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.Repo.CreateCartItem(ctx, &newItem); err != nil {
		return nil, err
	}
	return &newItem, nil
}

func (s *CartService) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	cart, err := s.Repo.CartWithItems(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return &CartView{Items: []models.CartItem{}}, nil
		}
		return nil, err
	}

	var total int64
	for _, item := range cart.Items {
		total += item.Product.Price * item.Quantity
	}
	return &CartView{ID: cart.ID, Items: cart.Items, TotalPrice: total}, nil
}

// RemoveItem drops a whole product line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) error {
	cart, err := s.Repo.CartWithItems(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return fmt.Errorf("%w: cart", ErrNotFound)
		}
		return err
	}
	if err := s.Repo.DeleteCartItem(ctx, cart.ID, productID); err != nil {
		if repo.IsNotFound(err) {
			return fmt.Errorf("%w: cart item for product %d", ErrNotFound, productID)
		}
		return err
	}
	return nil
}
