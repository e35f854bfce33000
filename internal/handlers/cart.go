package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mfedotov/shop_backend/internal/middleware/auth"
	"github.com/mfedotov/shop_backend/internal/mykafka"
	"github.com/mfedotov/shop_backend/internal/service"
)

type CartHandler struct {
	Cart     *service.CartService
	Producer *mykafka.Producer
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint  `json:"product_id"`
		Quantity  int64 `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.Cart.AddItem(c.Request().Context(), ident.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, mykafka.TopicCartEvents, fmt.Sprint(ident.UserID), map[string]any{
		"type":       "cart_item_added",
		"user_id":    ident.UserID,
		"product_id": req.ProductID,
		"quantity":   item.Quantity,
	})
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return err
	}

	view, err := h.Cart.GetCart(c.Request().Context(), ident.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Cart.RemoveItem(c.Request().Context(), ident.UserID, uint(productID)); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, mykafka.TopicCartEvents, fmt.Sprint(ident.UserID), map[string]any{
		"type":       "cart_item_removed",
		"user_id":    ident.UserID,
		"product_id": productID,
	})
	return c.JSON(http.StatusOK, echo.Map{"deleted_product": productID})
}
