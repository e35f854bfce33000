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

type OrderHandler struct {
	Orders   *service.OrderService
	Producer *mykafka.Producer
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		ShippingAddress string `json:"shipping_address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ShippingAddress == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "shipping_address is required")
	}

	order, err := h.Orders.PlaceOrder(c.Request().Context(), ident.UserID, req.ShippingAddress)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, mykafka.TopicOrderEvents, fmt.Sprint(ident.UserID), map[string]any{
		"type":        "order_created",
		"user_id":     ident.UserID,
		"order_id":    order.ID,
		"total_price": order.TotalPrice,
	})
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	result, err := h.Orders.ListOrders(c.Request().Context(), ident.UserID, page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
