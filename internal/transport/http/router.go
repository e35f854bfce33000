package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/mfedotov/shop_backend/internal/handlers"
	"github.com/mfedotov/shop_backend/internal/middleware/auth"
	"github.com/mfedotov/shop_backend/internal/tokens"
)

type Deps struct {
	Codec          tokens.Codec
	AuthHandler    *handlers.AuthHandler
	CartHandler    *handlers.CartHandler
	OrderHandler   *handlers.OrderHandler
	ProductHandler *handlers.ProductHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/signup", d.AuthHandler.SignUp)
	v1.POST("/auth/signin", d.AuthHandler.SignIn)
	v1.POST("/auth/refresh_token", d.AuthHandler.Refresh)

	v1.GET("/products/:id", d.ProductHandler.GetProduct)
	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	requireLogin := auth.RequireLogin(d.Codec)

	cart := v1.Group("/cart", requireLogin)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/item", d.CartHandler.AddItem)
	cart.DELETE("/item/:product_id", d.CartHandler.RemoveItem)

	order := v1.Group("/order", requireLogin)
	order.POST("", d.OrderHandler.PlaceOrder)
	order.GET("", d.OrderHandler.ListOrders)
}
