package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// Identity is the verified caller attached to each authenticated request.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

func SetIdentity(c echo.Context, ident Identity) {
	c.Set(identityKey, ident)
}

func FromContext(c echo.Context) (Identity, error) {
	ident, ok := c.Get(identityKey).(Identity)
	if !ok {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "no identity in context")
	}
	return ident, nil
}
