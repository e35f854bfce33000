package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mfedotov/shop_backend/internal/tokens"
)

// RequireLogin verifies the access-token cookie and attaches the verified
// identity to the request context. Verification never mutates state; an
// expired token means the client must call the refresh endpoint itself.
func RequireLogin(codec tokens.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie("accessToken")
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := codec.VerifyAccess(cookie.Value)
			if err != nil {
				if errors.Is(err, tokens.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "access token has expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			userID, err := tokens.UserID(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
			}

			SetIdentity(c, Identity{UserID: userID, Email: claims.Email, Role: claims.Role})
			return next(c)
		}
	}
}
