package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/repository"
)

// BanGuard rejects requests from banned accounts. A TEMPORARY ban whose
// expiry has passed is cleared here, on the user's next authenticated
// access; nothing sweeps expired bans in the background. Must run after
// JWTAuth.
func BanGuard(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, err := UserIDFrom(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, uid)
			if err != nil {
				if err == sql.ErrNoRows {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "compte introuvable"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
			}

			now := time.Now().UTC()
			if u.BanType == model.BanTemporary && u.BanExpiry != nil && !u.BanExpiry.After(now) {
				// Lazy expiry: the ban ended, clear it and let the request through.
				_ = users.ClearBan(ctx, uid)
			} else if u.IsBanned(now) {
				msg := "compte suspendu"
				if u.BanReason != "" {
					msg += ": " + u.BanReason
				}
				return c.JSON(http.StatusForbidden, echo.Map{"message": msg})
			}
			return next(c)
		}
	}
}
