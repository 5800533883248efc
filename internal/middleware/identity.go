package middleware

// identity.go holds helpers shared across middleware files for reading the
// authenticated identity that JWTAuth stored in the Echo context.

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserIDFrom extracts the authenticated user id from the context. JWT
// numeric claims decode as float64; older tokens may carry the subject as a
// string.
func UserIDFrom(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// rateKeyUserID is the string form used when building rate-limit bucket
// keys; unauthenticated requests share the "anon" bucket component.
func rateKeyUserID(c echo.Context) string {
	if id, err := UserIDFrom(c); err == nil {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
