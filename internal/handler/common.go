package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/localdeals/residence/internal/model"
)

// Row caps applied to list endpoints. These are safety bounds, not
// pagination: rows past the cap are silently omitted.
const (
	maxConversationScan     = 3000 // newest messages scanned per user when aggregating conversations
	maxConversationMessages = 2000 // messages returned for a single conversation
	maxDemandeList          = 500  // public demande listing
	maxList                 = 200  // notifications, reponses, admin user listing
)

// getUserID extracts the authenticated user id from echo.Context. JWT
// numeric claims decode as float64.
func getUserID(c echo.Context) (uint64, error) {
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

// isAdmin reports whether the authenticated caller holds the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}

// pathID parses a numeric path parameter; 0 is never a valid id.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// validImages checks the image attachment constraints shared by demandes,
// reponses and messages: at most model.MaxImages entries, each carrying both
// the url and the external storage handle.
func validImages(imgs []model.Image) bool {
	if len(imgs) > model.MaxImages {
		return false
	}
	for _, img := range imgs {
		if img.URL == "" || img.PublicID == "" {
			return false
		}
	}
	return true
}
