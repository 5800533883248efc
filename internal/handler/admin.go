package handler

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/repository"
)

// AdminHandler groups moderation endpoints: user listing, ban and unban.
// Routing already restricts these to the ADMIN role.
type AdminHandler struct {
	Users         *repository.UserRepo
	Notifications *repository.NotificationRepo
}

func NewAdminHandler(u *repository.UserRepo, n *repository.NotificationRepo) *AdminHandler {
	if u == nil || n == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: u, Notifications: n}
}

type banReq struct {
	BanType      string `json:"banType"` // temporary | permanent
	Reason       string `json:"reason"`
	DurationDays int    `json:"durationDays"` // temporary bans only
}

type adminUserResp struct {
	ID        uint64     `json:"id"`
	Nom       string     `json:"nom"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	BanType   string     `json:"banType"`
	BanReason string     `json:"banReason,omitempty"`
	BanExpiry *time.Time `json:"banExpiry,omitempty"`
	CreatedAt string     `json:"createdAt"`
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, maxList)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResp{
			ID:        u.ID,
			Nom:       u.Nom,
			Email:     u.Email,
			Role:      u.Role,
			BanType:   u.BanType,
			BanReason: u.BanReason,
			BanExpiry: u.BanExpiry,
			CreatedAt: u.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// BanUser handles PUT /v1/admin/users/:userId/ban. Temporary bans carry an
// expiry computed from durationDays; permanent bans never expire. The
// banned user gets a BAN notification with the reason.
func (h *AdminHandler) BanUser(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id d'utilisateur invalide"})
	}
	if userID == adminID {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "impossible de se bannir soi-même"})
	}
	var req banReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "corps de requête invalide"})
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "motif requis"})
	}

	var banType string
	var expiry *time.Time
	switch strings.ToLower(strings.TrimSpace(req.BanType)) {
	case "temporary", "temporaire":
		if req.DurationDays <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "durationDays requis pour un bannissement temporaire"})
		}
		banType = model.BanTemporary
		t := time.Now().UTC().AddDate(0, 0, req.DurationDays)
		expiry = &t
	case "permanent":
		banType = model.BanPermanent
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "banType doit être temporary ou permanent"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "utilisateur introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	if u.Role == model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "impossible de bannir un administrateur"})
	}
	if err := h.Users.SetBan(ctx, userID, banType, req.Reason, expiry); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "utilisateur introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "bannissement échoué"})
	}

	contenu := fmt.Sprintf("Votre compte a été suspendu: %s", req.Reason)
	if expiry != nil {
		contenu = fmt.Sprintf("Votre compte est suspendu jusqu'au %s: %s",
			expiry.Format("2006-01-02"), req.Reason)
	}
	notif := model.Notification{
		UserID:       userID,
		Type:         model.NotifBan,
		ExpediteurID: adminID,
		Contenu:      contenu,
	}
	if err := h.Notifications.Create(ctx, &notif); err != nil {
		log.Printf("ban user %d: notification failed: %v", userID, err)
	}

	resp := echo.Map{"id": userID, "banType": banType, "reason": req.Reason}
	if expiry != nil {
		resp["banExpiry"] = expiry.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

// UnbanUser handles PUT /v1/admin/users/:userId/unban.
func (h *AdminHandler) UnbanUser(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id d'utilisateur invalide"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "utilisateur introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	if u.BanType == model.BanNone {
		return c.JSON(http.StatusOK, echo.Map{"id": userID, "banType": model.BanNone})
	}
	if err := h.Users.ClearBan(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "levée du bannissement échouée"})
	}

	notif := model.Notification{
		UserID:       userID,
		Type:         model.NotifAdmin,
		ExpediteurID: adminID,
		Contenu:      "Votre compte a été réactivé",
	}
	if err := h.Notifications.Create(ctx, &notif); err != nil {
		log.Printf("unban user %d: notification failed: %v", userID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": userID, "banType": model.BanNone})
}
