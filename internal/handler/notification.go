package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/repository"
)

// NotificationHandler exposes per-user notification reads and read-flag
// updates. Every route is self-or-admin: a user only sees their own rows.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	if n == nil {
		panic("nil repository passed to NewNotificationHandler")
	}
	return &NotificationHandler{Notifications: n}
}

type notificationResp struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	DemandeID      string `json:"demandeId,omitempty"`
	DemandeTitre   string `json:"demandeTitre,omitempty"`
	MessageID      string `json:"messageId,omitempty"`
	ExpediteurID   string `json:"expediteurId,omitempty"`
	Contenu        string `json:"contenu"`
	IsRead         bool   `json:"isRead"`
	CreatedAt      string `json:"createdAt"`
}

func toNotificationResp(n model.Notification) notificationResp {
	out := notificationResp{
		ID:             strconv.FormatUint(n.ID, 10),
		UserID:         strconv.FormatUint(n.UserID, 10),
		Type:           n.Type,
		ConversationID: n.ConversationID,
		DemandeTitre:   n.DemandeTitre,
		Contenu:        n.Contenu,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	}
	if n.DemandeID != 0 {
		out.DemandeID = strconv.FormatUint(n.DemandeID, 10)
	}
	if n.MessageID != 0 {
		out.MessageID = strconv.FormatUint(n.MessageID, 10)
	}
	if n.ExpediteurID != 0 {
		out.ExpediteurID = strconv.FormatUint(n.ExpediteurID, 10)
	}
	return out
}

// authorizeUserParam resolves the :userId path parameter and checks the
// caller is that user or an admin. A non-nil error response has already
// been written when ok is false.
func authorizeUserParam(c echo.Context) (uint64, bool) {
	callerID, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
		return 0, false
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"message": "id d'utilisateur invalide"})
		return 0, false
	}
	if callerID != userID && !isAdmin(c) {
		_ = c.JSON(http.StatusForbidden, echo.Map{"message": "accès interdit"})
		return 0, false
	}
	return userID, true
}

// List handles GET /v1/notifications/:userId. The unread=true query
// parameter narrows it the same way the /unread route does.
func (h *NotificationHandler) List(c echo.Context) error {
	return h.list(c, c.QueryParam("unread") == "true")
}

// ListUnread handles GET /v1/notifications/:userId/unread.
func (h *NotificationHandler) ListUnread(c echo.Context) error {
	return h.list(c, true)
}

func (h *NotificationHandler) list(c echo.Context, onlyUnread bool) error {
	userID, ok := authorizeUserParam(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	notifs, err := h.Notifications.ListByUser(ctx, userID, onlyUnread, maxList)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	out := make([]notificationResp, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, toNotificationResp(n))
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out})
}

// CountUnread handles GET /v1/notifications/:userId/count.
func (h *NotificationHandler) CountUnread(c echo.Context) error {
	userID, ok := authorizeUserParam(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

// MarkRead handles PUT /v1/notifications/:id/read. The store-side user
// guard makes marking someone else's notification indistinguishable from a
// missing one.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id de notification invalide"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "notification introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "mise à jour échouée"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles PUT /v1/notifications/:userId/read-all and reports how
// many rows flipped.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, ok := authorizeUserParam(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "mise à jour échouée"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}
