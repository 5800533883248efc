package handler

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/queue"
	"github.com/localdeals/residence/internal/repository"
	queue_publisher "github.com/localdeals/residence/internal/service"
	"github.com/localdeals/residence/internal/utils"
)

// MessageHandler exposes the messaging subsystem: message creation, per-
// conversation reads, per-user conversation summaries and deletion of
// messages or whole conversations. Conversation membership is derived from
// the conversation id itself, so no separate membership table exists.
type MessageHandler struct {
	Users         *repository.UserRepo
	Demandes      *repository.DemandeRepo
	Messages      *repository.MessageRepo
	Notifications *repository.NotificationRepo
}

func NewMessageHandler(u *repository.UserRepo, d *repository.DemandeRepo, m *repository.MessageRepo, n *repository.NotificationRepo) *MessageHandler {
	if u == nil || d == nil || m == nil || n == nil {
		panic("nil repository passed to NewMessageHandler")
	}
	return &MessageHandler{Users: u, Demandes: d, Messages: m, Notifications: n}
}

type createMessageReq struct {
	ReceiverID uint64        `json:"receiverId"`
	DemandeID  uint64        `json:"demandeId"`
	Message    string        `json:"message"`
	Images     []model.Image `json:"images"`
}

// messageResp reshapes a message for the client: ids stringified, timestamp
// ISO-formatted.
type messageResp struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversationId"`
	DemandeID      string        `json:"demandeId"`
	ExpediteurID   string        `json:"expediteurId"`
	DestinataireID string        `json:"destinataireId"`
	Message        string        `json:"message"`
	Images         []model.Image `json:"images"`
	CreatedAt      string        `json:"createdAt"`
}

func toMessageResp(m model.Message) messageResp {
	imgs := m.Images
	if imgs == nil {
		imgs = []model.Image{}
	}
	return messageResp{
		ID:             strconv.FormatUint(m.ID, 10),
		ConversationID: m.ConversationID,
		DemandeID:      strconv.FormatUint(m.DemandeID, 10),
		ExpediteurID:   strconv.FormatUint(m.ExpediteurID, 10),
		DestinataireID: strconv.FormatUint(m.DestinataireID, 10),
		Message:        m.Contenu,
		Images:         imgs,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}

// conversationSummary is one entry of the per-user conversation listing.
type conversationSummary struct {
	ConversationID string              `json:"conversationId"`
	DemandeID      string              `json:"demandeId"`
	DemandeTitre   string              `json:"demandeTitre"`
	OtherUser      model.PublicProfile `json:"otherUser"`
	LastMessage    messageResp         `json:"lastMessage"`
	UnreadCount    int64               `json:"unreadCount"`
}

// Create handles POST /v1/messages.
func (h *MessageHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	var req createMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "corps de requête invalide"})
	}
	if req.ReceiverID == 0 || req.DemandeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "receiverId et demandeId requis"})
	}
	if req.ReceiverID == uid {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "impossible de s'envoyer un message"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" && len(req.Images) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "message ou images requis"})
	}
	if !validImages(req.Images) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": fmt.Sprintf("au plus %d images, chacune avec url et publicId", model.MaxImages)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Demandes.GetByID(ctx, req.DemandeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "demande introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	if _, err := h.Users.GetByID(ctx, req.ReceiverID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "destinataire introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}

	convID := utils.DeriveConversationID(
		strconv.FormatUint(req.DemandeID, 10),
		strconv.FormatUint(uid, 10),
		strconv.FormatUint(req.ReceiverID, 10),
	)
	m := model.Message{
		ConversationID: convID,
		DemandeID:      req.DemandeID,
		ExpediteurID:   uid,
		DestinataireID: req.ReceiverID,
		Contenu:        req.Message,
		Images:         req.Images,
	}
	if err := h.Messages.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "envoi du message échoué"})
	}

	// Receiver notification carries the conversation id, sender, demande id
	// and a title snapshot. Best-effort: the persisted message decides the
	// response.
	notif := model.Notification{
		UserID:         req.ReceiverID,
		Type:           model.NotifMessage,
		ConversationID: convID,
		DemandeID:      d.ID,
		DemandeTitre:   d.Titre,
		MessageID:      m.ID,
		ExpediteurID:   uid,
		Contenu:        "Nouveau message",
	}
	if err := h.Notifications.Create(ctx, &notif); err != nil {
		log.Printf("message %d: receiver notification failed: %v", m.ID, err)
	}
	_ = queue_publisher.PublishMessageCreated(ctx, queue.MessageCreatedEvent{
		MessageID:      m.ID,
		ConversationID: convID,
		DemandeID:      d.ID,
		ExpediteurID:   uid,
		DestinataireID: req.ReceiverID,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"message": toMessageResp(m)})
}

// ListConversation handles GET /v1/messages/:conversationId. Only the two
// participants encoded in the id (or an admin) may read the thread; an
// empty thread is reported as absent.
func (h *MessageHandler) ListConversation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	convID := c.Param("conversationId")
	if _, _, _, ok := utils.ParseConversationID(convID); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id de conversation invalide"})
	}
	if !utils.IsConversationParticipant(convID, strconv.FormatUint(uid, 10)) && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "accès interdit"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Messages.ListByConversation(ctx, convID, maxConversationMessages)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	if len(msgs) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "conversation introuvable"})
	}
	out := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResp(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

// Conversations handles GET /v1/conversations/:userId (self or admin).
//
// The user's newest messages are scanned once and reduced to the first
// message seen per conversation id; because the scan is newest-first that
// message is the conversation's latest, and the reduced list is already
// sorted by last-message time descending. Counterpart profiles and unread
// counts are then resolved with one batched query each.
func (h *MessageHandler) Conversations(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id d'utilisateur invalide"})
	}
	if callerID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "accès interdit"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	msgs, err := h.Messages.ListRecentByUser(ctx, userID, maxConversationScan)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}

	// One entry per conversation, newest message wins.
	latest := make([]model.Message, 0)
	seen := make(map[string]struct{})
	for _, m := range msgs {
		if _, dup := seen[m.ConversationID]; dup {
			continue
		}
		seen[m.ConversationID] = struct{}{}
		latest = append(latest, m)
	}

	convIDs := make([]string, 0, len(latest))
	otherIDs := make([]uint64, 0, len(latest))
	demandeIDs := make([]uint64, 0, len(latest))
	for _, m := range latest {
		convIDs = append(convIDs, m.ConversationID)
		other := m.ExpediteurID
		if other == userID {
			other = m.DestinataireID
		}
		otherIDs = append(otherIDs, other)
		demandeIDs = append(demandeIDs, m.DemandeID)
	}

	profiles, err := h.Users.PublicByIDs(ctx, otherIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	titres, err := h.Demandes.TitlesByIDs(ctx, demandeIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	unread, err := h.Notifications.UnreadByConversations(ctx, userID, convIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}

	out := make([]conversationSummary, 0, len(latest))
	for i, m := range latest {
		other, found := profiles[otherIDs[i]]
		if !found {
			other = model.DeletedProfile(otherIDs[i])
		}
		out = append(out, conversationSummary{
			ConversationID: m.ConversationID,
			DemandeID:      strconv.FormatUint(m.DemandeID, 10),
			DemandeTitre:   titres[m.DemandeID],
			OtherUser:      other,
			LastMessage:    toMessageResp(m),
			UnreadCount:    unread[m.ConversationID],
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": out})
}

// DeleteMessage handles DELETE /v1/messages/:messageId (sender or admin).
// Notifications referencing the message go with it.
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	id, ok := pathID(c, "messageId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id de message invalide"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "message introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	if m.ExpediteurID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "accès interdit"})
	}
	if err := h.Messages.DeleteByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "message introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "suppression échouée"})
	}
	if err := h.Notifications.DeleteByMessage(ctx, id); err != nil {
		log.Printf("message %d: notification cleanup failed: %v", id, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteConversation handles DELETE /v1/conversations/:conversationId
// (participant or admin). Removes every message of the conversation and
// every notification referencing it, and reports the removed-message count.
func (h *MessageHandler) DeleteConversation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	convID := c.Param("conversationId")
	if _, _, _, ok := utils.ParseConversationID(convID); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id de conversation invalide"})
	}
	if !utils.IsConversationParticipant(convID, strconv.FormatUint(uid, 10)) && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "accès interdit"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	removed, err := h.Messages.DeleteByConversation(ctx, convID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "suppression échouée"})
	}
	if removed == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "conversation introuvable"})
	}
	if _, err := h.Notifications.DeleteByConversation(ctx, convID); err != nil {
		log.Printf("conversation %s: notification cleanup failed: %v", convID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": removed})
}
