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
)

// ReponseHandler exposes seller responses to demandes. A reponse is created
// once and never updated; the unique key on (demande, vendeur) turns a
// duplicate submission into a 409 even under concurrent requests.
type ReponseHandler struct {
	Demandes      *repository.DemandeRepo
	Reponses      *repository.ReponseRepo
	Notifications *repository.NotificationRepo
}

func NewReponseHandler(d *repository.DemandeRepo, r *repository.ReponseRepo, n *repository.NotificationRepo) *ReponseHandler {
	if d == nil || r == nil || n == nil {
		panic("nil repository passed to NewReponseHandler")
	}
	return &ReponseHandler{Demandes: d, Reponses: r, Notifications: n}
}

type createReponseReq struct {
	Message string        `json:"message"`
	Images  []model.Image `json:"images"`
}

type reponseResp struct {
	ID        uint64        `json:"id"`
	DemandeID uint64        `json:"demandeId"`
	VendeurID uint64        `json:"vendeurId"`
	Message   string        `json:"message"`
	Images    []model.Image `json:"images"`
	CreatedAt string        `json:"createdAt"`
}

// Create handles POST /v1/demandes/:id/reponses (role VENDEUR).
func (h *ReponseHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	demandeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id de demande invalide"})
	}
	var req createReponseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "corps de requête invalide"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "message requis"})
	}
	if !validImages(req.Images) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": fmt.Sprintf("au plus %d images, chacune avec url et publicId", model.MaxImages)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Demandes.GetByID(ctx, demandeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "demande introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	if d.AcheteurID == uid {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "impossible de répondre à sa propre demande"})
	}

	rep := model.Reponse{
		DemandeID: demandeID,
		VendeurID: uid,
		Message:   req.Message,
		Images:    req.Images,
	}
	if err := h.Reponses.Create(ctx, &rep); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"message": "vous avez déjà répondu à cette demande"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "création de la réponse échouée"})
	}

	// Notify the demande owner; a failure here never fails the reponse.
	notif := model.Notification{
		UserID:       d.AcheteurID,
		Type:         model.NotifReponse,
		DemandeID:    d.ID,
		DemandeTitre: d.Titre,
		ExpediteurID: uid,
		Contenu:      fmt.Sprintf("Nouvelle réponse à votre demande %q", d.Titre),
	}
	if err := h.Notifications.Create(ctx, &notif); err != nil {
		log.Printf("reponse %d: owner notification failed: %v", rep.ID, err)
	}
	_ = queue_publisher.PublishReponseCreated(ctx, queue.ReponseCreatedEvent{
		ReponseID:  rep.ID,
		DemandeID:  d.ID,
		VendeurID:  uid,
		AcheteurID: d.AcheteurID,
		CreatedAt:  rep.CreatedAt.Format(time.RFC3339),
	})

	imgs := rep.Images
	if imgs == nil {
		imgs = []model.Image{}
	}
	return c.JSON(http.StatusCreated, reponseResp{
		ID:        rep.ID,
		DemandeID: rep.DemandeID,
		VendeurID: rep.VendeurID,
		Message:   rep.Message,
		Images:    imgs,
		CreatedAt: rep.CreatedAt.Format(time.RFC3339),
	})
}

// List handles GET /v1/reponses?demandeId=&vendeurId=&acheteurId=.
func (h *ReponseHandler) List(c echo.Context) error {
	demandeID, err := optionalIDParam(c, "demandeId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "demandeId invalide"})
	}
	vendeurID, err := optionalIDParam(c, "vendeurId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "vendeurId invalide"})
	}
	acheteurID, err := optionalIDParam(c, "acheteurId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "acheteurId invalide"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Reponses.List(ctx, demandeID, vendeurID, acheteurID, maxList)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	for i := range details {
		if details[i].Images == nil {
			details[i].Images = []model.Image{}
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"reponses": details})
}

// optionalIDParam parses a query parameter as an id, with 0 meaning absent.
func optionalIDParam(c echo.Context, name string) (uint64, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return 0, nil
	}
	return strconv.ParseUint(v, 10, 64)
}
