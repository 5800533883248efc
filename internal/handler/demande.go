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
	"github.com/localdeals/residence/internal/queue"
	"github.com/localdeals/residence/internal/repository"
	queue_publisher "github.com/localdeals/residence/internal/service"
)

// DemandeHandler exposes the catalog of buy requests. Creating a demande
// fans out a notification to every vendeur and publishes a broker event;
// both side effects are best-effort and never fail the primary write.
type DemandeHandler struct {
	Demandes      *repository.DemandeRepo
	Notifications *repository.NotificationRepo
}

func NewDemandeHandler(d *repository.DemandeRepo, n *repository.NotificationRepo) *DemandeHandler {
	if d == nil || n == nil {
		panic("nil repository passed to NewDemandeHandler")
	}
	return &DemandeHandler{Demandes: d, Notifications: n}
}

type createDemandeReq struct {
	Titre        string        `json:"titre"`
	Description  string        `json:"description"`
	Categorie    string        `json:"categorie"`
	Budget       int64         `json:"budget"`
	Localisation string        `json:"localisation"`
	Images       []model.Image `json:"images"`
}

type demandeResp struct {
	ID           uint64        `json:"id"`
	AcheteurID   uint64        `json:"acheteurId"`
	Titre        string        `json:"titre"`
	Description  string        `json:"description"`
	Categorie    string        `json:"categorie"`
	Budget       int64         `json:"budget"`
	Localisation string        `json:"localisation"`
	Images       []model.Image `json:"images"`
	Statut       string        `json:"statut"`
	CreatedAt    string        `json:"createdAt"`
}

func toDemandeResp(d model.Demande) demandeResp {
	imgs := d.Images
	if imgs == nil {
		imgs = []model.Image{}
	}
	return demandeResp{
		ID:           d.ID,
		AcheteurID:   d.AcheteurID,
		Titre:        d.Titre,
		Description:  d.Description,
		Categorie:    d.Categorie,
		Budget:       d.Budget,
		Localisation: d.Localisation,
		Images:       imgs,
		Statut:       d.Statut,
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /v1/demandes (role ACHETEUR).
func (h *DemandeHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	var req createDemandeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "corps de requête invalide"})
	}
	req.Titre = strings.TrimSpace(req.Titre)
	req.Localisation = strings.TrimSpace(req.Localisation)
	if req.Titre == "" || req.Localisation == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "titre et localisation requis"})
	}
	if !model.ValidCategorie(req.Categorie) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "catégorie inconnue"})
	}
	if req.Budget <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "budget invalide"})
	}
	if !validImages(req.Images) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": fmt.Sprintf("au plus %d images, chacune avec url et publicId", model.MaxImages)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d := model.Demande{
		AcheteurID:   uid,
		Titre:        req.Titre,
		Description:  req.Description,
		Categorie:    req.Categorie,
		Budget:       req.Budget,
		Localisation: req.Localisation,
		Images:       req.Images,
	}
	if err := h.Demandes.Create(ctx, &d); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "création de la demande échouée"})
	}

	// Vendor broadcast: one batched insert, best-effort.
	notified, err := h.Notifications.CreateForVendeurs(ctx, &d,
		fmt.Sprintf("Nouvelle demande: %s", d.Titre))
	if err != nil {
		log.Printf("demande %d: vendeur fan-out failed: %v", d.ID, err)
	}
	_ = queue_publisher.PublishDemandeCreated(ctx, queue.DemandeCreatedEvent{
		DemandeID:     d.ID,
		AcheteurID:    d.AcheteurID,
		Titre:         d.Titre,
		Categorie:     d.Categorie,
		Budget:        d.Budget,
		Localisation:  d.Localisation,
		VendeursNotes: notified,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, toDemandeResp(d))
}

// List handles GET /v1/demandes. Public; soft-deleted demandes never appear.
func (h *DemandeHandler) List(c echo.Context) error {
	categorie := strings.TrimSpace(c.QueryParam("categorie"))
	localisation := strings.TrimSpace(c.QueryParam("localisation"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	demandes, err := h.Demandes.List(ctx, categorie, localisation, maxDemandeList)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	out := make([]demandeResp, 0, len(demandes))
	for _, d := range demandes {
		out = append(out, toDemandeResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"demandes": out})
}

// Get handles GET /v1/demandes/:id. Public.
func (h *DemandeHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id de demande invalide"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Demandes.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "demande introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	return c.JSON(http.StatusOK, toDemandeResp(d))
}

// Close handles PUT /v1/demandes/:id/cloture (owner or admin).
func (h *DemandeHandler) Close(c echo.Context) error {
	return h.transition(c, model.DemandeCloturee)
}

// Delete handles DELETE /v1/demandes/:id (owner or admin). The row is only
// soft-deleted; it disappears from listings and lookups but stays in the
// store.
func (h *DemandeHandler) Delete(c echo.Context) error {
	return h.transition(c, model.DemandeSupprime)
}

func (h *DemandeHandler) transition(c echo.Context, statut string) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "non authentifié"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "id de demande invalide"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Demandes.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "demande introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "erreur serveur"})
	}
	if d.AcheteurID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "accès interdit"})
	}
	if err := h.Demandes.UpdateStatut(ctx, id, statut); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "demande introuvable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "mise à jour échouée"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "statut": statut})
}
