package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/localdeals/residence/internal/model"
)

// ReponseRepo persists seller responses. The (demande_id, vendeur_id) unique
// key makes the one-response-per-seller rule hold even under concurrent
// submissions; a racy read-then-write check would not.
type ReponseRepo struct{ DB *sql.DB }

func NewReponseRepo(db *sql.DB) *ReponseRepo { return &ReponseRepo{DB: db} }

// ReponseDetail is a reponse joined with its demande title and the seller's
// display name, as returned by the listing endpoint.
type ReponseDetail struct {
	ID           uint64        `json:"id"`
	DemandeID    uint64        `json:"demandeId"`
	DemandeTitre string        `json:"demandeTitre"`
	VendeurID    uint64        `json:"vendeurId"`
	VendeurNom   string        `json:"vendeurNom"`
	Message      string        `json:"message"`
	Images       []model.Image `json:"images"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Create inserts a reponse, populating ID and CreatedAt. A duplicate
// (demande, vendeur) pair yields ErrConflict.
func (r *ReponseRepo) Create(ctx context.Context, rep *model.Reponse) error {
	raw, err := encodeImages(rep.Images)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reponses (demande_id, vendeur_id, message, images, created_at) VALUES (?,?,?,?,?)",
		rep.DemandeID, rep.VendeurID, rep.Message, raw, now)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	rep.CreatedAt = now
	return nil
}

// List returns reponses joined with demande and vendeur info, filtered by
// any combination of demande, vendeur and demande owner, newest first and
// bounded by limit. Responses to soft-deleted demandes are excluded.
func (r *ReponseRepo) List(ctx context.Context, demandeID, vendeurID, acheteurID uint64, limit int) ([]ReponseDetail, error) {
	q := `SELECT r.id, r.demande_id, d.titre, r.vendeur_id, u.nom, r.message, r.images, r.created_at
	      FROM reponses r
	      JOIN demandes d ON d.id = r.demande_id
	      JOIN users u ON u.id = r.vendeur_id
	      WHERE d.statut<>?`
	args := []any{model.DemandeSupprime}
	if demandeID != 0 {
		q += " AND r.demande_id=?"
		args = append(args, demandeID)
	}
	if vendeurID != 0 {
		q += " AND r.vendeur_id=?"
		args = append(args, vendeurID)
	}
	if acheteurID != 0 {
		q += " AND d.acheteur_id=?"
		args = append(args, acheteurID)
	}
	q += " ORDER BY r.created_at DESC, r.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReponseDetail, 0)
	for rows.Next() {
		var d ReponseDetail
		var rawImages string
		if err := rows.Scan(&d.ID, &d.DemandeID, &d.DemandeTitre, &d.VendeurID,
			&d.VendeurNom, &d.Message, &rawImages, &d.CreatedAt); err != nil {
			return nil, err
		}
		if d.Images, err = decodeImages(rawImages); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
