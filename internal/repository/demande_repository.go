package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/localdeals/residence/internal/model"
)

// DemandeRepo persists buy requests. Soft-deleted rows stay in the table but
// every read path here filters them out.
type DemandeRepo struct{ DB *sql.DB }

func NewDemandeRepo(db *sql.DB) *DemandeRepo { return &DemandeRepo{DB: db} }

const demandeColumns = "id,acheteur_id,titre,description,categorie,budget,localisation,images,statut,created_at,updated_at"

func scanDemande(row interface{ Scan(...any) error }) (model.Demande, error) {
	var d model.Demande
	var rawImages string
	err := row.Scan(&d.ID, &d.AcheteurID, &d.Titre, &d.Description, &d.Categorie,
		&d.Budget, &d.Localisation, &rawImages, &d.Statut, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return model.Demande{}, err
	}
	if d.Images, err = decodeImages(rawImages); err != nil {
		return model.Demande{}, err
	}
	return d, nil
}

// Create inserts a demande with status ACTIVE and populates ID and
// timestamps on the given record.
func (r *DemandeRepo) Create(ctx context.Context, d *model.Demande) error {
	raw, err := encodeImages(d.Images)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO demandes (acheteur_id, titre, description, categorie, budget, localisation, images, statut, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		d.AcheteurID, d.Titre, d.Description, d.Categorie, d.Budget, d.Localisation, raw, model.DemandeActive, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	d.Statut = model.DemandeActive
	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

// GetByID fetches a demande by id. Soft-deleted rows are reported as absent
// (sql.ErrNoRows), matching the public lookup contract.
func (r *DemandeRepo) GetByID(ctx context.Context, id uint64) (model.Demande, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+demandeColumns+" FROM demandes WHERE id=? AND statut<>? LIMIT 1",
		id, model.DemandeSupprime)
	return scanDemande(row)
}

// List returns non-deleted demandes newest first, optionally filtered by
// category and location substring, bounded by limit.
func (r *DemandeRepo) List(ctx context.Context, categorie, localisation string, limit int) ([]model.Demande, error) {
	q := "SELECT " + demandeColumns + " FROM demandes WHERE statut<>?"
	args := []any{model.DemandeSupprime}
	if categorie != "" {
		q += " AND categorie=?"
		args = append(args, categorie)
	}
	if localisation != "" {
		q += " AND localisation LIKE ?"
		args = append(args, "%"+localisation+"%")
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	demandes := make([]model.Demande, 0)
	for rows.Next() {
		d, err := scanDemande(rows)
		if err != nil {
			return nil, err
		}
		demandes = append(demandes, d)
	}
	return demandes, rows.Err()
}

// TitlesByIDs loads demande titles for a set of ids in one query,
// soft-deleted rows included: a conversation about a removed demande still
// shows its title snapshot.
func (r *DemandeRepo) TitlesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	out := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, titre FROM demandes WHERE id IN ("+strings.Join(placeholders, ",")+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var titre string
		if err := rows.Scan(&id, &titre); err != nil {
			return nil, err
		}
		out[id] = titre
	}
	return out, rows.Err()
}

// UpdateStatut transitions the lifecycle status (close or soft delete).
// Returns sql.ErrNoRows when the demande does not exist or is already
// soft-deleted.
func (r *DemandeRepo) UpdateStatut(ctx context.Context, id uint64, statut string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE demandes SET statut=?, updated_at=? WHERE id=? AND statut<>?",
		statut, time.Now().UTC(), id, model.DemandeSupprime)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
