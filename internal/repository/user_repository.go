package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/utils"
)

// UserRepo persists user records including role and ban state.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = "id,nom,email,password_hash,role,ban_type,ban_reason,ban_expiry,created_at,updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var expiry sql.NullTime
	err := row.Scan(&u.ID, &u.Nom, &u.Email, &u.PasswordHash, &u.Role,
		&u.BanType, &u.BanReason, &expiry, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if expiry.Valid {
		t := expiry.Time
		u.BanExpiry = &t
	}
	return u, nil
}

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, nom, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (nom, email, password_hash, role, ban_type, ban_reason, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		nom, email, hash, role, model.BanNone, "", now, now)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// UpdateNom renames the user (self-edit).
func (r *UserRepo) UpdateNom(ctx context.Context, id uint64, nom string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET nom=?, updated_at=? WHERE id=?", nom, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PublicByIDs loads the public profiles for a set of users in one query.
// Missing ids are simply absent from the returned map; callers substitute a
// placeholder profile for deleted accounts.
func (r *UserRepo) PublicByIDs(ctx context.Context, ids []uint64) (map[uint64]model.PublicProfile, error) {
	out := make(map[uint64]model.PublicProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := "SELECT id, nom, role FROM users WHERE id IN (" + strings.Join(placeholders, ",") + ")"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.PublicProfile
		if err := rows.Scan(&p.ID, &p.Nom, &p.Role); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// SetBan records a ban on the user. expiry is nil for permanent bans.
func (r *UserRepo) SetBan(ctx context.Context, id uint64, banType, reason string, expiry *time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET ban_type=?, ban_reason=?, ban_expiry=?, updated_at=? WHERE id=?",
		banType, reason, expiry, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ClearBan resets the ban state. It backs both admin unbans and the lazy
// expiry of temporary bans on the user's next authenticated access.
func (r *UserRepo) ClearBan(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET ban_type=?, ban_reason='', ban_expiry=NULL, updated_at=? WHERE id=?",
		model.BanNone, time.Now().UTC(), id)
	return err
}

// List returns users newest first, bounded by limit. Admin only.
func (r *UserRepo) List(ctx context.Context, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
