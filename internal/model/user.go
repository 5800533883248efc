package model

import "time"

// Roles assignable to a user. ADMIN accounts are created out of band and can
// never be requested at registration.
const (
	RoleAcheteur = "ACHETEUR"
	RoleVendeur  = "VENDEUR"
	RoleAdmin    = "ADMIN"
)

// Ban types stored on the user row. A TEMPORARY ban carries an expiry and is
// cleared lazily on the user's next authenticated access once the expiry has
// passed; a PERMANENT ban has no expiry.
const (
	BanNone      = "NONE"
	BanTemporary = "TEMPORARY"
	BanPermanent = "PERMANENT"
)

// User mirrors the `users` table.
//
// Fields:
//
//	ID           – primary key identifier.
//	Nom          – display name shown to other participants.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – ACHETEUR, VENDEUR or ADMIN.
//	BanType      – NONE, TEMPORARY or PERMANENT.
//	BanReason    – moderator-supplied reason, empty when unbanned.
//	BanExpiry    – expiry of a TEMPORARY ban (nullable).
//	CreatedAt    – timestamp of registration.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	Nom          string
	Email        string
	PasswordHash string
	Role         string
	BanType      string
	BanReason    string
	BanExpiry    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsBanned reports whether the user is banned at the given instant. An
// expired TEMPORARY ban counts as unbanned even before the lazy clear has
// rewritten the row.
func (u *User) IsBanned(now time.Time) bool {
	switch u.BanType {
	case BanPermanent:
		return true
	case BanTemporary:
		return u.BanExpiry == nil || u.BanExpiry.After(now)
	}
	return false
}

// PublicProfile is the subset of a user record exposed to other
// participants, e.g. as the counterpart of a conversation summary.
type PublicProfile struct {
	ID   uint64 `json:"id"`
	Nom  string `json:"nom"`
	Role string `json:"role"`
}

// DeletedProfile is substituted when a conversation counterpart no longer
// exists; listing conversations must not fail over a removed account.
func DeletedProfile(id uint64) PublicProfile {
	return PublicProfile{ID: id, Nom: "Utilisateur supprimé", Role: ""}
}
