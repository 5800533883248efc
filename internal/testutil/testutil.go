// Package testutil provides an in-memory SQLite database mirroring the
// production schema, so repository and handler tests run without a MySQL
// server. The repositories write timestamps from the application and avoid
// MySQL-only SQL, which keeps both engines behaviorally equivalent for the
// queries under test.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/repository"
)

var schema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nom TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		ban_type TEXT NOT NULL DEFAULT 'NONE',
		ban_reason TEXT NOT NULL DEFAULT '',
		ban_expiry DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE refresh_tokens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE demandes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		acheteur_id INTEGER NOT NULL,
		titre TEXT NOT NULL,
		description TEXT NOT NULL,
		categorie TEXT NOT NULL,
		budget INTEGER NOT NULL,
		localisation TEXT NOT NULL,
		images TEXT NOT NULL,
		statut TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE reponses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		demande_id INTEGER NOT NULL,
		vendeur_id INTEGER NOT NULL,
		message TEXT NOT NULL,
		images TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE (demande_id, vendeur_id)
	)`,
	`CREATE TABLE messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		demande_id INTEGER NOT NULL,
		expediteur_id INTEGER NOT NULL,
		destinataire_id INTEGER NOT NULL,
		contenu TEXT NOT NULL,
		images TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		conversation_id TEXT NOT NULL DEFAULT '',
		demande_id INTEGER NOT NULL DEFAULT 0,
		demande_titre TEXT NOT NULL DEFAULT '',
		message_id INTEGER NOT NULL DEFAULT 0,
		expediteur_id INTEGER NOT NULL DEFAULT 0,
		contenu TEXT NOT NULL DEFAULT '',
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
}

// OpenDB returns an isolated in-memory database with the full schema
// applied. The connection is closed when the test finishes.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single conn keeps every statement on the same :memory: database.
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			t.Fatalf("schema: %v", err)
		}
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedUser inserts a user row directly, bypassing password hashing, and
// returns its id. Tests exercising login go through UserRepo.Create instead.
func SeedUser(t *testing.T, db *sql.DB, nom, email, role string) uint64 {
	t.Helper()
	now := time.Now().UTC()
	res, err := db.Exec(
		"INSERT INTO users (nom, email, password_hash, role, ban_type, ban_reason, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		nom, email, "x", role, model.BanNone, "", now, now)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

// SeedDemande inserts an ACTIVE demande owned by acheteurID and returns it.
func SeedDemande(t *testing.T, db *sql.DB, acheteurID uint64, titre string) model.Demande {
	t.Helper()
	repo := repository.NewDemandeRepo(db)
	d := model.Demande{
		AcheteurID:   acheteurID,
		Titre:        titre,
		Description:  "description de " + titre,
		Categorie:    "Autre",
		Budget:       100,
		Localisation: "Lomé",
	}
	if err := repo.Create(context.Background(), &d); err != nil {
		t.Fatalf("seed demande %s: %v", titre, err)
	}
	return d
}
