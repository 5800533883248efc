package database

import (
	"context"
	"database/sql"
)

// Timestamps are written by the application in UTC rather than through DB
// defaults, so the DDL stays free of MySQL-only clauses.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		nom VARCHAR(120) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL,
		ban_type VARCHAR(16) NOT NULL DEFAULT 'NONE',
		ban_reason VARCHAR(255) NOT NULL DEFAULT '',
		ban_expiry DATETIME NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS demandes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		acheteur_id BIGINT UNSIGNED NOT NULL,
		titre VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		categorie VARCHAR(64) NOT NULL,
		budget BIGINT NOT NULL,
		localisation VARCHAR(255) NOT NULL,
		images TEXT NOT NULL,
		statut VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_demandes_statut (statut, created_at),
		KEY idx_demandes_acheteur (acheteur_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reponses (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		demande_id BIGINT UNSIGNED NOT NULL,
		vendeur_id BIGINT UNSIGNED NOT NULL,
		message TEXT NOT NULL,
		images TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_reponse_demande_vendeur (demande_id, vendeur_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		conversation_id VARCHAR(128) NOT NULL,
		demande_id BIGINT UNSIGNED NOT NULL,
		expediteur_id BIGINT UNSIGNED NOT NULL,
		destinataire_id BIGINT UNSIGNED NOT NULL,
		contenu TEXT NOT NULL,
		images TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_messages_conversation (conversation_id, created_at),
		KEY idx_messages_expediteur (expediteur_id, created_at),
		KEY idx_messages_destinataire (destinataire_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		type VARCHAR(16) NOT NULL,
		conversation_id VARCHAR(128) NOT NULL DEFAULT '',
		demande_id BIGINT UNSIGNED NOT NULL DEFAULT 0,
		demande_titre VARCHAR(255) NOT NULL DEFAULT '',
		message_id BIGINT UNSIGNED NOT NULL DEFAULT 0,
		expediteur_id BIGINT UNSIGNED NOT NULL DEFAULT 0,
		contenu VARCHAR(512) NOT NULL DEFAULT '',
		is_read TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_notifications_user (user_id, is_read, created_at),
		KEY idx_notifications_conversation (conversation_id)
	)`,
}

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so the function can run at every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
