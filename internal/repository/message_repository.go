package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/localdeals/residence/internal/model"
)

// MessageRepo persists directed messages grouped by their derived
// conversation id.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

const messageColumns = "id,conversation_id,demande_id,expediteur_id,destinataire_id,contenu,images,created_at"

func scanMessage(row interface{ Scan(...any) error }) (model.Message, error) {
	var m model.Message
	var rawImages string
	err := row.Scan(&m.ID, &m.ConversationID, &m.DemandeID, &m.ExpediteurID,
		&m.DestinataireID, &m.Contenu, &rawImages, &m.CreatedAt)
	if err != nil {
		return model.Message{}, err
	}
	if m.Images, err = decodeImages(rawImages); err != nil {
		return model.Message{}, err
	}
	return m, nil
}

// Create inserts a message and populates ID and CreatedAt on the record.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	raw, err := encodeImages(m.Images)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, demande_id, expediteur_id, destinataire_id, contenu, images, created_at) VALUES (?,?,?,?,?,?,?)",
		m.ConversationID, m.DemandeID, m.ExpediteurID, m.DestinataireID, m.Contenu, raw, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.CreatedAt = now
	return nil
}

// GetByID fetches a single message.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (model.Message, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id=? LIMIT 1", id)
	return scanMessage(row)
}

// ListByConversation returns the messages of one conversation oldest first,
// bounded by limit.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE conversation_id=? ORDER BY created_at ASC, id ASC LIMIT ?",
		conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListRecentByUser returns the newest messages in which the user is sender
// or receiver, newest first, bounded by limit. Conversation aggregation
// scans this window; threads whose latest message falls outside it are
// silently omitted.
func (r *MessageRepo) ListRecentByUser(ctx context.Context, userID uint64, limit int) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE expediteur_id=? OR destinataire_id=? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]model.Message, error) {
	msgs := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// DeleteByID removes a single message. Returns sql.ErrNoRows when nothing
// was deleted.
func (r *MessageRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM messages WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByConversation removes every message of a conversation and reports
// how many rows were deleted.
func (r *MessageRepo) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id=?", conversationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
