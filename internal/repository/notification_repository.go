package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/localdeals/residence/internal/model"
)

// NotificationRepo persists fan-out events. Rows are created as a side
// effect of writes elsewhere (messages, reponses, new demandes, admin
// actions) and only their read flag ever changes afterwards.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

const notificationColumns = "id,user_id,type,conversation_id,demande_id,demande_titre,message_id,expediteur_id,contenu,is_read,created_at"

func scanNotification(row interface{ Scan(...any) error }) (model.Notification, error) {
	var n model.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.ConversationID, &n.DemandeID,
		&n.DemandeTitre, &n.MessageID, &n.ExpediteurID, &n.Contenu, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

// Create inserts a single notification and populates ID and CreatedAt.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, type, conversation_id, demande_id, demande_titre, message_id, expediteur_id, contenu, is_read, created_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		n.UserID, n.Type, n.ConversationID, n.DemandeID, n.DemandeTitre, n.MessageID, n.ExpediteurID, n.Contenu, false, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	n.CreatedAt = now
	return nil
}

// CreateForVendeurs fans out one NEW_DEMANDE notification per seller in a
// single batched insert, excluding the demande's own buyer. Partial failure
// of the statement is not recoverable per recipient; callers treat the whole
// insert as best-effort.
func (r *NotificationRepo) CreateForVendeurs(ctx context.Context, d *model.Demande, contenu string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, conversation_id, demande_id, demande_titre, message_id, expediteur_id, contenu, is_read, created_at)
		 SELECT id, ?, '', ?, ?, 0, ?, ?, ?, ? FROM users WHERE role=? AND id<>?`,
		model.NotifNewDemande, d.ID, d.Titre, d.AcheteurID, contenu, false, time.Now().UTC(),
		model.RoleVendeur, d.AcheteurID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByUser returns the user's notifications newest first, bounded by
// limit. When onlyUnread is set, read rows are filtered out.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, onlyUnread bool, limit int) ([]model.Notification, error) {
	q := "SELECT " + notificationColumns + " FROM notifications WHERE user_id=?"
	args := []any{userID}
	if onlyUnread {
		q += " AND is_read=?"
		args = append(args, false)
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notifs := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// CountUnread returns the number of unread notifications for a user.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=?", userID, false).Scan(&n)
	return n, err
}

// UnreadByConversations returns, for one user, the unread MESSAGE
// notification count per conversation id in a single grouped query.
// Conversation ids absent from the map have zero unread.
func (r *NotificationRepo) UnreadByConversations(ctx context.Context, userID uint64, conversationIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, 0, len(conversationIDs))
	args := []any{userID, model.NotifMessage, false}
	for _, id := range conversationIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT conversation_id, COUNT(*) FROM notifications
	      WHERE user_id=? AND type=? AND is_read=? AND conversation_id IN (` +
		strings.Join(placeholders, ",") + `) GROUP BY conversation_id`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var convID string
		var n int64
		if err := rows.Scan(&convID, &n); err != nil {
			return nil, err
		}
		out[convID] = n
	}
	return out, rows.Err()
}

// MarkRead flips a single notification to read. The user id guards against
// marking someone else's row; a miss is reported as sql.ErrNoRows.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=? WHERE id=? AND user_id=?", true, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead flips every unread notification of a user to read and
// reports how many rows changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=? WHERE user_id=? AND is_read=?", true, userID, false)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByMessage removes notifications referencing one specific message.
func (r *NotificationRepo) DeleteByMessage(ctx context.Context, messageID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM notifications WHERE message_id=?", messageID)
	return err
}

// DeleteByConversation removes every notification referencing a
// conversation id, used when the conversation itself is deleted.
func (r *NotificationRepo) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM notifications WHERE conversation_id=?", conversationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
