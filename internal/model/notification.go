package model

import "time"

// Notification types. Each write elsewhere in the system fans out zero or
// more notifications of one of these types.
const (
	NotifMessage    = "MESSAGE"
	NotifReponse    = "REPONSE"
	NotifNewDemande = "NEW_DEMANDE"
	NotifAdmin      = "ADMIN"
	NotifBan        = "BAN"
)

// Notification mirrors the `notifications` table. References to other
// entities are explicit nullable columns rather than an opaque payload so
// they can be queried (unread counts per conversation, cascade deletes).
//
// Fields:
//
//	ID             – primary key identifier.
//	UserID         – recipient; the only owner of the row.
//	Type           – one of the Notif* constants.
//	ConversationID – conversation reference for MESSAGE notifications.
//	DemandeID      – demande reference (0 when absent).
//	DemandeTitre   – title snapshot taken at fan-out time.
//	MessageID      – message reference for MESSAGE notifications (0 when absent).
//	ExpediteurID   – user who caused the notification (0 when absent).
//	Contenu        – short human-readable text.
//	IsRead         – read flag; transitions unread→read only.
//	CreatedAt      – creation timestamp.
type Notification struct {
	ID             uint64
	UserID         uint64
	Type           string
	ConversationID string
	DemandeID      uint64
	DemandeTitre   string
	MessageID      uint64
	ExpediteurID   uint64
	Contenu        string
	IsRead         bool
	CreatedAt      time.Time
}
