package model

import "time"

// Message mirrors the `messages` table. Messages are grouped by the derived
// conversation id (see utils.DeriveConversationID) so the same pair of
// participants discussing the same demande always lands in the same thread.
// Text may be empty when images are attached, but never both.
//
// Fields:
//
//	ID             – primary key identifier.
//	ConversationID – derived key demandeID_loID_hiID.
//	DemandeID      – demande the exchange is about.
//	ExpediteurID   – sender.
//	DestinataireID – receiver.
//	Contenu        – message text (may be empty when images are present).
//	Images         – up to MaxImages attached pictures.
//	CreatedAt      – insertion timestamp; the only ordering guarantee.
type Message struct {
	ID             uint64
	ConversationID string
	DemandeID      uint64
	ExpediteurID   uint64
	DestinataireID uint64
	Contenu        string
	Images         []Image
	CreatedAt      time.Time
}
