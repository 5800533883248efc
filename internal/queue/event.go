// Package queue defines message payloads exchanged over the message broker.
package queue

// DemandeCreatedEvent is published when a buyer posts a new demande. It
// carries enough context for downstream consumers to log or notify without
// querying the primary database.
type DemandeCreatedEvent struct {
	DemandeID     uint64 `json:"demande_id"`
	AcheteurID    uint64 `json:"acheteur_id"`
	Titre         string `json:"titre"`
	Categorie     string `json:"categorie"`
	Budget        int64  `json:"budget"`
	Localisation  string `json:"localisation"`
	VendeursNotes int64  `json:"vendeurs_notifies"`
	CreatedAt     string `json:"created_at"`
}

// MessageCreatedEvent is published after a message is persisted and its
// receiver notification written.
type MessageCreatedEvent struct {
	MessageID      uint64 `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	DemandeID      uint64 `json:"demande_id"`
	ExpediteurID   uint64 `json:"expediteur_id"`
	DestinataireID uint64 `json:"destinataire_id"`
	CreatedAt      string `json:"created_at"`
}

// ReponseCreatedEvent is published when a seller answers a demande.
type ReponseCreatedEvent struct {
	ReponseID  uint64 `json:"reponse_id"`
	DemandeID  uint64 `json:"demande_id"`
	VendeurID  uint64 `json:"vendeur_id"`
	AcheteurID uint64 `json:"acheteur_id"`
	CreatedAt  string `json:"created_at"`
}
