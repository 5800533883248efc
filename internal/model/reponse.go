package model

import "time"

// Reponse mirrors the `reponses` table: a seller's reply to a demande. At
// most one row exists per (demande, vendeur) pair, enforced by a unique key,
// and a row is immutable once created.
//
// Fields:
//
//	ID        – primary key identifier.
//	DemandeID – demande being answered.
//	VendeurID – responding seller.
//	Message   – required text of the reply.
//	Images    – up to MaxImages attached pictures.
//	CreatedAt – creation timestamp.
type Reponse struct {
	ID        uint64
	DemandeID uint64
	VendeurID uint64
	Message   string
	Images    []Image
	CreatedAt time.Time
}
