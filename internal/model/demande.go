package model

import "time"

// Lifecycle statuses of a demande. Soft-deleted rows keep their data but are
// excluded from every public read path.
const (
	DemandeActive   = "ACTIVE"
	DemandeCloturee = "CLOSED"
	DemandeSupprime = "DELETED"
)

// Categories is the fixed enumeration a demande must be filed under.
var Categories = []string{
	"Électronique",
	"Mode",
	"Maison",
	"Véhicules",
	"Immobilier",
	"Services",
	"Autre",
}

// ValidCategorie reports whether the given category is part of the fixed
// enumeration.
func ValidCategorie(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// MaxImages bounds how many images may be attached to a demande, a reponse
// or a message.
const MaxImages = 5

// Image references an externally hosted picture. PublicId is the storage
// handle needed to delete the asset later; both fields are required.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Demande mirrors the `demandes` table: a buyer-posted request describing a
// desired item or service.
//
// Fields:
//
//	ID           – primary key identifier.
//	AcheteurID   – owning buyer.
//	Titre        – short title shown in listings.
//	Description  – free text body.
//	Categorie    – one of Categories.
//	Budget       – buyer's budget in FCFA.
//	Localisation – free-text location.
//	Images       – up to MaxImages attached pictures.
//	Statut       – ACTIVE, CLOSED or DELETED.
//	CreatedAt    – creation timestamp.
//	UpdatedAt    – last update timestamp.
type Demande struct {
	ID           uint64
	AcheteurID   uint64
	Titre        string
	Description  string
	Categorie    string
	Budget       int64
	Localisation string
	Images       []Image
	Statut       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
