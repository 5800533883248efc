package repository_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/repository"
	"github.com/localdeals/residence/internal/testutil"
)

func TestDemandeCreateAndGet(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewDemandeRepo(db)
	ctx := context.Background()
	uid := testutil.SeedUser(t, db, "Afi", "afi@example.com", model.RoleAcheteur)

	d := model.Demande{
		AcheteurID:   uid,
		Titre:        "Vélo d'occasion",
		Description:  "en bon état",
		Categorie:    "Véhicules",
		Budget:       50000,
		Localisation: "Lomé",
		Images:       []model.Image{{URL: "https://img/1.jpg", PublicID: "p1"}},
	}
	if err := repo.Create(ctx, &d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID == 0 || d.Statut != model.DemandeActive {
		t.Fatalf("Create did not populate record: %+v", d)
	}

	got, err := repo.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Titre != d.Titre || len(got.Images) != 1 || got.Images[0].PublicID != "p1" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestDemandeSoftDeleteHidden(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewDemandeRepo(db)
	ctx := context.Background()
	uid := testutil.SeedUser(t, db, "Afi", "afi@example.com", model.RoleAcheteur)
	d := testutil.SeedDemande(t, db, uid, "Frigo")

	if err := repo.UpdateStatut(ctx, d.ID, model.DemandeSupprime); err != nil {
		t.Fatalf("UpdateStatut: %v", err)
	}
	if _, err := repo.GetByID(ctx, d.ID); err != sql.ErrNoRows {
		t.Errorf("GetByID after delete = %v, want sql.ErrNoRows", err)
	}
	list, err := repo.List(ctx, "", "", 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("soft-deleted demande visible in listing: %+v", list)
	}
	// A second transition on the deleted row is a no-op miss.
	if err := repo.UpdateStatut(ctx, d.ID, model.DemandeCloturee); err != sql.ErrNoRows {
		t.Errorf("UpdateStatut on deleted row = %v, want sql.ErrNoRows", err)
	}
}

func TestDemandeListFilters(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewDemandeRepo(db)
	ctx := context.Background()
	uid := testutil.SeedUser(t, db, "Afi", "afi@example.com", model.RoleAcheteur)

	mk := func(titre, categorie, localisation string) {
		d := model.Demande{AcheteurID: uid, Titre: titre, Description: "d",
			Categorie: categorie, Budget: 10, Localisation: localisation}
		if err := repo.Create(ctx, &d); err != nil {
			t.Fatalf("Create %s: %v", titre, err)
		}
	}
	mk("TV", "Électronique", "Lomé Tokoin")
	mk("Canapé", "Maison", "Kara")
	mk("Téléphone", "Électronique", "Kara centre")

	byCat, err := repo.List(ctx, "Électronique", "", 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byCat) != 2 {
		t.Errorf("categorie filter returned %d rows, want 2", len(byCat))
	}
	byLoc, err := repo.List(ctx, "", "Kara", 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byLoc) != 2 {
		t.Errorf("localisation filter returned %d rows, want 2", len(byLoc))
	}
	both, err := repo.List(ctx, "Électronique", "Kara", 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(both) != 1 || both[0].Titre != "Téléphone" {
		t.Errorf("combined filter = %+v", both)
	}
}

func TestDemandeTitlesByIDsIncludesDeleted(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewDemandeRepo(db)
	ctx := context.Background()
	uid := testutil.SeedUser(t, db, "Afi", "afi@example.com", model.RoleAcheteur)
	d1 := testutil.SeedDemande(t, db, uid, "Frigo")
	d2 := testutil.SeedDemande(t, db, uid, "Table")

	if err := repo.UpdateStatut(ctx, d1.ID, model.DemandeSupprime); err != nil {
		t.Fatalf("UpdateStatut: %v", err)
	}
	titres, err := repo.TitlesByIDs(ctx, []uint64{d1.ID, d2.ID})
	if err != nil {
		t.Fatalf("TitlesByIDs: %v", err)
	}
	// Conversations about a removed demande still show its title snapshot.
	if titres[d1.ID] != "Frigo" || titres[d2.ID] != "Table" {
		t.Errorf("titles = %+v", titres)
	}
}
