package handler_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/localdeals/residence/internal/handler"
	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/testutil"
)

func TestDemandeCreateValidation(t *testing.T) {
	v := newEnv(t)
	h := handler.NewDemandeHandler(v.demandes, v.notifications)
	uid := testutil.SeedUser(t, v.db, "Afi", "afi@example.com", model.RoleAcheteur)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing titre", map[string]any{"localisation": "Lomé", "categorie": "Autre", "budget": 10}},
		{"missing localisation", map[string]any{"titre": "TV", "categorie": "Autre", "budget": 10}},
		{"unknown categorie", map[string]any{"titre": "TV", "localisation": "Lomé", "categorie": "Bidule", "budget": 10}},
		{"zero budget", map[string]any{"titre": "TV", "localisation": "Lomé", "categorie": "Autre", "budget": 0}},
		{"too many images", map[string]any{"titre": "TV", "localisation": "Lomé", "categorie": "Autre", "budget": 10,
			"images": []map[string]string{
				{"url": "u", "publicId": "p"}, {"url": "u", "publicId": "p"}, {"url": "u", "publicId": "p"},
				{"url": "u", "publicId": "p"}, {"url": "u", "publicId": "p"}, {"url": "u", "publicId": "p"},
			}}},
		{"image without publicId", map[string]any{"titre": "TV", "localisation": "Lomé", "categorie": "Autre", "budget": 10,
			"images": []map[string]string{{"url": "u"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := v.request(t, http.MethodPost, "/v1/demandes", tc.payload, uid, model.RoleAcheteur)
			if err := h.Create(c); err != nil {
				t.Fatalf("Create: %v", err)
			}
			wantStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestDemandeCreateNotifiesVendeurs(t *testing.T) {
	v := newEnv(t)
	h := handler.NewDemandeHandler(v.demandes, v.notifications)
	acheteur := testutil.SeedUser(t, v.db, "Afi", "afi@example.com", model.RoleAcheteur)
	vendeur := testutil.SeedUser(t, v.db, "Koffi", "koffi@example.com", model.RoleVendeur)

	c, rec := v.request(t, http.MethodPost, "/v1/demandes", map[string]any{
		"titre": "Frigo", "localisation": "Lomé", "categorie": "Maison", "budget": 90000,
	}, acheteur, model.RoleAcheteur)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	wantStatus(t, rec, http.StatusCreated)

	notifs, err := v.notifications.ListByUser(context.Background(), vendeur, false, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != model.NotifNewDemande {
		t.Errorf("vendeur notifications = %+v", notifs)
	}
}

func TestDemandeTransitionAuthorization(t *testing.T) {
	v := newEnv(t)
	h := handler.NewDemandeHandler(v.demandes, v.notifications)
	owner := testutil.SeedUser(t, v.db, "Afi", "afi@example.com", model.RoleAcheteur)
	stranger := testutil.SeedUser(t, v.db, "Koffi", "koffi@example.com", model.RoleVendeur)
	admin := testutil.SeedUser(t, v.db, "Root", "root@example.com", model.RoleAdmin)
	d := testutil.SeedDemande(t, v.db, owner, "Frigo")
	id := strconv.FormatUint(d.ID, 10)

	// A non-owner cannot close the demande.
	c, rec := v.request(t, http.MethodPut, "/v1/demandes/"+id+"/cloture", nil, stranger, model.RoleVendeur)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Close(c); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wantStatus(t, rec, http.StatusForbidden)

	// An admin can.
	c, rec = v.request(t, http.MethodPut, "/v1/demandes/"+id+"/cloture", nil, admin, model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Close(c); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wantStatus(t, rec, http.StatusOK)
	got, err := v.demandes.GetByID(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Statut != model.DemandeCloturee {
		t.Errorf("statut = %q, want CLOSED", got.Statut)
	}
}

func TestDemandeDeleteThenGet(t *testing.T) {
	v := newEnv(t)
	h := handler.NewDemandeHandler(v.demandes, v.notifications)
	owner := testutil.SeedUser(t, v.db, "Afi", "afi@example.com", model.RoleAcheteur)
	d := testutil.SeedDemande(t, v.db, owner, "Frigo")
	id := strconv.FormatUint(d.ID, 10)

	c, rec := v.request(t, http.MethodDelete, "/v1/demandes/"+id, nil, owner, model.RoleAcheteur)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wantStatus(t, rec, http.StatusOK)

	c, rec = v.request(t, http.MethodGet, "/v1/demandes/"+id, nil, 0, "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	wantStatus(t, rec, http.StatusNotFound)
}
