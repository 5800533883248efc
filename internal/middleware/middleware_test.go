package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/localdeals/residence/internal/middleware"
	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/repository"
	"github.com/localdeals/residence/internal/testutil"
	"github.com/localdeals/residence/internal/utils"
)

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTAuthInjectsClaims(t *testing.T) {
	const secret = "s3cret"
	at, err := utils.NewAccessToken(secret, 42, model.RoleVendeur, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	e := echo.New()
	var gotUID, gotRole any
	h := middleware.JWTAuth(secret)(func(c echo.Context) error {
		gotUID = c.Get("user_id")
		gotRole = c.Get("role")
		return okHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// Numeric JWT claims decode as float64.
	if gotUID.(float64) != 42 || gotRole != model.RoleVendeur {
		t.Errorf("claims = %v / %v", gotUID, gotRole)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	e := echo.New()
	h := middleware.JWTAuth("right-secret")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no header = %d, want 401", rec.Code)
	}

	at, _ := utils.NewAccessToken("wrong-secret", 1, model.RoleAcheteur, 15)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec = httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("forged token = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	h := middleware.RequireRole(model.RoleAdmin)(okHandler)

	run := func(role any) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		if err := h(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
		return rec.Code
	}

	if code := run(model.RoleAdmin); code != http.StatusOK {
		t.Errorf("admin = %d, want 200", code)
	}
	if code := run(model.RoleVendeur); code != http.StatusForbidden {
		t.Errorf("vendeur = %d, want 403", code)
	}
	if code := run(nil); code != http.StatusForbidden {
		t.Errorf("missing role = %d, want 403", code)
	}
}

func TestBanGuard(t *testing.T) {
	db := testutil.OpenDB(t)
	users := repository.NewUserRepo(db)
	uid := testutil.SeedUser(t, db, "Koffi", "koffi@example.com", model.RoleVendeur)

	e := echo.New()
	h := middleware.BanGuard(users)(okHandler)
	run := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user_id", uid)
		if err := h(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
		return rec.Code
	}

	if code := run(); code != http.StatusOK {
		t.Fatalf("unbanned = %d, want 200", code)
	}

	future := time.Now().UTC().Add(time.Hour)
	if err := users.SetBan(context.Background(), uid, model.BanTemporary, "spam", &future); err != nil {
		t.Fatalf("SetBan: %v", err)
	}
	if code := run(); code != http.StatusForbidden {
		t.Errorf("active ban = %d, want 403", code)
	}

	// Once the expiry passes the guard lets the request through and clears
	// the row.
	past := time.Now().UTC().Add(-time.Hour)
	if err := users.SetBan(context.Background(), uid, model.BanTemporary, "spam", &past); err != nil {
		t.Fatalf("SetBan: %v", err)
	}
	if code := run(); code != http.StatusOK {
		t.Errorf("expired ban = %d, want 200", code)
	}
	u, err := users.GetByID(context.Background(), uid)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.BanType != model.BanNone {
		t.Errorf("ban not cleared: %+v", u)
	}
}
