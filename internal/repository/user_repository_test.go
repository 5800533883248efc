package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/repository"
	"github.com/localdeals/residence/internal/testutil"
	"github.com/localdeals/residence/internal/utils"
)

func TestUserCreateAndLookup(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, "Afi", "Afi@Example.com", "motdepasse", model.RoleAcheteur, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Emails are normalized to lowercase on write and on lookup.
	u, err := repo.GetByEmail(ctx, "AFI@example.COM")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.ID != id || u.Email != "afi@example.com" || u.Role != model.RoleAcheteur {
		t.Errorf("unexpected user: %+v", u)
	}
	if !utils.VerifyPassword(u.PasswordHash, "motdepasse") {
		t.Error("stored hash does not verify")
	}
	if u.BanType != model.BanNone {
		t.Errorf("new user ban_type = %q", u.BanType)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "Afi", "afi@example.com", "pw", model.RoleAcheteur, bcrypt.MinCost); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := repo.Create(ctx, "Autre", "afi@example.com", "pw2", model.RoleVendeur, bcrypt.MinCost)
	if err != repository.ErrEmailExists {
		t.Fatalf("second Create err = %v, want ErrEmailExists", err)
	}
}

func TestUserBanLifecycle(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewUserRepo(db)
	ctx := context.Background()
	uid := testutil.SeedUser(t, db, "Koffi", "koffi@example.com", model.RoleVendeur)

	expiry := time.Now().UTC().Add(24 * time.Hour)
	if err := repo.SetBan(ctx, uid, model.BanTemporary, "spam", &expiry); err != nil {
		t.Fatalf("SetBan: %v", err)
	}
	u, err := repo.GetByID(ctx, uid)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.BanType != model.BanTemporary || u.BanReason != "spam" || u.BanExpiry == nil {
		t.Errorf("ban not recorded: %+v", u)
	}
	if !u.IsBanned(time.Now().UTC()) {
		t.Error("user with future expiry not reported banned")
	}
	if u.IsBanned(expiry.Add(time.Minute)) {
		t.Error("expired temporary ban still reported banned")
	}

	if err := repo.ClearBan(ctx, uid); err != nil {
		t.Fatalf("ClearBan: %v", err)
	}
	u, _ = repo.GetByID(ctx, uid)
	if u.BanType != model.BanNone || u.BanReason != "" || u.BanExpiry != nil {
		t.Errorf("ban not cleared: %+v", u)
	}
}

func TestUserSetBanMissing(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewUserRepo(db)
	if err := repo.SetBan(context.Background(), 999, model.BanPermanent, "x", nil); err != sql.ErrNoRows {
		t.Fatalf("SetBan on missing user = %v, want sql.ErrNoRows", err)
	}
}

func TestUserPublicByIDs(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	a := testutil.SeedUser(t, db, "Afi", "a@example.com", model.RoleAcheteur)
	b := testutil.SeedUser(t, db, "Koffi", "k@example.com", model.RoleVendeur)

	got, err := repo.PublicByIDs(ctx, []uint64{a, b, 999})
	if err != nil {
		t.Fatalf("PublicByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d profiles, want 2", len(got))
	}
	if got[a].Nom != "Afi" || got[b].Role != model.RoleVendeur {
		t.Errorf("unexpected profiles: %+v", got)
	}
	if _, found := got[999]; found {
		t.Error("missing id present in result")
	}

	empty, err := repo.PublicByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("PublicByIDs(nil) = %v, %v", empty, err)
	}
}
