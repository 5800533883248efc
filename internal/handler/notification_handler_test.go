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

func seedNotif(t *testing.T, v *env, uid uint64, typ string) model.Notification {
	t.Helper()
	n := model.Notification{UserID: uid, Type: typ, Contenu: "contenu"}
	if err := v.notifications.Create(context.Background(), &n); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}

func TestNotificationListSelfOrAdmin(t *testing.T) {
	v := newEnv(t)
	h := handler.NewNotificationHandler(v.notifications)
	owner := testutil.SeedUser(t, v.db, "Afi", "afi@example.com", model.RoleAcheteur)
	other := testutil.SeedUser(t, v.db, "Koffi", "koffi@example.com", model.RoleVendeur)
	admin := testutil.SeedUser(t, v.db, "Root", "root@example.com", model.RoleAdmin)
	seedNotif(t, v, owner, model.NotifReponse)

	list := func(caller uint64, role string) (int, map[string]any) {
		target := strconv.FormatUint(owner, 10)
		c, rec := v.request(t, http.MethodGet, "/v1/notifications/"+target, nil, caller, role)
		c.SetParamNames("userId")
		c.SetParamValues(target)
		if err := h.List(c); err != nil {
			t.Fatalf("List: %v", err)
		}
		if rec.Code != http.StatusOK {
			return rec.Code, nil
		}
		return rec.Code, decodeBody(t, rec)
	}

	if code, _ := list(other, model.RoleVendeur); code != http.StatusForbidden {
		t.Errorf("other user = %d, want 403", code)
	}
	code, body := list(owner, model.RoleAcheteur)
	if code != http.StatusOK || len(body["notifications"].([]any)) != 1 {
		t.Errorf("self list = %d, %+v", code, body)
	}
	if code, _ := list(admin, model.RoleAdmin); code != http.StatusOK {
		t.Errorf("admin list = %d, want 200", code)
	}
}

func TestNotificationUnreadFilterAndCount(t *testing.T) {
	v := newEnv(t)
	h := handler.NewNotificationHandler(v.notifications)
	owner := testutil.SeedUser(t, v.db, "Afi", "afi@example.com", model.RoleAcheteur)
	n1 := seedNotif(t, v, owner, model.NotifReponse)
	seedNotif(t, v, owner, model.NotifMessage)
	if err := v.notifications.MarkRead(context.Background(), n1.ID, owner); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	target := strconv.FormatUint(owner, 10)
	c, rec := v.request(t, http.MethodGet, "/v1/notifications/"+target+"?unread=true", nil, owner, model.RoleAcheteur)
	c.SetParamNames("userId")
	c.SetParamValues(target)
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	wantStatus(t, rec, http.StatusOK)
	if got := decodeBody(t, rec)["notifications"].([]any); len(got) != 1 {
		t.Errorf("unread list has %d rows, want 1", len(got))
	}

	c, rec = v.request(t, http.MethodGet, "/v1/notifications/"+target+"/count", nil, owner, model.RoleAcheteur)
	c.SetParamNames("userId")
	c.SetParamValues(target)
	if err := h.CountUnread(c); err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	wantStatus(t, rec, http.StatusOK)
	if got := decodeBody(t, rec)["unread"].(float64); got != 1 {
		t.Errorf("unread = %v, want 1", got)
	}
}

func TestNotificationMarkReadEndpoints(t *testing.T) {
	v := newEnv(t)
	h := handler.NewNotificationHandler(v.notifications)
	owner := testutil.SeedUser(t, v.db, "Afi", "afi@example.com", model.RoleAcheteur)
	other := testutil.SeedUser(t, v.db, "Koffi", "koffi@example.com", model.RoleVendeur)
	n := seedNotif(t, v, owner, model.NotifReponse)
	seedNotif(t, v, owner, model.NotifMessage)

	markRead := func(caller uint64, role string) int {
		id := strconv.FormatUint(n.ID, 10)
		c, rec := v.request(t, http.MethodPut, "/v1/notifications/"+id+"/read", nil, caller, role)
		c.SetParamNames("id")
		c.SetParamValues(id)
		if err := h.MarkRead(c); err != nil {
			t.Fatalf("MarkRead: %v", err)
		}
		return rec.Code
	}

	// Foreign rows are indistinguishable from missing ones.
	if code := markRead(other, model.RoleVendeur); code != http.StatusNotFound {
		t.Errorf("foreign mark = %d, want 404", code)
	}
	if code := markRead(owner, model.RoleAcheteur); code != http.StatusNoContent {
		t.Errorf("own mark = %d, want 204", code)
	}

	target := strconv.FormatUint(owner, 10)
	c, rec := v.request(t, http.MethodPut, "/v1/notifications/"+target+"/read-all", nil, owner, model.RoleAcheteur)
	c.SetParamNames("userId")
	c.SetParamValues(target)
	if err := h.MarkAllRead(c); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	wantStatus(t, rec, http.StatusOK)
	if got := decodeBody(t, rec)["updated"].(float64); got != 1 {
		t.Errorf("updated = %v, want 1", got)
	}
}
