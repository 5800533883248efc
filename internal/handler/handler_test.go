package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/localdeals/residence/internal/repository"
	"github.com/localdeals/residence/internal/testutil"
)

// env bundles the repositories and the Echo instance shared by handler
// tests, all bound to one in-memory database.
type env struct {
	e             *echo.Echo
	db            *sql.DB
	users         *repository.UserRepo
	tokens        *repository.TokenRepo
	demandes      *repository.DemandeRepo
	reponses      *repository.ReponseRepo
	messages      *repository.MessageRepo
	notifications *repository.NotificationRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.OpenDB(t)
	return &env{
		e:             echo.New(),
		db:            db,
		users:         repository.NewUserRepo(db),
		tokens:        repository.NewTokenRepo(db),
		demandes:      repository.NewDemandeRepo(db),
		reponses:      repository.NewReponseRepo(db),
		messages:      repository.NewMessageRepo(db),
		notifications: repository.NewNotificationRepo(db),
	}
}

// request builds an authenticated echo.Context the way JWTAuth would leave
// it: user_id and role injected into the context. uid 0 leaves the request
// anonymous.
func (v *env) request(t *testing.T, method, target string, body any, uid uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(bs)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := v.e.NewContext(req, rec)
	if uid != 0 {
		c.Set("user_id", uid)
		c.Set("role", role)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}
