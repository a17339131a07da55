package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/awillits/marginalia/internal/auth"
	"github.com/awillits/marginalia/internal/database"
	"github.com/awillits/marginalia/internal/store"
)

func setupAuthTest(t *testing.T) (*store.SessionStore, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewUserStore(db)
}

func TestRequireAuthMissingCookie(t *testing.T) {
	ss, _ := setupAuthTest(t)

	handler := RequireAuth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/notes", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	ss, _ := setupAuthTest(t)

	handler := RequireAuth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/notes", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	ss, us := setupAuthTest(t)

	user, err := us.Create("reader@example.com", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := ss.Create(user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var gotUserID int64
	handler := RequireAuth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/notes", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != user.ID {
		t.Errorf("user id in context = %d, want %d", gotUserID, user.ID)
	}
}
