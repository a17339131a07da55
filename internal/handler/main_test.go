package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/awillits/marginalia/internal/auth"
	"github.com/awillits/marginalia/internal/database"
	"github.com/awillits/marginalia/internal/imagestore"
	"github.com/awillits/marginalia/internal/model"
	"github.com/awillits/marginalia/internal/store"
	"github.com/awillits/marginalia/internal/websocket"
)

type testEnv struct {
	db     *sql.DB
	user   *model.User
	notes  *store.NoteStore
	images *imagestore.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := store.NewUserStore(db).Create("reader@example.com", "Reader")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	images, err := imagestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("image store: %v", err)
	}

	return &testEnv{
		db:     db,
		user:   user,
		notes:  store.NewNoteStore(db),
		images: images,
		hub:    websocket.NewHub(slog.Default()),
		logger: slog.Default(),
	}
}

// authed attaches the test user's auth context to a request.
func (e *testEnv) authed(r *http.Request) *http.Request {
	ctx := auth.WithAuth(r.Context(), auth.AuthContext{UserID: e.user.ID, SessionID: 1})
	return r.WithContext(ctx)
}

func doJSON(t *testing.T, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if r.Body != nil && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h(w, r)
	return w
}
