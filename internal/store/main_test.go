package store

import (
	"database/sql"
	"testing"

	"github.com/awillits/marginalia/internal/database"
	"github.com/awillits/marginalia/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(t *testing.T, db *sql.DB) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create("reader@example.com", "Reader")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
