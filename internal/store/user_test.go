package store

import "testing"

func TestUserCreateAndGetByEmail(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u, err := users.Create("reader@example.com", "Reader")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := users.GetByEmail("reader@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != u.ID || got.Name != "Reader" {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestUserEmailUnique(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	if _, err := users.Create("reader@example.com", "One"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := users.Create("reader@example.com", "Two"); err == nil {
		t.Error("duplicate email accepted")
	}
}

func TestUserUnknownEmailReturnsNil(t *testing.T) {
	db := testDB(t)
	got, err := NewUserStore(db).GetByEmail("ghost@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestUserDeleteCascadesNotes(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	notes := NewNoteStore(db)

	u, err := users.Create("reader@example.com", "Reader")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := notes.Create(u.ID, "t", "", "x", ""); err != nil {
		t.Fatalf("create note: %v", err)
	}

	if err := users.Delete(u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	count, err := notes.Count(u.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("notes survived user delete: %d", count)
	}
}
