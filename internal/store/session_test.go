package store

import (
	"testing"
	"time"
)

func TestSessionCreateAndGet(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	sessions := NewSessionStore(db)

	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}
	if !sess.ExpiresAt.After(time.Now().Add(29 * 24 * time.Hour)) {
		t.Error("expiry not ~30 days out")
	}

	got, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.UserID != user.ID {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestSessionUnknownTokenReturnsNil(t *testing.T) {
	db := testDB(t)
	sessions := NewSessionStore(db)

	got, err := sessions.GetByToken("bogus")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestSessionTouchExtendsExpiry(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	sessions := NewSessionStore(db)

	sess, err := sessions.Create(user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if err := sessions.Touch(sess.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}

	got, err := sessions.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.ExpiresAt.After(sess.ExpiresAt) {
		t.Error("touch did not extend expiry")
	}
}

func TestSessionDeleteForUser(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	sessions := NewSessionStore(db)

	a, _ := sessions.Create(user.ID)
	b, _ := sessions.Create(user.ID)

	if err := sessions.DeleteForUser(user.ID); err != nil {
		t.Fatalf("delete for user: %v", err)
	}
	for _, token := range []string{a.Token, b.Token} {
		got, _ := sessions.GetByToken(token)
		if got != nil {
			t.Error("session survived DeleteForUser")
		}
	}
}
