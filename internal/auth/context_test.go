package auth

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 7, SessionID: 42})

	ac, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if ac.UserID != 7 || ac.SessionID != 42 {
		t.Errorf("got %+v", ac)
	}
	if UserID(ctx) != 7 {
		t.Errorf("UserID = %d, want 7", UserID(ctx))
	}
	if SessionID(ctx) != 42 {
		t.Errorf("SessionID = %d, want 42", SessionID(ctx))
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Error("expected no auth context")
	}
	if UserID(ctx) != 0 {
		t.Errorf("UserID = %d, want 0", UserID(ctx))
	}
	if SessionID(ctx) != 0 {
		t.Errorf("SessionID = %d, want 0", SessionID(ctx))
	}
}
