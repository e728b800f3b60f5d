package memory

import (
	"testing"

	"github.com/mahmoud375/peace-cake/internal/app"
	"github.com/mahmoud375/peace-cake/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := app.NewSession("session-1", "quiz-1", []domain.Team{
		{ID: "red", Name: "Red"},
		{ID: "blue", Name: "Blue"},
	}, 20)
	store.Put(session)

	got, ok := store.Get("session-1")
	if !ok || got.ID() != "session-1" {
		t.Fatalf("expected stored session, got %v ok=%v", got, ok)
	}
	if _, ok := store.Get("session-2"); ok {
		t.Fatalf("expected miss for unknown id")
	}

	store.Delete("session-1")
	if _, ok := store.Get("session-1"); ok {
		t.Fatalf("expected session removed")
	}
}
