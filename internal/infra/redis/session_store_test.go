package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mahmoud375/peace-cake/internal/app"
	"github.com/mahmoud375/peace-cake/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := app.NewSession("session-1", "quiz-1", []domain.Team{
		{ID: "red", Name: "Red"},
		{ID: "blue", Name: "Blue"},
	}, 20)
	store.Put(session)

	if !mr.Exists("game:session:session-1") {
		t.Fatalf("expected redis liveness key to be set")
	}
	if got, _ := mr.Get("game:session:session-1"); got != "quiz-1" {
		t.Fatalf("expected liveness key to hold quiz id, got %q", got)
	}
	if _, ok := store.Get("session-1"); !ok {
		t.Fatalf("expected session retrievable")
	}

	store.Delete("session-1")
	if mr.Exists("game:session:session-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("session-1"); ok {
		t.Fatalf("expected session removed")
	}
}
