package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cardboxhq/cardbox/internal/storage"
	"github.com/cardboxhq/cardbox/internal/storage/models"
)

// openTestDB opens an in-memory database with the real schema so the
// partial unique indexes and CHECK constraints are exercised.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := storage.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Error closing database: %v", err)
		}
	})
	return db.Conn()
}

func seedUser(t *testing.T, db *sql.DB, username string) int {
	t.Helper()

	id, err := NewUserRepository(db).Create(context.Background(), username)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return id
}

func seedCard(t *testing.T, db *sql.DB, scryfallID, name, colorIdentity string) {
	t.Helper()

	err := NewCardRepository(db).Upsert(context.Background(), &models.Card{
		ScryfallID:      scryfallID,
		Name:            name,
		SetCode:         "tst",
		CollectorNumber: "1",
		ColorIdentity:   colorIdentity,
		LastUpdated:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed card %s: %v", name, err)
	}
}

func seedDeck(t *testing.T, db *sql.DB, userID int, name string) string {
	t.Helper()

	deck := &models.Deck{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
		Format: "Commander",
	}
	if err := NewDeckRepository(db).Create(context.Background(), deck); err != nil {
		t.Fatalf("failed to seed deck %s: %v", name, err)
	}
	return deck.ID
}
