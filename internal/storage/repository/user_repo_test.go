package repository

import (
	"context"
	"testing"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	id, err := repo.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Username != "alice" {
		t.Errorf("expected alice, got %+v", got)
	}

	got, err = repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got == nil || got.ID != id {
		t.Errorf("expected user %d, got %+v", id, got)
	}

	if _, err := repo.Create(ctx, "alice"); err == nil {
		t.Error("expected unique constraint violation for duplicate username")
	}
}

func TestUserRepository_FriendLinks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	if err := repo.AddFriend(ctx, alice, bob); err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}

	// Links are symmetric.
	for _, pair := range [][2]int{{alice, bob}, {bob, alice}} {
		ok, err := repo.AreFriends(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("AreFriends failed: %v", err)
		}
		if !ok {
			t.Errorf("expected %d and %d to be friends", pair[0], pair[1])
		}
	}

	ok, err := repo.AreFriends(ctx, alice, carol)
	if err != nil {
		t.Fatalf("AreFriends failed: %v", err)
	}
	if ok {
		t.Error("expected alice and carol not to be friends")
	}

	friends, err := repo.ListFriends(ctx, alice)
	if err != nil {
		t.Fatalf("ListFriends failed: %v", err)
	}
	if len(friends) != 1 || friends[0].Username != "bob" {
		t.Errorf("expected [bob], got %+v", friends)
	}

	if err := repo.RemoveFriend(ctx, bob, alice); err != nil {
		t.Fatalf("RemoveFriend failed: %v", err)
	}
	ok, err = repo.AreFriends(ctx, alice, bob)
	if err != nil {
		t.Fatalf("AreFriends failed: %v", err)
	}
	if ok {
		t.Error("expected link removed in both directions")
	}
}
