package service

import (
	"context"
	"errors"
	"testing"

	"github.com/estately/estately/internal/domain"
)

func newFavoritesFixture(t *testing.T) (*FavoritesService, *domain.Property) {
	t.Helper()
	properties := newMemPropertyRepo()
	property := &domain.Property{OwnerID: "l1", Title: "Flat", Address: "1 St", City: "C"}
	if err := properties.Create(context.Background(), property); err != nil {
		t.Fatal(err)
	}
	return NewFavoritesService(newMemFavoriteRepo(), properties, testLogger), property
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	svc, property := newFavoritesFixture(t)
	ctx := context.Background()

	favored, err := svc.Toggle(ctx, "u1", domain.FavoriteProperty, property.ID)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !favored {
		t.Error("first toggle should favor")
	}

	count, err := svc.Count(ctx, domain.FavoriteProperty, property.ID)
	if err != nil || count != 1 {
		t.Errorf("count = %d, %v, want 1", count, err)
	}

	favored, err = svc.Toggle(ctx, "u1", domain.FavoriteProperty, property.ID)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if favored {
		t.Error("second toggle should unfavor")
	}
	count, _ = svc.Count(ctx, domain.FavoriteProperty, property.ID)
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestTogglePropertyMustExist(t *testing.T) {
	svc, _ := newFavoritesFixture(t)

	_, err := svc.Toggle(context.Background(), "u1", domain.FavoriteProperty, "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestToggleAgentSkipsPropertyLookup(t *testing.T) {
	svc, _ := newFavoritesFixture(t)

	favored, err := svc.Toggle(context.Background(), "u1", domain.FavoriteAgent, "agent-9")
	if err != nil {
		t.Fatalf("toggle agent: %v", err)
	}
	if !favored {
		t.Error("expected favored")
	}
}

func TestToggleRejectsUnknownKind(t *testing.T) {
	svc, _ := newFavoritesFixture(t)

	_, err := svc.Toggle(context.Background(), "u1", domain.FavoriteKind("planet"), "mars")
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
}

func TestRemoveAbsentFavoriteIsNoop(t *testing.T) {
	svc, property := newFavoritesFixture(t)

	if err := svc.Remove(context.Background(), "u1", domain.FavoriteProperty, property.ID); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestListFavoritesScopedToUser(t *testing.T) {
	svc, property := newFavoritesFixture(t)
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "u1", domain.FavoriteProperty, property.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Toggle(ctx, "u2", domain.FavoriteBuilder, "builder-1"); err != nil {
		t.Fatal(err)
	}

	mine, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].TargetID != property.ID {
		t.Errorf("list = %+v", mine)
	}
}
