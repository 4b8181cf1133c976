package tag

import (
	"context"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/pkg/testutil"
)

func TestCreateTag(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := NewTagService(NewTagRepository(tx))

	created, err := svc.CreateTag(ctx, domain.CreateTagRequest{
		Name:  "Breakfast",
		Color: "#FED764",
		Slug:  "breakfast",
	})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if created.Slug != "breakfast" || created.Color != "#FED764" {
		t.Fatalf("created = %+v", created)
	}

	got, err := svc.GetTagByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTagByID: %v", err)
	}
	if got != created {
		t.Fatalf("got = %+v, want %+v", got, created)
	}
}

func TestCreateTagOutsidePalette(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	svc := NewTagService(NewTagRepository(tx))

	_, err := svc.CreateTag(context.Background(), domain.CreateTagRequest{
		Name:  "Neon",
		Color: "#FF00FF",
		Slug:  "neon",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCreateTagDuplicateSlug(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := NewTagService(NewTagRepository(tx))

	if _, err := svc.CreateTag(ctx, domain.CreateTagRequest{
		Name:  "Dinner",
		Color: "#7FBFBF",
		Slug:  "dinner",
	}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	_, err := svc.CreateTag(ctx, domain.CreateTagRequest{
		Name:  "Supper",
		Color: "#C9B2D9",
		Slug:  "dinner",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("duplicate slug: err = %v, want ValidationError", err)
	}
}
