package ingredient

import (
	"context"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/pkg/testutil"
)

func TestGetIngredientsPrefixFilter(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := NewIngredientService(NewIngredientRepository(tx))

	gram := testutil.SeedUnit(t, ctx, tx, "g")
	testutil.SeedIngredient(t, ctx, tx, "Sugar", gram.ID)
	testutil.SeedIngredient(t, ctx, tx, "Sunflower oil", gram.ID)
	testutil.SeedIngredient(t, ctx, tx, "Flour", gram.ID)

	all, err := svc.GetIngredients(ctx, "")
	if err != nil {
		t.Fatalf("GetIngredients: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	// the prefix match is case-insensitive
	filtered, err := svc.GetIngredients(ctx, "su")
	if err != nil {
		t.Fatalf("GetIngredients with prefix: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("filtered = %+v, want Sugar and Sunflower oil", filtered)
	}
	for _, item := range filtered {
		if item.MeasurementUnit != "g" {
			t.Fatalf("item = %+v, want measurement unit g", item)
		}
	}
}

func TestGetIngredientsPrefixEscapesWildcards(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := NewIngredientService(NewIngredientRepository(tx))

	gram := testutil.SeedUnit(t, ctx, tx, "g")
	testutil.SeedIngredient(t, ctx, tx, "Sugar", gram.ID)
	testutil.SeedIngredient(t, ctx, tx, "100% cocoa", gram.ID)

	// % and _ are literal characters in the prefix, not wildcards
	filtered, err := svc.GetIngredients(ctx, "%")
	if err != nil {
		t.Fatalf("GetIngredients: %v", err)
	}
	if len(filtered) != 0 {
		t.Fatalf("filtered = %+v, want no match for a literal %% prefix", filtered)
	}

	cocoa, err := svc.GetIngredients(ctx, "100%")
	if err != nil {
		t.Fatalf("GetIngredients: %v", err)
	}
	if len(cocoa) != 1 || cocoa[0].Name != "100% cocoa" {
		t.Fatalf("cocoa = %+v, want the single literal match", cocoa)
	}
}

func TestGetIngredientByIDNotFound(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	svc := NewIngredientService(NewIngredientRepository(tx))

	_, err := svc.GetIngredientByID(context.Background(), "1b4d9d2e-58f1-4f0a-a2a7-0d6b8f6a1c11")
	if err != domain.ErrIngredientNotFound {
		t.Fatalf("err = %v, want ErrIngredientNotFound", err)
	}
}
