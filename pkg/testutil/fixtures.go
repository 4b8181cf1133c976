package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"foodgram-backend/entities"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *entities.User {
	tb.Helper()
	u := &entities.User{
		ID:        uuid.New(),
		Email:     email,
		Username:  email,
		FirstName: "A",
		LastName:  "B",
		Password:  "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedUnit(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *entities.Unit {
	tb.Helper()
	u := &entities.Unit{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed unit: %v", err)
	}
	return u
}

func SeedIngredient(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, unitID uuid.UUID) *entities.Ingredient {
	tb.Helper()
	i := &entities.Ingredient{
		ID:     uuid.New(),
		Name:   name,
		UnitID: unitID,
	}
	if err := tx.WithContext(ctx).Create(i).Error; err != nil {
		tb.Fatalf("seed ingredient: %v", err)
	}
	return i
}

func SeedTag(tb testing.TB, ctx context.Context, tx *gorm.DB, name, color, slug string) *entities.Tag {
	tb.Helper()
	t := &entities.Tag{
		ID:    uuid.New(),
		Name:  name,
		Color: color,
		Slug:  slug,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed tag: %v", err)
	}
	return t
}

func SeedRecipe(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID uuid.UUID, name string) *entities.Recipe {
	tb.Helper()
	r := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Name:        name,
		Text:        "text",
		CookingTime: 10,
		Timestamp: entities.Timestamp{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed recipe: %v", err)
	}
	return r
}

func SeedIngredientInRecipe(tb testing.TB, ctx context.Context, tx *gorm.DB, recipeID, ingredientID uuid.UUID, amount int) *entities.IngredientInRecipe {
	tb.Helper()
	row := &entities.IngredientInRecipe{
		ID:           uuid.New(),
		RecipeID:     recipeID,
		IngredientID: ingredientID,
		Amount:       amount,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed ingredient in recipe: %v", err)
	}
	return row
}
