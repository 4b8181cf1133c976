package recipe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, items []*entities.IngredientInRecipe) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, items []*entities.IngredientInRecipe, tags []*entities.Tag) error
		DeleteRecipe(ctx context.Context, recipe *entities.Recipe) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]*entities.Recipe, int64, error)
		GetIngredientsForRecipes(ctx context.Context, recipeIDs []uuid.UUID) ([]*entities.IngredientInRecipe, error)

		CreateFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
		DeleteFavorite(ctx context.Context, userID, recipeID string) error
		IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)
		GetFavoritedSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)

		CreateCartItem(ctx context.Context, userID, recipeID uuid.UUID) error
		DeleteCartItem(ctx context.Context, userID, recipeID string) error
		IsInCart(ctx context.Context, userID, recipeID string) (bool, error)
		GetCartSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)

		GetCartIngredients(ctx context.Context, userID string) ([]*entities.IngredientInRecipe, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// CreateRecipe persists the recipe, its tag links and its ingredient rows in
// one transaction. recipe.Tags must already be resolved entities.
func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, items []*entities.IngredientInRecipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
}

// UpdateRecipe rewrites the aggregate wholesale: scalar fields are updated,
// all existing ingredient rows are deleted before the new set is inserted,
// and tag links are replaced. Readers never observe the emptied intermediate
// state because it all happens inside one transaction.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, items []*entities.IngredientInRecipe, tags []*entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).
			Updates(map[string]any{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"image_url":    recipe.ImageURL,
				"cooking_time": recipe.CookingTime,
				"updated_at":   time.Now(),
			}).Error; err != nil {
			return err
		}

		if err := tx.
			Where("recipe_id = ?", recipe.ID).
			Delete(&entities.IngredientInRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return nil
	})
}

// DeleteRecipe removes the recipe together with every association row that
// references it.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("recipe_id = ?", recipe.ID).
			Delete(&entities.IngredientInRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.
			Where("recipe_id = ?", recipe.ID).
			Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.
			Where("recipe_id = ?", recipe.ID).
			Delete(&entities.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) recipesQuery(ctx context.Context, filter domain.RecipeFilter, viewerID string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	// Anonymous viewers have every derived flag false, so filtering on a
	// true flag matches nothing.
	if filter.IsFavorited {
		if viewerID == "" {
			return query.Where("1 = 0")
		}
		favorited := r.db.Table("favorites").
			Select("favorites.recipe_id").
			Where("favorites.user_id = ?", viewerID)
		query = query.Where("recipes.id IN (?)", favorited)
	}
	if filter.IsInShoppingCart {
		if viewerID == "" {
			return query.Where("1 = 0")
		}
		inCart := r.db.Table("shopping_carts").
			Select("shopping_carts.recipe_id").
			Where("shopping_carts.user_id = ?", viewerID)
		query = query.Where("recipes.id IN (?)", inCart)
	}
	return query
}

// GetRecipes lists recipes newest first. Filters are applied before
// pagination.
func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	if err := r.recipesQuery(ctx, filter, viewerID).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.recipesQuery(ctx, filter, viewerID).
		Preload("Author").
		Preload("Tags").
		Offset(offset).
		Limit(limit).
		Order("recipes.created_at desc").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) GetIngredientsForRecipes(ctx context.Context, recipeIDs []uuid.UUID) ([]*entities.IngredientInRecipe, error) {
	var items []*entities.IngredientInRecipe
	if len(recipeIDs) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Preload("Ingredient.Unit").
		Where("recipe_id IN ?", recipeIDs).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *recipeRepository) CreateFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	favorite := entities.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(&favorite).Error
}

func (r *recipeRepository) DeleteFavorite(ctx context.Context, userID, recipeID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Favorite{}).Error
}

func (r *recipeRepository) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFavoritedSet answers the is_favorited flag for a whole listing with one
// membership query instead of one query per row.
func (r *recipeRepository) GetFavoritedSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(recipeIDs))
	if userID == "" || len(recipeIDs) == 0 {
		return set, nil
	}

	var favorites []*entities.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&favorites).Error; err != nil {
		return nil, err
	}
	for _, favorite := range favorites {
		set[favorite.RecipeID] = true
	}
	return set, nil
}

func (r *recipeRepository) CreateCartItem(ctx context.Context, userID, recipeID uuid.UUID) error {
	item := entities.ShoppingCart{
		ID:        uuid.New(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(&item).Error
}

func (r *recipeRepository) DeleteCartItem(ctx context.Context, userID, recipeID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.ShoppingCart{}).Error
}

func (r *recipeRepository) IsInCart(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ShoppingCart{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) GetCartSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(recipeIDs))
	if userID == "" || len(recipeIDs) == 0 {
		return set, nil
	}

	var items []*entities.ShoppingCart
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		set[item.RecipeID] = true
	}
	return set, nil
}

// GetCartIngredients returns every ingredient row of the user's cart recipes
// in a stable order: carts in the order they were filled, with the row id as
// an arbitrary but deterministic tiebreaker within a recipe. The aggregator
// relies on the order being deterministic, not on any particular tiebreak.
func (r *recipeRepository) GetCartIngredients(ctx context.Context, userID string) ([]*entities.IngredientInRecipe, error) {
	var items []*entities.IngredientInRecipe
	if err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Preload("Ingredient.Unit").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredients_in_recipe.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("shopping_carts.created_at asc, ingredients_in_recipe.id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
