package recipe

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/pkg/ingredient"
	"foodgram-backend/pkg/tag"
	"foodgram-backend/pkg/testutil"
	"foodgram-backend/pkg/user"
)

func newService(tx *gorm.DB) RecipeService {
	return NewRecipeService(
		NewRecipeRepository(tx),
		ingredient.NewIngredientRepository(tx),
		tag.NewTagRepository(tx),
		user.NewUserRepository(tx),
		nil,
	)
}

func saveRequest(ingredients []domain.IngredientItemRequest, tags []string) domain.SaveRecipeRequest {
	return domain.SaveRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: ingredients,
		Tags:        tags,
	}
}

func TestCreateRecipeRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "author@example.com")
	gram := testutil.SeedUnit(t, ctx, tx, "g")
	flour := testutil.SeedIngredient(t, ctx, tx, "Flour", gram.ID)
	sugar := testutil.SeedIngredient(t, ctx, tx, "Sugar", gram.ID)
	breakfast := testutil.SeedTag(t, ctx, tx, "Breakfast", "#FED764", "breakfast")

	res, err := svc.CreateRecipe(ctx, saveRequest(
		[]domain.IngredientItemRequest{
			{ID: flour.ID.String(), Amount: 200},
			{ID: sugar.ID.String(), Amount: 100},
		},
		[]string{breakfast.ID.String()},
	), author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	if len(res.Tags) != 1 || res.Tags[0].Slug != "breakfast" {
		t.Fatalf("tags = %+v, want [breakfast]", res.Tags)
	}
	amounts := map[string]int{}
	for _, item := range res.Ingredients {
		amounts[item.Name] = item.Amount
	}
	if len(amounts) != 2 || amounts["Flour"] != 200 || amounts["Sugar"] != 100 {
		t.Fatalf("ingredients = %+v, want Flour=200 Sugar=100", res.Ingredients)
	}
	if res.Author.ID != author.ID.String() {
		t.Fatalf("author = %s, want %s", res.Author.ID, author.ID)
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "validation@example.com")
	gram := testutil.SeedUnit(t, ctx, tx, "g")
	flour := testutil.SeedIngredient(t, ctx, tx, "Flour", gram.ID)
	breakfast := testutil.SeedTag(t, ctx, tx, "Breakfast", "#FED764", "breakfast")
	tagIDs := []string{breakfast.ID.String()}

	cases := []struct {
		name string
		req  domain.SaveRecipeRequest
	}{
		{
			name: "empty ingredient list",
			req:  saveRequest(nil, tagIDs),
		},
		{
			name: "duplicate ingredient",
			req: saveRequest([]domain.IngredientItemRequest{
				{ID: flour.ID.String(), Amount: 100},
				{ID: flour.ID.String(), Amount: 200},
			}, tagIDs),
		},
		{
			name: "non-positive amount",
			req: saveRequest([]domain.IngredientItemRequest{
				{ID: flour.ID.String(), Amount: 0},
			}, tagIDs),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateRecipe(ctx, tc.req, author.ID.String()); !domain.IsValidation(err) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}

	t.Run("non-positive cooking time", func(t *testing.T) {
		req := saveRequest([]domain.IngredientItemRequest{
			{ID: flour.ID.String(), Amount: 100},
		}, tagIDs)
		req.CookingTime = 0
		if _, err := svc.CreateRecipe(ctx, req, author.ID.String()); !domain.IsValidation(err) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
	})

	// nothing may be persisted by failed creations
	var recipeCount, rowCount int64
	if err := tx.Model(&entities.Recipe{}).Count(&recipeCount).Error; err != nil {
		t.Fatalf("count recipes: %v", err)
	}
	if err := tx.Model(&entities.IngredientInRecipe{}).Count(&rowCount).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if recipeCount != 0 || rowCount != 0 {
		t.Fatalf("persisted recipes=%d rows=%d after failed creations, want 0/0", recipeCount, rowCount)
	}
}

func TestUpdateRecipeReplacesAssociations(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "replace@example.com")
	gram := testutil.SeedUnit(t, ctx, tx, "g")
	flour := testutil.SeedIngredient(t, ctx, tx, "Flour", gram.ID)
	sugar := testutil.SeedIngredient(t, ctx, tx, "Sugar", gram.ID)
	salt := testutil.SeedIngredient(t, ctx, tx, "Salt", gram.ID)
	breakfast := testutil.SeedTag(t, ctx, tx, "Breakfast", "#FED764", "breakfast")
	dinner := testutil.SeedTag(t, ctx, tx, "Dinner", "#7FBFBF", "dinner")

	created, err := svc.CreateRecipe(ctx, saveRequest(
		[]domain.IngredientItemRequest{
			{ID: flour.ID.String(), Amount: 200},
			{ID: sugar.ID.String(), Amount: 100},
		},
		[]string{breakfast.ID.String()},
	), author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	updated, err := svc.UpdateRecipe(ctx, created.ID, saveRequest(
		[]domain.IngredientItemRequest{
			{ID: sugar.ID.String(), Amount: 50},
			{ID: salt.ID.String(), Amount: 5},
		},
		[]string{dinner.ID.String()},
	), author.ID.String())
	if err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}

	amounts := map[string]int{}
	for _, item := range updated.Ingredients {
		amounts[item.Name] = item.Amount
	}
	if len(amounts) != 2 || amounts["Sugar"] != 50 || amounts["Salt"] != 5 {
		t.Fatalf("ingredients = %+v, want Sugar=50 Salt=5", updated.Ingredients)
	}
	if _, stale := amounts["Flour"]; stale {
		t.Fatal("stale ingredient Flour survived the update")
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Slug != "dinner" {
		t.Fatalf("tags = %+v, want [dinner]", updated.Tags)
	}

	var rowCount int64
	if err := tx.Model(&entities.IngredientInRecipe{}).
		Where("recipe_id = ?", created.ID).
		Count(&rowCount).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rowCount != 2 {
		t.Fatalf("association rows = %d, want 2", rowCount)
	}
}

func TestUpdateRecipeAuthorOnly(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	other := testutil.SeedUser(t, ctx, tx, "intruder@example.com")
	gram := testutil.SeedUnit(t, ctx, tx, "g")
	flour := testutil.SeedIngredient(t, ctx, tx, "Flour", gram.ID)
	breakfast := testutil.SeedTag(t, ctx, tx, "Breakfast", "#FED764", "breakfast")

	items := []domain.IngredientItemRequest{{ID: flour.ID.String(), Amount: 100}}
	tagIDs := []string{breakfast.ID.String()}

	created, err := svc.CreateRecipe(ctx, saveRequest(items, tagIDs), author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	if _, err := svc.UpdateRecipe(ctx, created.ID, saveRequest(items, tagIDs), other.ID.String()); err != domain.ErrForbidden {
		t.Fatalf("update by non-author: err = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteRecipe(ctx, created.ID, other.ID.String()); err != domain.ErrForbidden {
		t.Fatalf("delete by non-author: err = %v, want ErrForbidden", err)
	}
}

func TestFavoriteToggle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "favauthor@example.com")
	viewer := testutil.SeedUser(t, ctx, tx, "favviewer@example.com")
	recipe := testutil.SeedRecipe(t, ctx, tx, author.ID, "soup")

	summary, err := svc.FavoriteRecipe(ctx, recipe.ID.String(), viewer.ID.String())
	if err != nil {
		t.Fatalf("first favorite: %v", err)
	}
	if summary.ID != recipe.ID.String() {
		t.Fatalf("summary = %+v, want recipe %s", summary, recipe.ID)
	}

	if _, err := svc.FavoriteRecipe(ctx, recipe.ID.String(), viewer.ID.String()); !domain.IsValidation(err) {
		t.Fatalf("second favorite: err = %v, want ValidationError", err)
	}

	if err := svc.UnfavoriteRecipe(ctx, recipe.ID.String(), viewer.ID.String()); err != nil {
		t.Fatalf("unfavorite: %v", err)
	}
	if _, err := svc.FavoriteRecipe(ctx, recipe.ID.String(), viewer.ID.String()); err != nil {
		t.Fatalf("favorite after delete: %v", err)
	}

	// removing an absent row is not an error
	if err := svc.UnfavoriteRecipe(ctx, recipe.ID.String(), author.ID.String()); err != nil {
		t.Fatalf("unfavorite of never-favorited: %v", err)
	}
}

func TestCartToggle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "cartauthor@example.com")
	viewer := testutil.SeedUser(t, ctx, tx, "cartviewer@example.com")
	recipe := testutil.SeedRecipe(t, ctx, tx, author.ID, "stew")

	if _, err := svc.AddToCart(ctx, recipe.ID.String(), viewer.ID.String()); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.AddToCart(ctx, recipe.ID.String(), viewer.ID.String()); !domain.IsValidation(err) {
		t.Fatalf("second add: err = %v, want ValidationError", err)
	}
	if err := svc.RemoveFromCart(ctx, recipe.ID.String(), viewer.ID.String()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveFromCart(ctx, recipe.ID.String(), viewer.ID.String()); err != nil {
		t.Fatalf("remove of absent row: %v", err)
	}
}

func TestShoppingListAggregation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "listauthor@example.com")
	buyer := testutil.SeedUser(t, ctx, tx, "listbuyer@example.com")
	gram := testutil.SeedUnit(t, ctx, tx, "g")
	pcs := testutil.SeedUnit(t, ctx, tx, "pcs")
	flour := testutil.SeedIngredient(t, ctx, tx, "Flour", gram.ID)
	sugar := testutil.SeedIngredient(t, ctx, tx, "Sugar", gram.ID)
	egg := testutil.SeedIngredient(t, ctx, tx, "Egg", pcs.ID)

	recipe1 := testutil.SeedRecipe(t, ctx, tx, author.ID, "dough")
	testutil.SeedIngredientInRecipe(t, ctx, tx, recipe1.ID, flour.ID, 200)
	testutil.SeedIngredientInRecipe(t, ctx, tx, recipe1.ID, sugar.ID, 100)
	recipe2 := testutil.SeedRecipe(t, ctx, tx, author.ID, "batter")
	testutil.SeedIngredientInRecipe(t, ctx, tx, recipe2.ID, flour.ID, 300)
	testutil.SeedIngredientInRecipe(t, ctx, tx, recipe2.ID, egg.ID, 2)

	if _, err := svc.AddToCart(ctx, recipe1.ID.String(), buyer.ID.String()); err != nil {
		t.Fatalf("add recipe1: %v", err)
	}
	if _, err := svc.AddToCart(ctx, recipe2.ID.String(), buyer.ID.String()); err != nil {
		t.Fatalf("add recipe2: %v", err)
	}

	list, err := svc.BuildShoppingList(ctx, buyer.ID.String())
	if err != nil {
		t.Fatalf("BuildShoppingList: %v", err)
	}

	if len(list) != 3 {
		t.Fatalf("list has %d items, want 3: %+v", len(list), list)
	}
	want := map[string]domain.ShoppingListItem{
		"Flour": {Name: "Flour", Amount: 500, MeasurementUnit: "g"},
		"Sugar": {Name: "Sugar", Amount: 100, MeasurementUnit: "g"},
		"Egg":   {Name: "Egg", Amount: 2, MeasurementUnit: "pcs"},
	}
	for _, item := range list {
		if item != want[item.Name] {
			t.Fatalf("item = %+v, want %+v", item, want[item.Name])
		}
		delete(want, item.Name)
	}

	// the first cart entry's ingredients lead the list
	if list[2].Name != "Egg" {
		t.Fatalf("list = %+v, want the second recipe's Egg last", list)
	}
}

func TestProjectionFlags(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "flagauthor@example.com")
	viewer := testutil.SeedUser(t, ctx, tx, "flagviewer@example.com")
	recipe1 := testutil.SeedRecipe(t, ctx, tx, author.ID, "toast")
	recipe2 := testutil.SeedRecipe(t, ctx, tx, author.ID, "jam")

	if _, err := svc.FavoriteRecipe(ctx, recipe1.ID.String(), viewer.ID.String()); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if _, err := svc.AddToCart(ctx, recipe2.ID.String(), viewer.ID.String()); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	recipes, _, err := svc.GetRecipes(ctx, domain.RecipeFilter{}, 1, 20, viewer.ID.String())
	if err != nil {
		t.Fatalf("GetRecipes: %v", err)
	}
	flags := map[string][2]bool{}
	for _, r := range recipes {
		flags[r.ID] = [2]bool{r.IsFavorited, r.IsInShoppingCart}
	}
	if flags[recipe1.ID.String()] != [2]bool{true, false} {
		t.Fatalf("recipe1 flags = %v, want favorited only", flags[recipe1.ID.String()])
	}
	if flags[recipe2.ID.String()] != [2]bool{false, true} {
		t.Fatalf("recipe2 flags = %v, want in cart only", flags[recipe2.ID.String()])
	}

	// anonymous viewers always see false flags
	anonymous, _, err := svc.GetRecipes(ctx, domain.RecipeFilter{}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes anonymous: %v", err)
	}
	for _, r := range anonymous {
		if r.IsFavorited || r.IsInShoppingCart {
			t.Fatalf("anonymous flags set on %s", r.ID)
		}
	}
}

func TestAnonymousBooleanFiltersMatchNothing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "anonfilter@example.com")
	viewer := testutil.SeedUser(t, ctx, tx, "anonviewer@example.com")
	recipe := testutil.SeedRecipe(t, ctx, tx, author.ID, "omelette")
	if _, err := svc.FavoriteRecipe(ctx, recipe.ID.String(), viewer.ID.String()); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if _, err := svc.AddToCart(ctx, recipe.ID.String(), viewer.ID.String()); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	for _, filter := range []domain.RecipeFilter{
		{IsFavorited: true},
		{IsInShoppingCart: true},
	} {
		recipes, count, err := svc.GetRecipes(ctx, filter, 1, 20, "")
		if err != nil {
			t.Fatalf("GetRecipes %+v: %v", filter, err)
		}
		if count != 0 || len(recipes) != 0 {
			t.Fatalf("anonymous %+v returned %d recipes (count %d), want none", filter, len(recipes), count)
		}
	}

	// the same filters do match for the viewer who set the flags
	recipes, count, err := svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true}, 1, 20, viewer.ID.String())
	if err != nil {
		t.Fatalf("GetRecipes for viewer: %v", err)
	}
	if count != 1 || len(recipes) != 1 {
		t.Fatalf("viewer filter returned %d recipes (count %d), want 1", len(recipes), count)
	}
}

func TestCreateRecipeDuplicateTags(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "duptags@example.com")
	gram := testutil.SeedUnit(t, ctx, tx, "g")
	flour := testutil.SeedIngredient(t, ctx, tx, "Flour", gram.ID)
	breakfast := testutil.SeedTag(t, ctx, tx, "Breakfast", "#FED764", "breakfast")

	res, err := svc.CreateRecipe(ctx, saveRequest(
		[]domain.IngredientItemRequest{{ID: flour.ID.String(), Amount: 100}},
		[]string{breakfast.ID.String(), breakfast.ID.String()},
	), author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe with repeated tag: %v", err)
	}
	if len(res.Tags) != 1 || res.Tags[0].Slug != "breakfast" {
		t.Fatalf("tags = %+v, want the single breakfast tag", res.Tags)
	}
}

func TestGetRecipesOrderingAndFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author1 := testutil.SeedUser(t, ctx, tx, "order1@example.com")
	author2 := testutil.SeedUser(t, ctx, tx, "order2@example.com")
	breakfast := testutil.SeedTag(t, ctx, tx, "Breakfast", "#FED764", "breakfast")

	older := testutil.SeedRecipe(t, ctx, tx, author1.ID, "older")
	if err := tx.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	newer := testutil.SeedRecipe(t, ctx, tx, author2.ID, "newer")
	if err := tx.Model(&entities.Recipe{ID: newer.ID}).Association("Tags").Append(breakfast); err != nil {
		t.Fatalf("tag recipe: %v", err)
	}

	recipes, count, err := svc.GetRecipes(ctx, domain.RecipeFilter{}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes: %v", err)
	}
	if count != 2 || len(recipes) != 2 {
		t.Fatalf("count = %d len = %d, want 2/2", count, len(recipes))
	}
	if recipes[0].ID != newer.ID.String() {
		t.Fatalf("first recipe = %s, want newest %s", recipes[0].ID, newer.ID)
	}

	byTag, count, err := svc.GetRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"breakfast"}}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes by tag: %v", err)
	}
	if count != 1 || len(byTag) != 1 || byTag[0].ID != newer.ID.String() {
		t.Fatalf("tag filter = %+v (count %d), want only tagged recipe", byTag, count)
	}

	byAuthor, count, err := svc.GetRecipes(ctx, domain.RecipeFilter{AuthorID: author1.ID.String()}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes by author: %v", err)
	}
	if count != 1 || len(byAuthor) != 1 || byAuthor[0].ID != older.ID.String() {
		t.Fatalf("author filter = %+v (count %d), want only author1's recipe", byAuthor, count)
	}
}

func TestDeleteRecipeCascades(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newService(tx)

	author := testutil.SeedUser(t, ctx, tx, "cascade@example.com")
	viewer := testutil.SeedUser(t, ctx, tx, "cascadeviewer@example.com")
	gram := testutil.SeedUnit(t, ctx, tx, "g")
	flour := testutil.SeedIngredient(t, ctx, tx, "Flour", gram.ID)
	breakfast := testutil.SeedTag(t, ctx, tx, "Breakfast", "#FED764", "breakfast")

	created, err := svc.CreateRecipe(ctx, saveRequest(
		[]domain.IngredientItemRequest{{ID: flour.ID.String(), Amount: 100}},
		[]string{breakfast.ID.String()},
	), author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	if _, err := svc.FavoriteRecipe(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if _, err := svc.AddToCart(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	if err := svc.DeleteRecipe(ctx, created.ID, author.ID.String()); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}

	for _, model := range []any{
		&entities.IngredientInRecipe{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	} {
		var count int64
		if err := tx.Model(model).Where("recipe_id = ?", created.ID).Count(&count).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if count != 0 {
			t.Fatalf("%T rows survived deletion: %d", model, count)
		}
	}
}
