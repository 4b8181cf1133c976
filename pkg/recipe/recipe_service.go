package recipe

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/pkg/ingredient"
	"foodgram-backend/pkg/tag"
	"foodgram-backend/pkg/user"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.SaveRecipeRequest, authorID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, authorID string) error

		FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error)
		UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error
		AddToCart(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error)
		RemoveFromCart(ctx context.Context, recipeID, userID string) error

		BuildShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		ingredientRepository ingredient.IngredientRepository
		tagRepository        tag.TagRepository
		userRepository       user.UserRepository
		s3                   storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	ingredientRepository ingredient.IngredientRepository,
	tagRepository tag.TagRepository,
	userRepository user.UserRepository,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		ingredientRepository: ingredientRepository,
		tagRepository:        tagRepository,
		userRepository:       userRepository,
		s3:                   s3,
	}
}

// validateSaveRequest checks the semantic rules before anything is written:
// a non-empty ingredient set with unique ingredient ids and positive amounts,
// and a positive cooking time.
func validateSaveRequest(req domain.SaveRecipeRequest) error {
	if len(req.Ingredients) == 0 {
		return domain.NewValidationError("the ingredient field must not be empty")
	}
	seen := make(map[string]bool, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if seen[item.ID] {
			return domain.NewValidationError("ingredient %s has already been added", item.ID)
		}
		if item.Amount <= 0 {
			return domain.NewValidationError("the amount must be greater than zero")
		}
		seen[item.ID] = true
	}
	if req.CookingTime <= 0 {
		return domain.NewValidationError("the cooking time must be greater than zero")
	}
	return nil
}

// resolveAssociations loads the referenced tags and ingredients, failing with
// NotFound when any id does not exist.
func (s *recipeService) resolveAssociations(ctx context.Context, req domain.SaveRecipeRequest) ([]*entities.Tag, map[string]*entities.Ingredient, error) {
	// Repeated tag ids collapse to one link rather than failing the lookup.
	tagIDs := make([]string, 0, len(req.Tags))
	seenTags := make(map[string]bool, len(req.Tags))
	for _, id := range req.Tags {
		if seenTags[id] {
			continue
		}
		seenTags[id] = true
		tagIDs = append(tagIDs, id)
	}

	tags, err := s.tagRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, nil, domain.ErrTagNotFound
	}

	ids := make([]string, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ids = append(ids, item.ID)
	}
	ingredients, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	if len(ingredients) != len(ids) {
		return nil, nil, domain.ErrIngredientNotFound
	}

	byID := make(map[string]*entities.Ingredient, len(ingredients))
	for _, item := range ingredients {
		byID[item.ID.String()] = item
	}
	return tags, byID, nil
}

func buildIngredientRows(recipeID uuid.UUID, req domain.SaveRecipeRequest, byID map[string]*entities.Ingredient) []*entities.IngredientInRecipe {
	rows := make([]*entities.IngredientInRecipe, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		rows = append(rows, &entities.IngredientInRecipe{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: byID[item.ID].ID,
			Amount:       item.Amount,
		})
	}
	return rows
}

func (s *recipeService) uploadImage(ctx context.Context, recipeID uuid.UUID, dataURI string) (string, error) {
	objectKey, err := s.s3.UploadBase64(ctx, recipeID.String(), dataURI, "recipe-images", storage.AllowImage...)
	if err != nil {
		return "", domain.NewValidationError("invalid recipe image: %v", err)
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	if err := validateSaveRequest(req); err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, ingredientsByID, err := s.resolveAssociations(ctx, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Tags:        tags,
	}
	if req.Image != "" {
		recipe.ImageURL, err = s.uploadImage(ctx, recipe.ID, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	items := buildIngredientRows(recipe.ID, req, ingredientsByID)
	if err := s.recipeRepository.CreateRecipe(ctx, recipe, items); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.SaveRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	if err := validateSaveRequest(req); err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	if recipe.AuthorID.String() != authorID {
		return domain.RecipeResponse{}, domain.ErrForbidden
	}

	tags, ingredientsByID, err := s.resolveAssociations(ctx, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime
	if req.Image != "" {
		recipe.ImageURL, err = s.uploadImage(ctx, recipe.ID, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	items := buildIngredientRows(recipe.ID, req, ingredientsByID)
	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, items, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, authorID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, authorID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	if recipe.AuthorID.String() != authorID {
		return domain.ErrForbidden
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, recipe); err != nil {
		return err
	}
	if recipe.ImageURL != "" {
		_ = s.s3.DeleteFile(ctx, s.s3.GetObjectKeyFromLink(recipe.ImageURL))
	}
	return nil
}

// buildResponses assembles the list projection for a page of recipes. The
// per-viewer flags come from one membership query per relation, not from a
// query per row; anonymous viewers get empty sets.
func (s *recipeService) buildResponses(ctx context.Context, recipes []*entities.Recipe, viewerID string) ([]domain.RecipeResponse, error) {
	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, recipe := range recipes {
		recipeIDs = append(recipeIDs, recipe.ID)
		authorIDs = append(authorIDs, recipe.AuthorID)
	}

	favorited, err := s.recipeRepository.GetFavoritedSet(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.recipeRepository.GetCartSet(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.userRepository.GetSubscribedSet(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	rows, err := s.recipeRepository.GetIngredientsForRecipes(ctx, recipeIDs)
	if err != nil {
		return nil, err
	}
	ingredientsByRecipe := make(map[uuid.UUID][]domain.IngredientInRecipeResponse, len(recipes))
	for _, row := range rows {
		unitName := ""
		if row.Ingredient != nil && row.Ingredient.Unit != nil {
			unitName = row.Ingredient.Unit.Name
		}
		name := ""
		if row.Ingredient != nil {
			name = row.Ingredient.Name
		}
		ingredientsByRecipe[row.RecipeID] = append(ingredientsByRecipe[row.RecipeID], domain.IngredientInRecipeResponse{
			ID:              row.IngredientID.String(),
			Name:            name,
			MeasurementUnit: unitName,
			Amount:          row.Amount,
		})
	}

	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		author := domain.UserResponse{ID: recipe.AuthorID.String()}
		if recipe.Author != nil {
			author = domain.UserResponse{
				ID:           recipe.Author.ID.String(),
				Email:        recipe.Author.Email,
				Username:     recipe.Author.Username,
				FirstName:    recipe.Author.FirstName,
				LastName:     recipe.Author.LastName,
				IsSubscribed: subscribed[recipe.AuthorID],
			}
		}

		tags := make([]domain.TagResponse, 0, len(recipe.Tags))
		for _, item := range recipe.Tags {
			tags = append(tags, domain.TagResponse{
				ID:    item.ID.String(),
				Name:  item.Name,
				Color: item.Color,
				Slug:  item.Slug,
			})
		}

		res = append(res, domain.RecipeResponse{
			ID:               recipe.ID.String(),
			Tags:             tags,
			Author:           author,
			Ingredients:      ingredientsByRecipe[recipe.ID],
			IsFavorited:      favorited[recipe.ID],
			IsInShoppingCart: inCart[recipe.ID],
			Name:             recipe.Name,
			Image:            recipe.ImageURL,
			Text:             recipe.Text,
			CookingTime:      recipe.CookingTime,
		})
	}
	return res, nil
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res, err := s.buildResponses(ctx, recipes, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return res, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	res, err := s.buildResponses(ctx, []*entities.Recipe{recipe}, viewerID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return res[0], nil
}

func toRecipeSummary(recipe *entities.Recipe) domain.RecipeSummary {
	return domain.RecipeSummary{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

// FavoriteRecipe adds the (user, recipe) pair. A duplicate add fails with a
// validation error; a race that slips past the pre-check is rejected by the
// unique index and mapped to the same error.
func (s *recipeService) FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeSummary{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeSummary{}, err
	}

	exists, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}
	if exists {
		return domain.RecipeSummary{}, domain.NewValidationError("the recipe is in the favorites already")
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeSummary{}, domain.ErrParseUUID
	}
	if err := s.recipeRepository.CreateFavorite(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeSummary{}, domain.NewValidationError("the recipe is in the favorites already")
		}
		return domain.RecipeSummary{}, err
	}
	return toRecipeSummary(recipe), nil
}

// UnfavoriteRecipe is idempotent: removing an absent favorite is not an error.
func (s *recipeService) UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error {
	return s.recipeRepository.DeleteFavorite(ctx, userID, recipeID)
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeSummary{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeSummary{}, err
	}

	exists, err := s.recipeRepository.IsInCart(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}
	if exists {
		return domain.RecipeSummary{}, domain.NewValidationError("the recipe is in the shopping cart already")
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeSummary{}, domain.ErrParseUUID
	}
	if err := s.recipeRepository.CreateCartItem(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeSummary{}, domain.NewValidationError("the recipe is in the shopping cart already")
		}
		return domain.RecipeSummary{}, err
	}
	return toRecipeSummary(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID, userID string) error {
	return s.recipeRepository.DeleteCartItem(ctx, userID, recipeID)
}

// BuildShoppingList merges the ingredient rows of every recipe in the user's
// cart. Rows are grouped by ingredient name and unit name, amounts summed
// within a group, and groups keep the first-seen order of the cart query.
// Grouping by name follows the catalog assumption that names are unique.
func (s *recipeService) BuildShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	rows, err := s.recipeRepository.GetCartIngredients(ctx, userID)
	if err != nil {
		return nil, err
	}

	type key struct {
		name string
		unit string
	}
	index := make(map[key]int, len(rows))
	list := make([]domain.ShoppingListItem, 0, len(rows))
	for _, row := range rows {
		if row.Ingredient == nil {
			continue
		}
		unitName := ""
		if row.Ingredient.Unit != nil {
			unitName = row.Ingredient.Unit.Name
		}
		k := key{name: row.Ingredient.Name, unit: unitName}
		if i, ok := index[k]; ok {
			list[i].Amount += row.Amount
			continue
		}
		index[k] = len(list)
		list = append(list, domain.ShoppingListItem{
			Name:            row.Ingredient.Name,
			Amount:          row.Amount,
			MeasurementUnit: unitName,
		})
	}
	return list, nil
}
