package domain

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessSaveRecipe      = "recipe saved successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessFavorite        = "recipe added to favorites"
	MessageSuccessUnfavorite      = "recipe removed from favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"
	MessageSuccessGetShoppingList = "success get shopping list"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedSaveRecipe      = "failed to save recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedFavorite        = "failed to update favorites"
	MessageFailedCart            = "failed to update shopping cart"
	MessageFailedShoppingList    = "failed to build shopping list"
)

type (
	IngredientItemRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required"`
	}

	SaveRecipeRequest struct {
		Name        string                  `json:"name" validate:"required,max=200"`
		Text        string                  `json:"text" validate:"required"`
		Image       string                  `json:"image,omitempty"` // base64 data URI
		CookingTime int                     `json:"cooking_time" validate:"required"`
		Ingredients []IngredientItemRequest `json:"ingredients" validate:"required"`
		Tags        []string                `json:"tags" validate:"required,dive,uuid"`
	}

	// RecipeFilter narrows a listing before pagination is applied.
	RecipeFilter struct {
		AuthorID         string
		TagSlugs         []string
		IsFavorited      bool
		IsInShoppingCart bool
	}

	IngredientInRecipeResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	// RecipeResponse is the full list/detail projection, including the two
	// per-viewer derived flags.
	RecipeResponse struct {
		ID               string                       `json:"id"`
		Tags             []TagResponse                `json:"tags"`
		Author           UserResponse                 `json:"author"`
		Ingredients      []IngredientInRecipeResponse `json:"ingredients"`
		IsFavorited      bool                         `json:"is_favorited"`
		IsInShoppingCart bool                         `json:"is_in_shopping_cart"`
		Name             string                       `json:"name"`
		Image            string                       `json:"image,omitempty"`
		Text             string                       `json:"text"`
		CookingTime      int                          `json:"cooking_time"`
	}

	// RecipeSummary is the short projection used by favorites, the cart and
	// subscription listings.
	RecipeSummary struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	// ShoppingListItem is one aggregated line of the user's shopping list.
	// Items keep the first-seen order of the underlying cart query.
	ShoppingListItem struct {
		Name            string `json:"name"`
		Amount          int    `json:"amount"`
		MeasurementUnit string `json:"measurement_unit"`
	}
)
