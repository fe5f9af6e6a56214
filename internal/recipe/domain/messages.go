package domain

// Client-facing messages.
const (
	MsgNoIngredients        = "There must be at least one ingredient in the recipe."
	MsgAmountNotPositive    = "Ingredient amount must be a positive integer."
	MsgDuplicateIngredients = "Ingredients must be unique in one recipe."
	MsgNoTags               = "There must be at least one tag."
	MsgDuplicateTags        = "Tags must be unique."
	MsgCookingTimeInvalid   = "Cooking time must be a positive integer."
	MsgImageRequired        = "Image is required."
	MsgImageInvalid         = "Image must be a base64 encoded data URI."

	MsgAlreadyFavorited = "Recipe is already in favourites"
	MsgNotFavorited     = "Recipe is not in favourites"
	MsgAlreadyInCart    = "Recipe is already in shopping cart"
	MsgNotInCart        = "Recipe is not in shopping cart"

	MsgRecipeNotFound     = "Recipe not found."
	MsgTagNotFound        = "Tag not found."
	MsgIngredientNotFound = "Ingredient not found."
	MsgUnitNotFound       = "Measurement unit not found."
	MsgNotRecipeAuthor    = "You do not have permission to modify this recipe."
	MsgUnitInUse          = "Measurement unit is in use by ingredients"
	MsgIngredientInUse    = "Ingredient is used in recipes"
	MsgIngredientExists   = "Ingredient with this name and measurement unit already exists."
	MsgTagSlugExists      = "Tag with this slug already exists."
	MsgUnitExists         = "Measurement unit with this name already exists."
	MsgInvalidSlug        = "Slug may contain only letters, numbers, underscores or hyphens."
)
