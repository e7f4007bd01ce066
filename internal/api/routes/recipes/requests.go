package recipes

type IngredientAmount struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Amount int32 `json:"amount" validate:"required,min=1,max=32000"`
}

// RecipeWriteRequest is the write representation of a recipe, used by
// create and update. Image is a base64 data URI, required on create and
// optional on update.
type RecipeWriteRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
	Tags        []int64            `json:"tags" validate:"required,min=1,unique,dive,gt=0"`
	Image       string             `json:"image"`
	Name        string             `json:"name" validate:"required,max=256"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int32              `json:"cooking_time" validate:"required,min=1,max=32000"`
}

func (r RecipeWriteRequest) ingredientIDs() []int64 {
	ids := make([]int64, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ids[i] = ing.ID
	}
	return ids
}

func (r RecipeWriteRequest) amounts() []int32 {
	amounts := make([]int32, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		amounts[i] = ing.Amount
	}
	return amounts
}
