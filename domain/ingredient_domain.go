package domain

var (
	MessageSuccessGetIngredients = "success get ingredients"

	MessageFailedGetIngredients = "failed to get ingredients"
)

type (
	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
)
