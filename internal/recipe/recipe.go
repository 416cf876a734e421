package recipe

// Recipe is a prepared dish. Macro values cover the whole recipe; calories
// per serving are stored as published.
type Recipe struct {
	ID                 string   `json:"id" koanf:"id"`
	Name               string   `json:"name" koanf:"name"`
	Calories           float64  `json:"calories" koanf:"calories"`
	Protein            float64  `json:"protein" koanf:"protein"`
	Fat                float64  `json:"fat" koanf:"fat"`
	Carbs              float64  `json:"carbs" koanf:"carbs"`
	CookingTime        int      `json:"cookingTime" koanf:"cooking_time"`
	Servings           int      `json:"servings" koanf:"servings"`
	CaloriesPerServing float64  `json:"caloriesPerServing" koanf:"calories_per_serving"`
	Labels             []string `json:"labels" koanf:"labels"`
	ImageURL           string   `json:"imageUrl" koanf:"image_url"`
	Ingredients        []string `json:"ingredients" koanf:"ingredients"`
	Instructions       []string `json:"instructions" koanf:"instructions"`
}

// Summary is the list view of a recipe.
type Summary struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Calories           float64  `json:"calories"`
	Protein            float64  `json:"protein"`
	Fat                float64  `json:"fat"`
	Carbs              float64  `json:"carbs"`
	CookingTime        int      `json:"cookingTime"`
	Servings           int      `json:"servings"`
	CaloriesPerServing float64  `json:"caloriesPerServing"`
	Labels             []string `json:"labels"`
	ImageURL           string   `json:"imageUrl"`
}

func (r Recipe) Summary() Summary {
	return Summary{
		ID:                 r.ID,
		Name:               r.Name,
		Calories:           r.Calories,
		Protein:            r.Protein,
		Fat:                r.Fat,
		Carbs:              r.Carbs,
		CookingTime:        r.CookingTime,
		Servings:           r.Servings,
		CaloriesPerServing: r.CaloriesPerServing,
		Labels:             r.Labels,
		ImageURL:           r.ImageURL,
	}
}
