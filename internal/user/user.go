package user

// User is an account together with its dietary profile.
type User struct {
	ID           int            `json:"userId"`
	Email        string         `json:"email"`
	Password     string         `json:"password,omitempty"`
	FirstName    string         `json:"firstName"`
	LastName     string         `json:"lastName"`
	Phone        string         `json:"phone"`
	DateOfBirth  string         `json:"dateOfBirth"`
	Goals        NutritionGoals `json:"nutritionGoals"`
	Restrictions []string       `json:"dietaryRestrictions"`
	CreatedAt    string         `json:"createAt,omitempty"`
	UpdatedAt    string         `json:"updateAt,omitempty"`
}

// NutritionGoals are daily targets in kcal and grams.
type NutritionGoals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Restriction is a dietary restriction and whether the user has it enabled.
type Restriction struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func DefaultGoals() NutritionGoals {
	return NutritionGoals{Calories: 2500, Protein: 125, Fat: 83, Carbs: 83}
}

// KnownRestrictions is the catalog offered to users when adding restrictions.
var KnownRestrictions = []string{
	"Unhealthy",
	"Gluten",
	"Lactose",
	"Nuts",
	"Ultra-Processed",
	"Vegetarian",
	"Vegan",
	"Pescatarian",
	"No Sugar",
	"Low Carb",
}
