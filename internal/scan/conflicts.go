package scan

import (
	"strings"
	"unicode"

	"github.com/wichananm65/grocery-backend/internal/nutrition"
	"github.com/wichananm65/grocery-backend/internal/product"
)

// Conflict explains why a product clashes with an active restriction.
type Conflict struct {
	Restriction string `json:"restriction"`
	Reason      string `json:"reason"`
}

type rule struct {
	labels    []string
	allergens []string
	// ingredients match as the start or end of a word in the ingredient list
	ingredients []string
	// require means the product must carry one of labels to pass
	require bool
}

// Allergen keywords cover the English and Norwegian names the catalog uses.
var (
	milkAllergens    = []string{"milk", "melk", "lactose", "laktose"}
	glutenAllergens  = []string{"gluten", "wheat", "hvete", "rye", "barley", "bygg"}
	nutAllergens     = []string{"nut", "nøtt", "peanut", "peanøtt", "mandel", "almond"}
	eggAllergens     = []string{"egg"}
	seafoodAllergens = []string{"fish", "fisk", "shellfish", "skalldyr", "mollusc", "bløtdyr", "crustacean"}
)

// Ingredient keywords for diets the allergen list cannot express.
var (
	meatIngredients = []string{
		"meat", "kjøtt", "beef", "storfe", "pork", "svin", "chicken", "kylling",
		"turkey", "kalkun", "bacon", "skinke", "salami", "gelatin",
	}
	fishIngredients   = []string{"fish", "fisk", "laks", "salmon", "tuna", "torsk", "reke", "shrimp", "ansjos", "anchov"}
	animalIngredients = []string{"honey", "honning", "milk", "melk", "egg", "butter", "smør", "ost", "cheese", "myse", "whey"}
)

var restrictionRules = map[string]rule{
	"unhealthy":   {labels: []string{nutrition.LabelUnhealthy}},
	"no sugar":    {labels: []string{nutrition.LabelHighSugar}},
	"low carb":    {labels: []string{nutrition.LabelLowCarb, nutrition.LabelNoCarbs}, require: true},
	"gluten":      {allergens: glutenAllergens},
	"lactose":     {allergens: milkAllergens},
	"nuts":        {allergens: nutAllergens},
	"vegan": {
		allergens:   concat(milkAllergens, eggAllergens, seafoodAllergens),
		ingredients: concat(meatIngredients, fishIngredients, animalIngredients),
	},
	"vegetarian":  {allergens: seafoodAllergens, ingredients: concat(meatIngredients, fishIngredients)},
	"pescatarian": {ingredients: meatIngredients},
}

// Conflicts lists the active restrictions p violates, in restriction order.
// Unknown restriction names conflict when the product carries a label or
// allergen of the same name.
func Conflicts(p product.Product, restrictions []string) []Conflict {
	out := make([]Conflict, 0)
	for _, name := range restrictions {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		r, known := restrictionRules[key]
		if !known {
			r = rule{labels: []string{name}, allergens: []string{key}}
		}
		if reason, ok := violates(p, r); ok {
			out = append(out, Conflict{Restriction: name, Reason: reason})
		}
	}
	return out
}

func violates(p product.Product, r rule) (string, bool) {
	if r.require {
		for _, l := range r.labels {
			if p.HasLabel(l) {
				return "", false
			}
		}
		if len(r.labels) > 0 {
			return "not labeled " + strings.Join(r.labels, " or "), true
		}
	} else {
		for _, l := range r.labels {
			if p.HasLabel(l) {
				return "labeled " + l, true
			}
		}
	}
	for _, a := range p.Allergens {
		lower := strings.ToLower(a)
		for _, kw := range r.allergens {
			if strings.Contains(lower, kw) {
				return "contains " + a, true
			}
		}
	}
	if len(r.ingredients) == 0 {
		return "", false
	}
	for _, word := range ingredientWords(p.Ingredients) {
		for _, kw := range r.ingredients {
			if strings.HasPrefix(word, kw) || strings.HasSuffix(word, kw) {
				return "ingredients list " + word, true
			}
		}
	}
	return "", false
}

func ingredientWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
