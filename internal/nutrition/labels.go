package nutrition

const (
	LabelHighSugar   = "High sugar"
	LabelHighFat     = "High fat"
	LabelHighCalorie = "High calorie"
	LabelHighProtein = "High protein"
	LabelLowCalorie  = "Low calorie"
	LabelNoCarbs     = "No carbs"
	LabelLowCarb     = "Low carb"
	LabelHealthy     = "Healthy"
	LabelUnhealthy   = "Unhealthy"
)

// Rules holds every threshold the label classifier applies, together with the
// nutrient codes it reads. Amounts are per 100g/100ml as reported upstream.
type Rules struct {
	Codes Codes `koanf:"codes"`

	HighSugar   float64 `koanf:"high_sugar"`
	HighFat     float64 `koanf:"high_fat"`
	HighCalorie float64 `koanf:"high_calorie"`
	HighProtein float64 `koanf:"high_protein"`
	LowCalorie  float64 `koanf:"low_calorie"`
	NoCarbs     float64 `koanf:"no_carbs"`
	LowCarb     float64 `koanf:"low_carb"`

	// LowCarbEnabled toggles the "Low carb" band [NoCarbs, LowCarb).
	LowCarbEnabled bool `koanf:"low_carb_enabled"`

	HealthyMaxCalories float64 `koanf:"healthy_max_calories"`
	HealthyMaxFat      float64 `koanf:"healthy_max_fat"`
	HealthyMaxSugar    float64 `koanf:"healthy_max_sugar"`

	// RequireReported makes a rule fire only when every nutrient it reads was
	// reported. When false, missing nutrients count as 0.
	RequireReported bool `koanf:"require_reported"`
}

func DefaultRules() Rules {
	return Rules{
		Codes:              DefaultCodes(),
		HighSugar:          15,
		HighFat:            17.5,
		HighCalorie:        300,
		HighProtein:        20,
		LowCalorie:         50,
		NoCarbs:            1,
		LowCarb:            5,
		LowCarbEnabled:     true,
		HealthyMaxCalories: 200,
		HealthyMaxFat:      10,
		HealthyMaxSugar:    10,
	}
}

// Vocabulary lists every label Classify can emit, in evaluation order.
func (r Rules) Vocabulary() []string {
	out := []string{
		LabelHighSugar, LabelHighFat, LabelHighCalorie, LabelHighProtein,
		LabelLowCalorie, LabelNoCarbs,
	}
	if r.LowCarbEnabled {
		out = append(out, LabelLowCarb)
	}
	return append(out, LabelHealthy, LabelUnhealthy)
}

// Classify derives display labels from a nutrient lookup. The result is never
// nil and depends only on the lookup and the rules.
func (r Rules) Classify(l Lookup) []string {
	labels := make([]string, 0, 4)
	if len(l) == 0 {
		return labels
	}

	sugar, hasSugar := l.Get(r.Codes.Sugar)
	fat, hasFat := l.Get(r.Codes.Fat)
	calories, hasCalories := l.Get(r.Codes.Calories)
	protein, hasProtein := l.Get(r.Codes.Protein)
	carbs, hasCarbs := l.Get(r.Codes.Carbs)

	if r.usable(hasSugar) && sugar > r.HighSugar {
		labels = append(labels, LabelHighSugar)
	}
	if r.usable(hasFat) && fat > r.HighFat {
		labels = append(labels, LabelHighFat)
	}
	if r.usable(hasCalories) && calories > r.HighCalorie {
		labels = append(labels, LabelHighCalorie)
	}
	if r.usable(hasProtein) && protein > r.HighProtein {
		labels = append(labels, LabelHighProtein)
	}
	if r.usable(hasCalories) && calories < r.LowCalorie {
		labels = append(labels, LabelLowCalorie)
	}
	if r.usable(hasCarbs) {
		if carbs < r.NoCarbs {
			labels = append(labels, LabelNoCarbs)
		} else if r.LowCarbEnabled && carbs < r.LowCarb {
			labels = append(labels, LabelLowCarb)
		}
	}

	if len(labels) == 0 && r.usable(hasCalories && hasFat && hasSugar) &&
		calories < r.HealthyMaxCalories && fat < r.HealthyMaxFat && sugar < r.HealthyMaxSugar {
		labels = append(labels, LabelHealthy)
	}

	if hasAny(labels, LabelHighSugar, LabelHighFat, LabelHighCalorie) {
		labels = append(labels, LabelUnhealthy)
	}
	return labels
}

// MissingCodes returns the rule inputs absent from a non-empty lookup. An empty
// lookup reports nothing since Classify does not evaluate it.
func (r Rules) MissingCodes(l Lookup) []string {
	if len(l) == 0 {
		return nil
	}
	var missing []string
	for _, code := range []string{r.Codes.Calories, r.Codes.Protein, r.Codes.Fat, r.Codes.Carbs, r.Codes.Sugar} {
		if _, ok := l[code]; !ok {
			missing = append(missing, code)
		}
	}
	return missing
}

func (r Rules) usable(reported bool) bool {
	return reported || !r.RequireReported
}

func hasAny(labels []string, want ...string) bool {
	for _, l := range labels {
		for _, w := range want {
			if l == w {
				return true
			}
		}
	}
	return false
}
