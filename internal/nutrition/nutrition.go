package nutrition

// Item is a single nutrient entry as reported by the product catalog.
type Item struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name"`
	Amount      float64 `json:"amount"`
	Unit        string  `json:"unit"`
}

// Lookup maps a nutrient code to its reported amount.
type Lookup map[string]float64

// Extract builds a Lookup from the catalog nutrition list. Repeated codes keep
// the last reported amount; entries without a code are skipped.
func Extract(items []Item) Lookup {
	out := make(Lookup, len(items))
	for _, item := range items {
		if item.Code == "" {
			continue
		}
		out[item.Code] = item.Amount
	}
	return out
}

// Get returns the amount for code and whether it was reported.
func (l Lookup) Get(code string) (float64, bool) {
	v, ok := l[code]
	return v, ok
}

// Value returns the amount for code, or 0 when it was not reported.
func (l Lookup) Value(code string) float64 {
	return l[code]
}

// Codes names the nutrient codes used for display macros and label rules.
type Codes struct {
	Calories     string `koanf:"calories"`
	Protein      string `koanf:"protein"`
	Fat          string `koanf:"fat"`
	Carbs        string `koanf:"carbs"`
	Sugar        string `koanf:"sugar"`
	Salt         string `koanf:"salt"`
	SaturatedFat string `koanf:"saturated_fat"`
}

func DefaultCodes() Codes {
	return Codes{
		Calories:     "energi_kcal",
		Protein:      "protein",
		Fat:          "fett_totalt",
		Carbs:        "karbohydrater",
		Sugar:        "sukkerarter",
		Salt:         "salt",
		SaturatedFat: "mettet_fett",
	}
}

// Macros is the display projection of a Lookup. The optional fields are nil
// when the catalog did not report them.
type Macros struct {
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Fat          float64  `json:"fat"`
	Carbs        float64  `json:"carbs"`
	Sugar        *float64 `json:"sugar,omitempty"`
	Salt         *float64 `json:"salt,omitempty"`
	SaturatedFat *float64 `json:"saturatedFat,omitempty"`
}

func (l Lookup) Macros(codes Codes) Macros {
	m := Macros{
		Calories: l.Value(codes.Calories),
		Protein:  l.Value(codes.Protein),
		Fat:      l.Value(codes.Fat),
		Carbs:    l.Value(codes.Carbs),
	}
	m.Sugar = l.optional(codes.Sugar)
	m.Salt = l.optional(codes.Salt)
	m.SaturatedFat = l.optional(codes.SaturatedFat)
	return m
}

func (l Lookup) optional(code string) *float64 {
	if v, ok := l.Get(code); ok {
		return &v
	}
	return nil
}

// Scale multiplies every macro by factor, e.g. a cart quantity.
func (m Macros) Scale(factor float64) Macros {
	out := Macros{
		Calories: m.Calories * factor,
		Protein:  m.Protein * factor,
		Fat:      m.Fat * factor,
		Carbs:    m.Carbs * factor,
	}
	out.Sugar = scalePtr(m.Sugar, factor)
	out.Salt = scalePtr(m.Salt, factor)
	out.SaturatedFat = scalePtr(m.SaturatedFat, factor)
	return out
}

// Add sums two macro sets. An optional value is present in the result when it
// is present in either operand.
func (m Macros) Add(o Macros) Macros {
	out := Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Fat:      m.Fat + o.Fat,
		Carbs:    m.Carbs + o.Carbs,
	}
	out.Sugar = addPtr(m.Sugar, o.Sugar)
	out.Salt = addPtr(m.Salt, o.Salt)
	out.SaturatedFat = addPtr(m.SaturatedFat, o.SaturatedFat)
	return out
}

func scalePtr(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	s := *v * factor
	return &s
}

func addPtr(a, b *float64) *float64 {
	if a == nil && b == nil {
		return nil
	}
	var sum float64
	if a != nil {
		sum += *a
	}
	if b != nil {
		sum += *b
	}
	return &sum
}
