package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(sugar, fat, calories, protein, carbs float64) Lookup {
	c := DefaultCodes()
	return Lookup{c.Sugar: sugar, c.Fat: fat, c.Calories: calories, c.Protein: protein, c.Carbs: carbs}
}

func TestClassify(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name string
		in   Lookup
		want []string
	}{
		{"empty", Lookup{}, []string{}},
		{"nil", nil, []string{}},
		{"healthy", lookup(5, 5, 150, 5, 20), []string{LabelHealthy}},
		{"high sugar only", lookup(20, 5, 150, 5, 20), []string{LabelHighSugar, LabelUnhealthy}},
		{"high fat and calorie", lookup(5, 30, 550, 5, 40), []string{LabelHighFat, LabelHighCalorie, LabelUnhealthy}},
		{"high protein is not unhealthy", lookup(1, 5, 150, 25, 10), []string{LabelHighProtein}},
		{"low calorie blocks healthy", lookup(1, 0.5, 30, 1, 10), []string{LabelLowCalorie}},
		{"no carbs", lookup(0, 5, 150, 10, 0.5), []string{LabelNoCarbs}},
		{"low carb band", lookup(2, 5, 150, 10, 3), []string{LabelLowCarb}},
		{"carbs at low carb bound", lookup(2, 5, 150, 10, 5), []string{LabelHealthy}},
		{"thresholds are strict", lookup(15, 17.5, 300, 20, 10), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.Classify(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_MissingNutrientsDefaultToZero(t *testing.T) {
	c := DefaultCodes()
	in := Lookup{c.Sugar: 20, c.Fat: 5, c.Calories: 100, c.Protein: 2}

	got := DefaultRules().Classify(in)
	assert.Contains(t, got, LabelHighSugar)
	assert.Contains(t, got, LabelUnhealthy)
	assert.NotContains(t, got, LabelHealthy)
	assert.Contains(t, got, LabelNoCarbs, "unreported carbs are read as 0")
}

func TestClassify_RequireReported(t *testing.T) {
	rules := DefaultRules()
	rules.RequireReported = true
	c := rules.Codes

	got := rules.Classify(Lookup{c.Sugar: 20})
	assert.Equal(t, []string{LabelHighSugar, LabelUnhealthy}, got)

	got = rules.Classify(Lookup{c.Calories: 150, c.Fat: 5})
	assert.Empty(t, got, "healthy needs calories, fat and sugar")
}

func TestClassify_LowCarbDisabled(t *testing.T) {
	rules := DefaultRules()
	rules.LowCarbEnabled = false

	got := rules.Classify(lookup(2, 5, 150, 10, 3))
	assert.Equal(t, []string{LabelHealthy}, got)
	assert.NotContains(t, rules.Vocabulary(), LabelLowCarb)
}

func TestClassify_Deterministic(t *testing.T) {
	rules := DefaultRules()
	in := lookup(20, 30, 400, 25, 0)
	first := rules.Classify(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, rules.Classify(in))
	}
}

func TestMissingCodes(t *testing.T) {
	rules := DefaultRules()
	c := rules.Codes

	assert.Nil(t, rules.MissingCodes(Lookup{}))
	assert.Equal(t, []string{c.Carbs}, rules.MissingCodes(Lookup{c.Sugar: 1, c.Fat: 1, c.Calories: 1, c.Protein: 1}))
}
