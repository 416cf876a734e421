package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	items := []Item{
		{Code: "energi_kcal", Amount: 120, Unit: "kcal"},
		{Code: "protein", Amount: 3.5, Unit: "g"},
		{Code: "", Amount: 99},
		{Code: "protein", Amount: 4, Unit: "g"},
	}

	l := Extract(items)
	assert.Len(t, l, 2)
	assert.Equal(t, 120.0, l["energi_kcal"])
	assert.Equal(t, 4.0, l["protein"], "last reported amount wins")
}

func TestExtract_Empty(t *testing.T) {
	l := Extract(nil)
	require.NotNil(t, l)
	assert.Empty(t, l)
}

func TestLookupMacros(t *testing.T) {
	l := Lookup{"energi_kcal": 250, "fett_totalt": 12, "sukkerarter": 30}
	m := l.Macros(DefaultCodes())

	assert.Equal(t, 250.0, m.Calories)
	assert.Equal(t, 12.0, m.Fat)
	assert.Zero(t, m.Protein)
	require.NotNil(t, m.Sugar)
	assert.Equal(t, 30.0, *m.Sugar)
	assert.Nil(t, m.Salt)
}

func TestMacrosScaleAndAdd(t *testing.T) {
	sugar := 2.0
	a := Macros{Calories: 100, Protein: 1, Sugar: &sugar}
	b := Macros{Calories: 50, Fat: 3}

	total := a.Scale(2).Add(b)
	assert.Equal(t, 250.0, total.Calories)
	assert.Equal(t, 2.0, total.Protein)
	assert.Equal(t, 3.0, total.Fat)
	require.NotNil(t, total.Sugar)
	assert.Equal(t, 4.0, *total.Sugar)
	assert.Nil(t, total.Salt)
	assert.Equal(t, 2.0, sugar, "operands are not mutated")
}
