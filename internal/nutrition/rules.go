package nutrition

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "LABEL_RULES_"

// LoadRules returns DefaultRules overridden by the YAML file at path (when path
// is non-empty) and then by LABEL_RULES_* environment variables, e.g.
// LABEL_RULES_HIGH_SUGAR=12 or LABEL_RULES_CODES_SUGAR=sugars.
func LoadRules(path string) (Rules, error) {
	var content []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Rules{}, fmt.Errorf("read label rules %s: %w", path, err)
		}
		content = b
	}
	return ParseRules(content)
}

// ParseRules applies YAML content and environment overrides on top of
// DefaultRules. Empty content only applies the environment.
func ParseRules(content []byte) (Rules, error) {
	k := koanf.New(".")
	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Rules{}, fmt.Errorf("parse label rules: %w", err)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Rules{}, fmt.Errorf("load label rules env: %w", err)
	}

	rules := DefaultRules()
	if err := k.Unmarshal("", &rules); err != nil {
		return Rules{}, fmt.Errorf("decode label rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// envKey maps LABEL_RULES_HIGH_SUGAR to high_sugar and LABEL_RULES_CODES_SUGAR
// to codes.sugar.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "codes_"); ok {
		return "codes." + rest
	}
	return key
}

func (r Rules) Validate() error {
	var errs []error
	thresholds := []struct {
		name  string
		value float64
	}{
		{"high_sugar", r.HighSugar},
		{"high_fat", r.HighFat},
		{"high_calorie", r.HighCalorie},
		{"high_protein", r.HighProtein},
		{"low_calorie", r.LowCalorie},
		{"no_carbs", r.NoCarbs},
		{"low_carb", r.LowCarb},
		{"healthy_max_calories", r.HealthyMaxCalories},
		{"healthy_max_fat", r.HealthyMaxFat},
		{"healthy_max_sugar", r.HealthyMaxSugar},
	}
	for _, t := range thresholds {
		if t.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", t.name))
		}
	}
	if r.LowCarbEnabled && r.LowCarb < r.NoCarbs {
		errs = append(errs, errors.New("low_carb must be at least no_carbs"))
	}
	if r.Codes.Calories == "" || r.Codes.Protein == "" || r.Codes.Fat == "" || r.Codes.Carbs == "" || r.Codes.Sugar == "" {
		errs = append(errs, errors.New("nutrient codes must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid label rules: %w", errors.Join(errs...))
	}
	return nil
}
