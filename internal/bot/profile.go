package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"biteiq-bot/internal/models"
)

const profileFields = 8

var (
	nonDigits  = regexp.MustCompile(`[^\d]`)
	nonDecimal = regexp.MustCompile(`[^\d.]`)
)

// ParseProfile reads the 8-field profile (name, age, gender, height cm, weight kg, activity,
// diet, goal kg) separated by commas or newlines. ok is false when the text is not a profile.
func ParseProfile(text string) (p models.Profile, ok bool) {
	var raw []string
	if strings.Contains(text, ",") {
		raw = strings.Split(text, ",")
	} else {
		raw = strings.Split(text, "\n")
	}

	parts := make([]string, 0, len(raw))
	for _, r := range raw {
		if s := strings.TrimSpace(r); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) != profileFields {
		return models.Profile{}, false
	}

	age, err := strconv.Atoi(nonDigits.ReplaceAllString(parts[1], ""))
	if err != nil {
		return models.Profile{}, false
	}
	height, err := parseDecimal(parts[3])
	if err != nil {
		return models.Profile{}, false
	}
	weight, err := parseDecimal(parts[4])
	if err != nil {
		return models.Profile{}, false
	}
	goal, err := parseDecimal(parts[7])
	if err != nil {
		return models.Profile{}, false
	}

	return models.Profile{
		Name:     parts[0],
		Age:      age,
		Gender:   parts[2],
		HeightCm: height,
		WeightKg: weight,
		Activity: strings.ToLower(parts[5]),
		Diet:     parts[6],
		GoalKg:   goal,
	}, true
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(nonDecimal.ReplaceAllString(s, ""), 64)
}

// ValidateProfile lists values outside plausible ranges. Empty means valid.
func ValidateProfile(p models.Profile) []string {
	var problems []string
	check := func(field string, v, lo, hi float64, unit string) {
		if v < lo || v > hi {
			problems = append(problems, fmt.Sprintf("%s must be %g-%g%s", field, lo, hi, unit))
		}
	}

	if len([]rune(p.Name)) > 64 {
		problems = append(problems, "name is too long")
	}
	check("age", float64(p.Age), 10, 120, "")
	check("height", p.HeightCm, 50, 250, " cm")
	check("weight", p.WeightKg, 30, 300, " kg")
	check("goal weight", p.GoalKg, 30, 300, " kg")
	return problems
}
