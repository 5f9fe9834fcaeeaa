package routing

import "strings"

// specialtyRule maps a vehicle-interest keyword to a dealer specialty.
// Rules are checked in order and every match is collected, so an interest
// like "electric bmw" yields both electric and luxury.
type specialtyRule struct {
	keyword   string
	specialty string
}

var specialtyRules = []specialtyRule{
	{keyword: "sedan", specialty: "sedan"},
	{keyword: "suv", specialty: "suv"},
	{keyword: "truck", specialty: "truck"},
	{keyword: "luxury", specialty: "luxury"},
	{keyword: "electric", specialty: "electric"},
	{keyword: "ev", specialty: "electric"},
	{keyword: "tesla", specialty: "electric"},
	{keyword: "bmw", specialty: "luxury"},
	{keyword: "mercedes", specialty: "luxury"},
	{keyword: "audi", specialty: "luxury"},
}

// MatchSpecialties derives dealer specialties from free-text vehicle
// interest. Matching is case-insensitive substring containment; the result
// is deduplicated and ordered by rule position, empty when nothing matches.
func MatchSpecialties(vehicleInterest string) []string {
	if vehicleInterest == "" {
		return nil
	}

	lowered := strings.ToLower(vehicleInterest)
	seen := make(map[string]bool)
	var matched []string
	for _, rule := range specialtyRules {
		if !strings.Contains(lowered, rule.keyword) {
			continue
		}
		if seen[rule.specialty] {
			continue
		}
		seen[rule.specialty] = true
		matched = append(matched, rule.specialty)
	}
	return matched
}
