// Package routing contains the lead scoring and dealer routing core.
// It is pure domain logic: persistence is abstracted behind small
// consumer-driven interfaces so the package stays testable in isolation.
package routing

import "strings"

// ScoreInput carries the lead fields the scorer reads.
type ScoreInput struct {
	Name             string
	Email            string
	Phone            string
	VehicleInterest  string
	Budget           string
	Timeline         string
	PreferredContact string
	Source           string
}

// keywordRule awards points when any of its keywords appears in the
// (lowercased) field text. Rules are evaluated in order; the first
// match wins within a bucket.
type keywordRule struct {
	keywords []string
	points   int
}

var budgetRules = []keywordRule{
	{keywords: []string{"100k", "100000"}, points: 30},
	{keywords: []string{"50k", "50000"}, points: 20},
	{keywords: []string{"30k", "30000"}, points: 15},
	{keywords: []string{"20k", "20000"}, points: 10},
}

// timelineRules are ordered so "2-3 months" hits the month rule, not the
// "2-3" rule.
var timelineRules = []keywordRule{
	{keywords: []string{"immediate", "now", "week"}, points: 25},
	{keywords: []string{"month"}, points: 15},
	{keywords: []string{"2-3", "few"}, points: 10},
}

var contactPoints = map[string]int{
	"phone": 15,
	"sms":   10,
}

var sourcePoints = map[string]int{
	"referral": 10,
	"ad":       8,
}

const (
	budgetFloorPoints   = 5
	timelineFloorPoints = 5
	contactFloorPoints  = 5
	sourceFloorPoints   = 5
	completeBonus       = 10
	maxScore            = 100
)

// Score derives the lead quality score, 0 to 100. Higher budgets, shorter
// timelines, phone contact, referral sources and complete contact details
// all raise the score. Absent budget or timeline contributes nothing;
// contact and source buckets always contribute their floor.
func Score(in ScoreInput) int {
	score := 0

	if in.Budget != "" {
		score += matchRules(budgetRules, in.Budget, budgetFloorPoints)
	}

	if in.Timeline != "" {
		score += matchRules(timelineRules, in.Timeline, timelineFloorPoints)
	}

	if pts, ok := contactPoints[in.PreferredContact]; ok {
		score += pts
	} else {
		score += contactFloorPoints
	}

	if pts, ok := sourcePoints[in.Source]; ok {
		score += pts
	} else {
		score += sourceFloorPoints
	}

	if in.Name != "" && in.Email != "" && in.Phone != "" && in.VehicleInterest != "" {
		score += completeBonus
	}

	if score > maxScore {
		return maxScore
	}
	return score
}

func matchRules(rules []keywordRule, text string, floor int) int {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.points
			}
		}
	}
	return floor
}
