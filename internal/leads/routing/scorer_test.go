package routing

import "testing"

func TestScore_HotLead(t *testing.T) {
	in := ScoreInput{
		Name:             "Jane Roe",
		Email:            "jane@example.com",
		Phone:            "+15551234567",
		VehicleInterest:  "Tesla Model 3",
		Budget:           "$100k+",
		Timeline:         "immediately",
		PreferredContact: "phone",
		Source:           "referral",
	}

	// 30 budget + 25 timeline + 15 phone + 10 referral + 10 complete
	if got := Score(in); got != 90 {
		t.Fatalf("expected score 90, got %d", got)
	}
}

func TestScore_EmptyLead(t *testing.T) {
	// Contact and source buckets always contribute their floor of 5.
	if got := Score(ScoreInput{}); got != 10 {
		t.Fatalf("expected score 10, got %d", got)
	}
}

func TestScore_ClampedAt100(t *testing.T) {
	in := ScoreInput{
		Name:             "Max Out",
		Email:            "max@example.com",
		Phone:            "+15550000000",
		VehicleInterest:  "luxury suv",
		Budget:           "100k or 100000",
		Timeline:         "now, this week",
		PreferredContact: "phone",
		Source:           "referral",
	}

	got := Score(in)
	if got != 90 {
		t.Fatalf("expected score 90, got %d", got)
	}

	// The additive maximum is 30+25+15+10+10 = 90, so the clamp is a
	// guardrail; verify it holds for any input we can construct.
	if got > 100 {
		t.Fatalf("score exceeded 100: %d", got)
	}
}

func TestScore_BudgetBuckets(t *testing.T) {
	cases := []struct {
		budget string
		want   int
	}{
		{"around 100k", 30},
		{"$100000", 30},
		{"50k tops", 20},
		{"up to 30000", 15},
		{"20k", 10},
		{"not sure yet", 5},
	}

	for _, tc := range cases {
		// Isolate the budget bucket: floors add 10, nothing else matches.
		got := Score(ScoreInput{Budget: tc.budget}) - 10
		if got != tc.want {
			t.Fatalf("budget %q: expected %d points, got %d", tc.budget, tc.want, got)
		}
	}
}

func TestScore_TimelineBuckets(t *testing.T) {
	cases := []struct {
		timeline string
		want     int
	}{
		{"immediately", 25},
		{"right now", 25},
		{"this week", 25},
		{"next month", 15},
		{"2-3 months", 15},
		{"in a few years", 10},
		{"someday", 5},
	}

	for _, tc := range cases {
		got := Score(ScoreInput{Timeline: tc.timeline}) - 10
		if got != tc.want {
			t.Fatalf("timeline %q: expected %d points, got %d", tc.timeline, tc.want, got)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	in := ScoreInput{
		Name:             "Repeat",
		Email:            "r@example.com",
		Phone:            "+15551112222",
		VehicleInterest:  "suv",
		Budget:           "30k",
		Timeline:         "month",
		PreferredContact: "sms",
		Source:           "ad",
	}

	first := Score(in)
	for i := 0; i < 10; i++ {
		if got := Score(in); got != first {
			t.Fatalf("score changed between runs: %d then %d", first, got)
		}
	}
}
