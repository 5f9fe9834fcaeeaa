package email

import (
	"strings"
	"testing"
)

func TestRenderLeadAssignedTemplate(t *testing.T) {
	out, err := renderEmailTemplate("lead_assigned.html", leadAssignedEmailData{
		baseEmailData: baseEmailData{
			Title:   "New lead assigned",
			Heading: "New lead assigned",
		},
		DealerName:      "Prime Autos",
		LeadName:        "Dana Smith",
		VehicleInterest: "Tesla Model 3",
		Score:           85,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{"Prime Autos", "Dana Smith", "Tesla Model 3", "85/100"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	out, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{Title: "Welcome", Heading: "Welcome"},
		Name:          `<script>alert("x")</script>`,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatal("template output must escape HTML in user data")
	}
}

func TestRenderSkipsCTAWhenUnset(t *testing.T) {
	out, err := renderEmailTemplate("follow_up.html", followUpEmailData{
		baseEmailData: baseEmailData{Title: "Following up", Heading: "Following up"},
		LeadName:      "Dana",
		Message:       "Those SUVs you asked about are back in stock.",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(out, "href=") {
		t.Fatal("no CTA link expected when CTAURL is empty")
	}
}
