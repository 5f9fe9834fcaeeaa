package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type welcomeEmailData struct {
	baseEmailData
	Name string
}

type leadReceivedEmailData struct {
	baseEmailData
	LeadName        string
	VehicleInterest string
}

type leadAssignedEmailData struct {
	baseEmailData
	DealerName      string
	LeadName        string
	VehicleInterest string
	Score           int
}

type appointmentConfirmationEmailData struct {
	baseEmailData
	CustomerName string
	VehicleLabel string
	DealerName   string
	ScheduledAt  string
}

type followUpEmailData struct {
	baseEmailData
	LeadName string
	Message  string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
