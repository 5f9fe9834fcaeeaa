package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"carforsales_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers mail over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a sender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   "Welcome",
			Heading: "Welcome aboard",
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) SendLeadReceivedEmail(ctx context.Context, toEmail, leadName, vehicleInterest string) error {
	content, err := renderEmailTemplate("lead_received.html", leadReceivedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Inquiry received",
			Heading: "We got your inquiry",
		},
		LeadName:        leadName,
		VehicleInterest: vehicleInterest,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLeadReceived, content)
}

func (s *SMTPSender) SendLeadAssignedEmail(ctx context.Context, toEmail, dealerName, leadName, vehicleInterest string, score int) error {
	content, err := renderEmailTemplate("lead_assigned.html", leadAssignedEmailData{
		baseEmailData: baseEmailData{
			Title:   "New lead assigned",
			Heading: "New lead assigned",
		},
		DealerName:      dealerName,
		LeadName:        leadName,
		VehicleInterest: vehicleInterest,
		Score:           score,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectLeadAssignedFmt, leadName), content)
}

func (s *SMTPSender) SendAppointmentConfirmationEmail(ctx context.Context, toEmail, customerName, vehicleLabel, dealerName, scheduledAt string) error {
	content, err := renderEmailTemplate("appointment_confirmation.html", appointmentConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Test drive booked",
			Heading: "Test drive booked",
		},
		CustomerName: customerName,
		VehicleLabel: vehicleLabel,
		DealerName:   dealerName,
		ScheduledAt:  scheduledAt,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentConfirmation, content)
}

func (s *SMTPSender) SendFollowUpEmail(ctx context.Context, toEmail, leadName, message string) error {
	content, err := renderEmailTemplate("follow_up.html", followUpEmailData{
		baseEmailData: baseEmailData{
			Title:   "Following up",
			Heading: "Following up",
		},
		LeadName: leadName,
		Message:  message,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectFollowUp, content)
}

var _ Sender = (*SMTPSender)(nil)
var _ Sender = NoopSender{}
