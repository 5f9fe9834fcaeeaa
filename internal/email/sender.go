// Package email renders and delivers transactional mail.
package email

import "context"

// Sender delivers the transactional emails the platform sends.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
	SendLeadReceivedEmail(ctx context.Context, toEmail, leadName, vehicleInterest string) error
	SendLeadAssignedEmail(ctx context.Context, toEmail, dealerName, leadName, vehicleInterest string, score int) error
	SendAppointmentConfirmationEmail(ctx context.Context, toEmail, customerName, vehicleLabel, dealerName, scheduledAt string) error
	SendFollowUpEmail(ctx context.Context, toEmail, leadName, message string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(context.Context, string, string) error { return nil }
func (NoopSender) SendLeadReceivedEmail(context.Context, string, string, string) error {
	return nil
}
func (NoopSender) SendLeadAssignedEmail(context.Context, string, string, string, string, int) error {
	return nil
}
func (NoopSender) SendAppointmentConfirmationEmail(context.Context, string, string, string, string, string) error {
	return nil
}
func (NoopSender) SendFollowUpEmail(context.Context, string, string, string) error { return nil }
