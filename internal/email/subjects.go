package email

const (
	subjectWelcome                 = "Welcome to Car For Sales"
	subjectLeadReceived            = "We received your inquiry"
	subjectLeadAssignedFmt         = "New lead: %s"
	subjectAppointmentConfirmation = "Your test drive is booked"
	subjectFollowUp                = "Still looking for your next car?"
)
