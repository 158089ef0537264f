package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// VerificationEmail builds the job for an account verification link.
func VerificationEmail(to, displayName, link string) EmailJob {
	text := "Hi " + displayName + ",\n\n" +
		"Confirm your email address by opening the link below:\n\n" +
		link + "\n\n" +
		"If you did not create this account you can ignore this message.\n"
	return EmailJob{
		To:      to,
		Subject: "Verify your email address",
		Text:    text,
	}
}
