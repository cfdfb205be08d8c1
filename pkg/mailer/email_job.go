package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Text is the plain-text body; HTML is optional.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

// RegistrationEmail is the notification enqueued after an email signup.
func RegistrationEmail(to string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Welcome — your account was created",
		Text: "Your account has been registered with this email address. " +
			"If this wasn't you, you can re-register to replace the password at any time before the account is verified.",
	}
}
