package ports

import "context"

// Mailer sends a single HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Email is a rendered message.
type Email struct {
	Subject  string
	HTMLBody string
}

// EmailRenderer renders the transactional emails.
type EmailRenderer interface {
	ResetPassword(email, token string) (Email, error)
	NewAccount(username string) (Email, error)
	Test() (Email, error)
}
