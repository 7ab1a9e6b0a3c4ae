package services

// EmailSender delivers a single HTML message. Implementations must be safe
// for concurrent use.
type EmailSender interface {
	Send(to string, subject string, htmlBody string) error
}
