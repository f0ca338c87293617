package mail

import "errors"

var (
	// ErrTransport marks a delivery failure at the SMTP layer.
	ErrTransport = errors.New("mail transport failure")
	// ErrNotConfigured is returned when no SMTP transport has been set up.
	ErrNotConfigured = errors.New("mail delivery is not configured")
)
