package mailer

import "context"

// Attachment is a generated document attached to an outgoing email.
type Attachment struct {
	Filename string
	Content  []byte
}

// Email is a composed notification ready for delivery. Attachment is nil
// when the event has no document; that is the valid degenerate case, not an
// error.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	// Attachment, when present, is sent as application/pdf
	Attachment *Attachment
}

// Sender delivers a composed email over some mail transport. Each Send is
// independent; implementations may open a fresh session per call. Failures
// are reported to the caller and stay scoped to the record being dispatched.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
