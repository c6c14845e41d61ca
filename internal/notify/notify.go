package notify

import "context"

// Message is a single outbound email.
type Message struct {
	From    string
	To      string
	BCC     string
	Subject string
	HTML    string
}

// Sender delivers notification emails.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
