package notify

import "context"

// PDFContentType is the content type of every invoice attachment
const PDFContentType = "application/pdf"

// Attachment is a file sent along with a message
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Message is one outbound email
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer delivers a single message. Tests inject a stub that records calls
// without touching the network.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
