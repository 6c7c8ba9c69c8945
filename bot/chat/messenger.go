package chat

import (
	"context"
	"time"
)

// SendOptions tune one outbound send. Delay simulates typing before the
// message goes out; it is a UX device, not a correctness mechanism, and
// transports may skip it.
type SendOptions struct {
	Delay    time.Duration
	QuotedID string
}

// Row is one selectable item of a list message.
type Row struct {
	Title       string
	Description string
	RowID       string
}

// Section groups list rows under a caption.
type Section struct {
	Title string
	Rows  []Row
}

// ListMessage prompts the recipient to pick one row.
type ListMessage struct {
	Title       string
	Description string
	ButtonText  string
	FooterText  string
	Sections    []Section
}

// Button is one pressable option of a ButtonsMessage.
type Button struct {
	ID   string
	Text string
}

// ButtonsMessage prompts the recipient with inline buttons, optionally
// headed by an image.
type ButtonsMessage struct {
	Text        string
	ContentText string
	FooterText  string
	ImageURL    string
	Buttons     []Button
}

// Document is a file attachment.
type Document struct {
	FileName string
	MimeType string
	Data     []byte
}

// Messenger is the opaque send capability of the messaging transport.
// Implementations deliver to a wuid and return the transport message id.
type Messenger interface {
	SendText(ctx context.Context, wuid, text string, opts *SendOptions) (string, error)
	SendList(ctx context.Context, wuid string, list ListMessage, opts *SendOptions) (string, error)
	SendButtons(ctx context.Context, wuid string, buttons ButtonsMessage, opts *SendOptions) (string, error)
	SendImage(ctx context.Context, wuid, url, caption string, opts *SendOptions) (string, error)
	SendDocument(ctx context.Context, wuid string, doc Document, opts *SendOptions) (string, error)
	ProfilePictureURL(ctx context.Context, wuid string) (string, error)
}
