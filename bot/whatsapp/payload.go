package whatsapp

import (
	"strconv"
	"time"

	"CallService/bot/chat"
)

// WebhookPayload represents the incoming webhook payload from WhatsApp
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Value struct {
				MessagingProduct string `json:"messaging_product"`
				Metadata         struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
					PhoneNumberID      string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
					WaID string `json:"wa_id"`
				} `json:"contacts"`
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
			Field string `json:"field"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply,omitempty"`
		ListReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"list_reply,omitempty"`
	} `json:"interactive,omitempty"`
}

// toChatMessage normalizes one Graph API message into the envelope the
// conversation flow consumes. pushName comes from the contacts block.
func toChatMessage(msg *inboundMessage, pushName string) *chat.Message {
	out := &chat.Message{
		ID:       msg.ID,
		Wuid:     msg.From,
		PushName: pushName,
		Kind:     msg.Type,
	}
	if secs, err := strconv.ParseInt(msg.Timestamp, 10, 64); err == nil {
		out.Timestamp = time.Unix(secs, 0)
	}

	if msg.Text != nil {
		out.Text = msg.Text.Body
	}

	if msg.Interactive != nil {
		if r := msg.Interactive.ButtonReply; r != nil {
			out.Text = r.Title
			if reply, ok := chat.ParseButtonReply(r.ID); ok {
				out.ButtonReply = reply
			}
		}
		if r := msg.Interactive.ListReply; r != nil {
			out.Text = r.Title
			if reply, ok := chat.ParseListReply(r.ID); ok {
				out.ListReply = reply
			}
		}
	}
	return out
}
