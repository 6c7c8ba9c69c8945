package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"CallService/bot/chat"
	"CallService/internal/config"
	"CallService/internal/lib/sl"
)

const graphAPIURL = "https://graph.facebook.com/v21.0"

// Handler consumes normalized inbound messages.
type Handler interface {
	HandleMessage(ctx context.Context, msg *chat.Message) error
}

// WhatsAppBot is the Graph API transport: it receives webhook
// deliveries and implements chat.Messenger for outbound sends.
type WhatsAppBot struct {
	log           *slog.Logger
	accessToken   string
	verifyToken   string
	appSecret     string
	phoneNumberID string
	typing        time.Duration
	handler       Handler
	client        *http.Client
}

func NewWhatsAppBot(cfg config.WhatsAppConfig, log *slog.Logger) *WhatsAppBot {
	return &WhatsAppBot{
		log:           log.With(sl.Module("whatsappbot")),
		accessToken:   cfg.AccessToken,
		verifyToken:   cfg.VerifyToken,
		appSecret:     cfg.AppSecret,
		phoneNumberID: cfg.PhoneNumberID,
		typing:        time.Duration(cfg.TypingMs) * time.Millisecond,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// SetHandler wires the inbound message consumer.
func (b *WhatsAppBot) SetHandler(handler Handler) {
	b.handler = handler
}

// HandleWebhookVerification handles the GET request for webhook verification
func (b *WhatsAppBot) HandleWebhookVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == b.verifyToken {
		b.log.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	b.log.Warn("webhook verification failed",
		slog.String("mode", mode),
		slog.Bool("token_match", token == b.verifyToken),
	)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleWebhook handles incoming webhook POST requests
func (b *WhatsAppBot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		b.log.Error("failed to read request body", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Verify signature if app secret is configured
	if b.appSecret != "" {
		signature := r.Header.Get("X-Hub-Signature-256")
		if !b.verifySignature(body, signature) {
			b.log.Warn("invalid webhook signature")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		b.log.Error("failed to parse webhook payload", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Always respond with 200 OK to acknowledge receipt
	w.WriteHeader(http.StatusOK)

	// Process messages asynchronously; per-chat ordering is enforced
	// downstream.
	go b.processPayload(payload)
}

func (b *WhatsAppBot) processPayload(payload WebhookPayload) {
	if payload.Object != "whatsapp_business_account" || b.handler == nil {
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}

			names := make(map[string]string, len(change.Value.Contacts))
			for _, contact := range change.Value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}

			for i := range change.Value.Messages {
				inbound := &change.Value.Messages[i]
				msg := toChatMessage(inbound, names[inbound.From])

				if err := b.handler.HandleMessage(context.Background(), msg); err != nil {
					b.log.Error("message handling failed",
						slog.String("wuid", msg.Wuid),
						slog.String("message_id", msg.ID),
						sl.Err(err),
					)
				}
			}
		}
	}
}

// verifySignature verifies the X-Hub-Signature-256 header
func (b *WhatsAppBot) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	// Signature format: "sha256=<hex_signature>"
	if len(signature) < 8 || signature[:7] != "sha256=" {
		return false
	}

	expectedSig := signature[7:]
	mac := hmac.New(sha256.New, []byte(b.appSecret))
	mac.Write(body)
	actualSig := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expectedSig), []byte(actualSig))
}
