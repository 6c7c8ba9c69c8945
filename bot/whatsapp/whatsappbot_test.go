package whatsapp

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CallService/bot/chat"
	"CallService/internal/config"
)

func newTestBot(appSecret string) *WhatsAppBot {
	return NewWhatsAppBot(config.WhatsAppConfig{
		AccessToken:   "token",
		VerifyToken:   "verify-me",
		AppSecret:     appSecret,
		PhoneNumberID: "12345",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWebhookVerification(t *testing.T) {
	bot := newTestBot("")

	r := httptest.NewRequest("GET",
		"/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=echo-this", nil)
	w := httptest.NewRecorder()
	bot.HandleWebhookVerification(w, r)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "echo-this", w.Body.String())

	r = httptest.NewRequest("GET",
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=echo-this", nil)
	w = httptest.NewRecorder()
	bot.HandleWebhookVerification(w, r)
	assert.Equal(t, 403, w.Code)
}

func TestWebhookSignature(t *testing.T) {
	bot := newTestBot("s3cret")
	body := []byte(`{"object":"whatsapp_business_account","entry":[]}`)

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(body)
	good := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	r := httptest.NewRequest("POST", "/webhook", bytes.NewReader(body))
	r.Header.Set("X-Hub-Signature-256", good)
	w := httptest.NewRecorder()
	bot.HandleWebhook(w, r)
	assert.Equal(t, 200, w.Code)

	for _, bad := range []string{"", "sha256=deadbeef", "md5=abc"} {
		r = httptest.NewRequest("POST", "/webhook", bytes.NewReader(body))
		if bad != "" {
			r.Header.Set("X-Hub-Signature-256", bad)
		}
		w = httptest.NewRecorder()
		bot.HandleWebhook(w, r)
		assert.Equal(t, 403, w.Code, bad)
	}
}

func TestToChatMessageText(t *testing.T) {
	inbound := &inboundMessage{
		From:      "5511888",
		ID:        "wamid.1",
		Timestamp: "1756400000",
		Type:      "text",
		Text: &struct {
			Body string `json:"body"`
		}{Body: "bom dia"},
	}

	msg := toChatMessage(inbound, "Maria")
	assert.Equal(t, "5511888", msg.Wuid)
	assert.Equal(t, "Maria", msg.PushName)
	assert.Equal(t, "text", msg.Kind)
	assert.Equal(t, "bom dia", msg.Text)
	assert.Equal(t, time.Unix(1756400000, 0), msg.Timestamp)
	assert.Nil(t, msg.ButtonReply)
	assert.Nil(t, msg.ListReply)
}

func TestToChatMessageButtonReply(t *testing.T) {
	inbound := &inboundMessage{
		From: "5511888", ID: "wamid.2", Type: "interactive",
		Interactive: &struct {
			Type        string `json:"type"`
			ButtonReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"button_reply,omitempty"`
			ListReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"list_reply,omitempty"`
		}{
			Type: "button_reply",
			ButtonReply: &struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			}{ID: chat.ButtonPayload(chat.ActionDecline, 42), Title: "Não aceitar"},
		},
	}

	msg := toChatMessage(inbound, "")
	require.NotNil(t, msg.ButtonReply)
	assert.Equal(t, chat.ActionDecline, msg.ButtonReply.Action)
	assert.Equal(t, int64(42), msg.ButtonReply.TransactionID)
	assert.Equal(t, "Não aceitar", msg.Text)
}

func TestToChatMessageListReply(t *testing.T) {
	inbound := &inboundMessage{
		From: "5511888", ID: "wamid.3", Type: "interactive",
		Interactive: &struct {
			Type        string `json:"type"`
			ButtonReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"button_reply,omitempty"`
			ListReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"list_reply,omitempty"`
		}{
			Type: "list_reply",
			ListReply: &struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			}{ID: chat.RowPayload(7, 12, 1, 50), Title: "SUPORTE"},
		},
	}

	msg := toChatMessage(inbound, "")
	require.NotNil(t, msg.ListReply)
	assert.Equal(t, int64(50), msg.ListReply.SectorID)
	assert.Equal(t, int64(12), msg.ListReply.TransactionID)
	assert.Equal(t, "SUPORTE", msg.Text)
}
