package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"CallService/bot/chat"
)

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText sends a plain text message.
func (b *WhatsAppBot) SendText(ctx context.Context, wuid, text string, opts *chat.SendOptions) (string, error) {
	payload := map[string]interface{}{
		"type": "text",
		"text": map[string]interface{}{"preview_url": false, "body": text},
	}
	return b.send(ctx, wuid, payload, opts)
}

// SendList sends an interactive list message.
func (b *WhatsAppBot) SendList(ctx context.Context, wuid string, list chat.ListMessage, opts *chat.SendOptions) (string, error) {
	sections := make([]map[string]interface{}, 0, len(list.Sections))
	for _, section := range list.Sections {
		rows := make([]map[string]interface{}, 0, len(section.Rows))
		for _, row := range section.Rows {
			rows = append(rows, map[string]interface{}{
				"id":          row.RowID,
				"title":       row.Title,
				"description": row.Description,
			})
		}
		sections = append(sections, map[string]interface{}{
			"title": section.Title,
			"rows":  rows,
		})
	}

	interactive := map[string]interface{}{
		"type": "list",
		"header": map[string]interface{}{
			"type": "text",
			"text": list.Title,
		},
		"body": map[string]interface{}{"text": list.Description},
		"action": map[string]interface{}{
			"button":   list.ButtonText,
			"sections": sections,
		},
	}
	if list.FooterText != "" {
		interactive["footer"] = map[string]interface{}{"text": list.FooterText}
	}

	payload := map[string]interface{}{
		"type":        "interactive",
		"interactive": interactive,
	}
	return b.send(ctx, wuid, payload, opts)
}

// SendButtons sends an interactive reply-button message, headed by an
// image when one is set.
func (b *WhatsAppBot) SendButtons(ctx context.Context, wuid string, buttons chat.ButtonsMessage, opts *chat.SendOptions) (string, error) {
	replies := make([]map[string]interface{}, 0, len(buttons.Buttons))
	for _, button := range buttons.Buttons {
		replies = append(replies, map[string]interface{}{
			"type":  "reply",
			"reply": map[string]interface{}{"id": button.ID, "title": button.Text},
		})
	}

	body := buttons.ContentText
	if body == "" {
		body = buttons.Text
	}
	interactive := map[string]interface{}{
		"type":   "button",
		"body":   map[string]interface{}{"text": body},
		"action": map[string]interface{}{"buttons": replies},
	}
	if buttons.ImageURL != "" {
		interactive["header"] = map[string]interface{}{
			"type":  "image",
			"image": map[string]interface{}{"link": buttons.ImageURL},
		}
	} else if buttons.ContentText != "" && buttons.Text != "" {
		interactive["header"] = map[string]interface{}{
			"type": "text",
			"text": buttons.Text,
		}
	}
	if buttons.FooterText != "" {
		interactive["footer"] = map[string]interface{}{"text": buttons.FooterText}
	}

	payload := map[string]interface{}{
		"type":        "interactive",
		"interactive": interactive,
	}
	return b.send(ctx, wuid, payload, opts)
}

// SendImage sends an image by link.
func (b *WhatsAppBot) SendImage(ctx context.Context, wuid, url, caption string, opts *chat.SendOptions) (string, error) {
	payload := map[string]interface{}{
		"type":  "image",
		"image": map[string]interface{}{"link": url, "caption": caption},
	}
	return b.send(ctx, wuid, payload, opts)
}

// SendDocument uploads the file to the media endpoint and sends it by
// media id.
func (b *WhatsAppBot) SendDocument(ctx context.Context, wuid string, doc chat.Document, opts *chat.SendOptions) (string, error) {
	mediaID, err := b.uploadMedia(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("uploading document: %w", err)
	}

	payload := map[string]interface{}{
		"type": "document",
		"document": map[string]interface{}{
			"id":       mediaID,
			"filename": doc.FileName,
		},
	}
	return b.send(ctx, wuid, payload, opts)
}

// ProfilePictureURL is a no-op on the Graph API: the Cloud API does not
// expose customer avatars. Callers fall back to a text-only prompt.
func (b *WhatsAppBot) ProfilePictureURL(ctx context.Context, wuid string) (string, error) {
	return "", nil
}

// send posts one message to the Graph API, honoring the typing delay
// and the quoted-message context.
func (b *WhatsAppBot) send(ctx context.Context, wuid string, payload map[string]interface{}, opts *chat.SendOptions) (string, error) {
	delay := b.typing
	if opts != nil && opts.Delay > 0 {
		delay = opts.Delay
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	payload["messaging_product"] = "whatsapp"
	payload["recipient_type"] = "individual"
	payload["to"] = wuid
	if opts != nil && opts.QuotedID != "" {
		payload["context"] = map[string]interface{}{"message_id": opts.QuotedID}
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", graphAPIURL, b.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.accessToken)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Messages) == 0 {
		return "", nil
	}

	b.log.Debug("message sent", slog.String("wuid", wuid),
		slog.String("message_id", result.Messages[0].ID))
	return result.Messages[0].ID, nil
}

// uploadMedia pushes the file to the media endpoint and returns the
// media id to send by.
func (b *WhatsAppBot) uploadMedia(ctx context.Context, doc chat.Document) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", doc.FileName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return "", err
	}
	writer.WriteField("type", doc.MimeType)
	writer.WriteField("messaging_product", "whatsapp")
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/media", graphAPIURL, b.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+b.accessToken)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.ID, nil
}
