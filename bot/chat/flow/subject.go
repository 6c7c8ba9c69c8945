package flow

import (
	"CallService/bot/chat"
	"encoding/json"
	"fmt"
)

// appendSubject appends the raw envelope to the JSON-serialized subject
// log, preserving arrival order. The envelope is stored whole so the
// intake survives non-text content.
func appendSubject(subject string, msg *chat.Message) (string, error) {
	entries, err := decodeSubject(subject)
	if err != nil {
		return "", err
	}
	entries = append(entries, *msg)
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encoding subject log: %w", err)
	}
	return string(raw), nil
}

// decodeSubject parses the subject log; an empty subject is an empty log.
func decodeSubject(subject string) ([]chat.Message, error) {
	if subject == "" {
		return nil, nil
	}
	var entries []chat.Message
	if err := json.Unmarshal([]byte(subject), &entries); err != nil {
		return nil, fmt.Errorf("decoding subject log: %w", err)
	}
	return entries, nil
}
