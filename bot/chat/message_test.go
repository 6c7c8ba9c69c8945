package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonPayloadRoundTrip(t *testing.T) {
	reply, ok := ParseButtonReply(ButtonPayload(ActionAccept, 42))
	require.True(t, ok)
	assert.Equal(t, ActionAccept, reply.Action)
	assert.Equal(t, int64(42), reply.TransactionID)

	// The decline action carries a dash of its own.
	reply, ok = ParseButtonReply(ButtonPayload(ActionDecline, 42))
	require.True(t, ok)
	assert.Equal(t, ActionDecline, reply.Action)
	assert.Equal(t, int64(42), reply.TransactionID)
}

func TestParseButtonReplyRejectsGarbage(t *testing.T) {
	for _, payload := range []string{"", "accept", "-42", "accept-abc"} {
		_, ok := ParseButtonReply(payload)
		assert.False(t, ok, payload)
	}
}

func TestRowPayloadRoundTrip(t *testing.T) {
	reply, ok := ParseListReply(RowPayload(7, 12, 1, 50))
	require.True(t, ok)
	assert.Equal(t, &ListReply{CustomerID: 7, TransactionID: 12, CallCenterID: 1, SectorID: 50}, reply)
}

func TestParseListReplyRejectsGarbage(t *testing.T) {
	for _, payload := range []string{"", "0", "1-2-3", "1-2-3-x", "1-2-3-4-5"} {
		_, ok := ParseListReply(payload)
		assert.False(t, ok, payload)
	}
}

func TestNormalizedText(t *testing.T) {
	m := &Message{Text: "  FIM  "}
	assert.Equal(t, "fim", m.NormalizedText())
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, (&Message{Text: "12345"}).IsNumeric())
	assert.True(t, (&Message{Text: " 3.14 "}).IsNumeric())
	assert.False(t, (&Message{Text: "Maria"}).IsNumeric())
	assert.False(t, (&Message{Text: "Maria 2"}).IsNumeric())
}

func TestFilter(t *testing.T) {
	f := NewFilter([]string{"blocked@w"}, []string{"reaction"})

	assert.True(t, f.Allow(&Message{Wuid: "a@w", Kind: "text"}))
	assert.False(t, f.Allow(&Message{Wuid: "a@w", Kind: "text", FromSelf: true}))
	assert.False(t, f.Allow(&Message{Wuid: "blocked@w", Kind: "text"}))
	assert.False(t, f.Allow(&Message{Wuid: "a@w", Kind: "reaction"}))
}
