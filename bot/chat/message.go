package chat

import (
	"strconv"
	"strings"
	"time"
)

// Message is the normalized inbound envelope from the messaging
// transport. Exactly one of Text, ButtonReply or ListReply carries the
// payload; media arrives with Text empty and Kind set.
type Message struct {
	ID          string       `json:"id"`
	Wuid        string       `json:"wuid"`
	PushName    string       `json:"push_name"`
	FromSelf    bool         `json:"from_self"`
	Timestamp   time.Time    `json:"timestamp"`
	Kind        string       `json:"kind"`
	Text        string       `json:"text"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
	ListReply   *ListReply   `json:"list_reply,omitempty"`
}

// ButtonReply is an attendant's press on a service-request prompt.
type ButtonReply struct {
	Action        string `json:"action"`
	TransactionID int64  `json:"transaction_id"`
}

// ListReply is a customer's pick from the sector list.
type ListReply struct {
	CustomerID    int64 `json:"customer_id"`
	TransactionID int64 `json:"transaction_id"`
	CallCenterID  int64 `json:"call_center_id"`
	SectorID      int64 `json:"sector_id"`
}

// Button callback actions embedded in prompt payloads.
const (
	ActionAccept  = "accept"
	ActionDecline = "not_accept"
)

// ButtonPayload encodes an accept/decline button id.
func ButtonPayload(action string, transactionID int64) string {
	return action + "-" + strconv.FormatInt(transactionID, 10)
}

// ParseButtonReply decodes "<action>-<transactionId>". The action may
// itself contain a dash ("not_accept"), so only the last segment is the
// transaction id.
func ParseButtonReply(payload string) (*ButtonReply, bool) {
	i := strings.LastIndex(payload, "-")
	if i <= 0 {
		return nil, false
	}
	id, err := strconv.ParseInt(payload[i+1:], 10, 64)
	if err != nil {
		return nil, false
	}
	return &ButtonReply{Action: payload[:i], TransactionID: id}, true
}

// RowPayload encodes a sector list row id:
// "<customerId>-<transactionId>-<callCenterId>-<sectorId>".
func RowPayload(customerID, transactionID, callCenterID, sectorID int64) string {
	parts := []string{
		strconv.FormatInt(customerID, 10),
		strconv.FormatInt(transactionID, 10),
		strconv.FormatInt(callCenterID, 10),
		strconv.FormatInt(sectorID, 10),
	}
	return strings.Join(parts, "-")
}

// ParseListReply decodes a sector list row id.
func ParseListReply(payload string) (*ListReply, bool) {
	parts := strings.Split(payload, "-")
	if len(parts) != 4 {
		return nil, false
	}
	ids := make([]int64, 4)
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, false
		}
		ids[i] = v
	}
	return &ListReply{
		CustomerID:    ids[0],
		TransactionID: ids[1],
		CallCenterID:  ids[2],
		SectorID:      ids[3],
	}, true
}

// NormalizedText returns the trimmed, lower-cased message text for
// token comparison ("fim", "-1").
func (m *Message) NormalizedText() string {
	return strings.ToLower(strings.TrimSpace(m.Text))
}

// IsNumeric reports whether the whole text parses as a number. Such a
// reply is not a valid name.
func (m *Message) IsNumeric() bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(m.Text), 64)
	return err == nil
}
