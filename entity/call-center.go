package entity

import "time"

// Placeholders replaced in the call center presentation template.
const (
	PlaceholderBotName = "<botName>"
	PlaceholderDay     = "<day>"
)

type Operation struct {
	Open     int            `json:"open" bson:"open"`
	Closed   int            `json:"closed" bson:"closed"`
	Weekdays []time.Weekday `json:"weekdays" bson:"weekdays"`
	Desc     string         `json:"desc" bson:"desc"`
}

// CallCenter is the singleton descriptor of one connected bot instance.
type CallCenter struct {
	CallCenterID int64     `json:"call_center_id" bson:"call_center_id"`
	Presentation string    `json:"presentation" bson:"presentation"`
	BotName      string    `json:"bot_name" bson:"bot_name"`
	PhoneNumber  string    `json:"phone_number" bson:"phone_number"`
	URL          string    `json:"url" bson:"url"`
	CompanyName  string    `json:"company_name" bson:"company_name"`
	Operation    Operation `json:"operation" bson:"operation"`
	LoggedAt     int64     `json:"logged_at" bson:"logged_at"`
	CreatedAt    int64     `json:"created_at" bson:"created_at"`
}

// InOperation reports whether t falls inside the configured service
// window. An empty weekday list means every day.
func (c *CallCenter) InOperation(t time.Time) bool {
	if c.Operation.Open == 0 && c.Operation.Closed == 0 {
		return true
	}
	if len(c.Operation.Weekdays) > 0 {
		found := false
		for _, wd := range c.Operation.Weekdays {
			if wd == t.Weekday() {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return t.Hour() >= c.Operation.Open && t.Hour() < c.Operation.Closed
}
