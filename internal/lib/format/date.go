package format

import "time"

// TimeDay returns the greeting matching the hour of day.
func TimeDay(hour int) string {
	switch {
	case hour >= 2 && hour < 12:
		return "Bom dia"
	case hour >= 12 && hour < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}

// Date renders a millisecond timestamp the way it appears in chat
// messages to customers and attendants.
func Date(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

// NowMs is the clock used for entity timestamps. Overridable in tests.
var NowMs = func() int64 { return time.Now().UnixMilli() }
