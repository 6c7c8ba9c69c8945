package chat

// Filter drops envelopes the manager should never see: the bot's own
// messages, excluded senders and excluded message kinds (status
// broadcasts, reactions, protocol notices).
type Filter struct {
	excludeWuids map[string]bool
	excludeKinds map[string]bool
}

func NewFilter(wuids, kinds []string) *Filter {
	f := &Filter{
		excludeWuids: make(map[string]bool, len(wuids)),
		excludeKinds: make(map[string]bool, len(kinds)),
	}
	for _, w := range wuids {
		f.excludeWuids[w] = true
	}
	for _, k := range kinds {
		f.excludeKinds[k] = true
	}
	return f
}

// Allow reports whether the message should reach the manager.
func (f *Filter) Allow(m *Message) bool {
	if m.FromSelf {
		return false
	}
	if f.excludeWuids[m.Wuid] {
		return false
	}
	if f.excludeKinds[m.Kind] {
		return false
	}
	return true
}
