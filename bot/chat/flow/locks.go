package flow

import "sync"

// perChatLocks serializes message handling per chat so a customer's
// messages are processed in arrival order while unrelated chats run
// concurrently.
type perChatLocks struct {
	mu    sync.Mutex
	chats map[string]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

func (p *perChatLocks) lock(wuid string) func() {
	p.mu.Lock()
	if p.chats == nil {
		p.chats = make(map[string]*chatLock)
	}
	l, ok := p.chats[wuid]
	if !ok {
		l = &chatLock{}
		p.chats[wuid] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.chats, wuid)
		}
		p.mu.Unlock()
	}
}
