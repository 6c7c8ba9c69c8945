package cache

import (
	"CallService/entity"
	"CallService/internal/lib/format"
	"CallService/internal/lib/sl"
	"context"
	"log/slog"
	"sync"
)

type StageStore interface {
	ChatStageByWuid(ctx context.Context, wuid string) (*entity.ChatStage, error)
	UpsertChatStage(ctx context.Context, stage *entity.ChatStage) error
}

// StageCache keeps the conversation cursor per chat. Removing an entry
// ends the hot conversation; the durable row stays for audit.
type StageCache struct {
	store StageStore
	log   *slog.Logger

	mu     sync.RWMutex
	byWuid map[string]*entity.ChatStage
}

func NewStageCache(store StageStore, log *slog.Logger) *StageCache {
	return &StageCache{
		store:  store,
		log:    log.With(sl.Module("cache.stage")),
		byWuid: make(map[string]*entity.ChatStage),
	}
}

// Find returns the chat stage, falling through to the store on a miss.
func (c *StageCache) Find(ctx context.Context, wuid string) (*entity.ChatStage, bool) {
	c.mu.RLock()
	stage, ok := c.byWuid[wuid]
	if ok {
		cp := *stage
		c.mu.RUnlock()
		return &cp, true
	}
	c.mu.RUnlock()

	fromStore, err := c.store.ChatStageByWuid(ctx, wuid)
	if err != nil {
		c.log.Error("store lookup failed", sl.Op("find"), slog.String("wuid", wuid), sl.Err(err))
		return nil, false
	}
	if fromStore == nil {
		return nil, false
	}

	c.mu.Lock()
	cp := *fromStore
	c.byWuid[wuid] = &cp
	c.mu.Unlock()

	result := *fromStore
	return &result, true
}

// Set moves the conversation cursor. The in-memory transition is
// synchronous; the durable upsert is fire-and-forget.
func (c *StageCache) Set(ctx context.Context, wuid string, stage entity.Stage, customerID int64) *entity.ChatStage {
	c.mu.Lock()
	entry, ok := c.byWuid[wuid]
	if !ok {
		entry = &entity.ChatStage{Wuid: wuid, CustomerID: customerID}
		c.byWuid[wuid] = entry
	}
	entry.Stage = stage
	if customerID != 0 {
		entry.CustomerID = customerID
	}
	entry.UpdatedAt = format.NowMs()
	cp := *entry
	c.mu.Unlock()

	go func() {
		if err := c.store.UpsertChatStage(context.Background(), &cp); err != nil {
			c.log.Error("write-through lost", sl.Op("set"),
				slog.String("entity", "chat_stage"),
				slog.String("key", wuid),
				sl.Err(err))
		}
	}()

	result := cp
	return &result
}

// Remove clears the hot conversation cursor.
func (c *StageCache) Remove(wuid string) (*entity.ChatStage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, ok := c.byWuid[wuid]
	if !ok {
		return nil, false
	}
	delete(c.byWuid, wuid)
	return removed, true
}
