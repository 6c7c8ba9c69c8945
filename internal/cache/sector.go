package cache

import (
	"CallService/entity"
	"CallService/internal/lib/sl"
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

type SectorStore interface {
	Sectors(ctx context.Context) ([]entity.Sector, error)
}

// SectorCache holds the small, slow-changing sector set, refreshed
// wholesale on a fixed interval.
type SectorCache struct {
	store SectorStore
	log   *slog.Logger

	mu   sync.RWMutex
	byID map[int64]*entity.Sector

	done chan struct{}
	once sync.Once
}

func NewSectorCache(store SectorStore, refresh time.Duration, log *slog.Logger) *SectorCache {
	c := &SectorCache{
		store: store,
		log:   log.With(sl.Module("cache.sector")),
		byID:  make(map[int64]*entity.Sector),
		done:  make(chan struct{}),
	}
	if refresh > 0 {
		go c.observe(refresh)
	}
	return c
}

func (c *SectorCache) observe(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.Refresh(context.Background()); err != nil {
				c.log.Error("snapshot refresh failed", sl.Err(err))
			}
		case <-c.done:
			return
		}
	}
}

func (c *SectorCache) Refresh(ctx context.Context) error {
	sectors, err := c.store.Sectors(ctx)
	if err != nil {
		return err
	}

	byID := make(map[int64]*entity.Sector, len(sectors))
	for i := range sectors {
		s := sectors[i]
		byID[s.SectorID] = &s
	}

	c.mu.Lock()
	c.byID = byID
	c.mu.Unlock()
	return nil
}

func (c *SectorCache) Stop() {
	c.once.Do(func() { close(c.done) })
}

// All returns the sector set ordered by id, loading it from the store
// when the snapshot is still empty.
func (c *SectorCache) All(ctx context.Context) []entity.Sector {
	c.mu.RLock()
	empty := len(c.byID) == 0
	c.mu.RUnlock()

	if empty {
		if err := c.Refresh(ctx); err != nil {
			c.log.Error("store lookup failed", sl.Op("find_many"), sl.Err(err))
			return nil
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	sectors := make([]entity.Sector, 0, len(c.byID))
	for _, s := range c.byID {
		sectors = append(sectors, *s)
	}
	sort.Slice(sectors, func(i, j int) bool { return sectors[i].SectorID < sectors[j].SectorID })
	return sectors
}

// ByID resolves a sector by id.
func (c *SectorCache) ByID(ctx context.Context, sectorID int64) (*entity.Sector, bool) {
	for _, s := range c.All(ctx) {
		if s.SectorID == sectorID {
			cp := s
			return &cp, true
		}
	}
	return nil, false
}

// ByName resolves a sector by the name a user typed, case-insensitively.
func (c *SectorCache) ByName(ctx context.Context, name string) (*entity.Sector, bool) {
	for _, s := range c.All(ctx) {
		if s.Matches(name) {
			cp := s
			return &cp, true
		}
	}
	return nil, false
}
