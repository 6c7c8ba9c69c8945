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

type AttendantStore interface {
	Attendants(ctx context.Context) ([]entity.Attendant, error)
	AttendantByWuid(ctx context.Context, wuid string) (*entity.Attendant, error)
	AttendantByID(ctx context.Context, attendantID int64) (*entity.Attendant, error)
}

// AttendantCache keeps a read-mostly snapshot of the attendant roster,
// wholesale-replaced on a fixed interval. Attendants are administered
// outside this process, so pull-based coherence is enough.
type AttendantCache struct {
	store AttendantStore
	log   *slog.Logger

	mu       sync.RWMutex
	byWuid   map[string]*entity.Attendant
	wuidByID map[int64]string

	done chan struct{}
	once sync.Once
}

func NewAttendantCache(store AttendantStore, refresh time.Duration, log *slog.Logger) *AttendantCache {
	c := &AttendantCache{
		store:    store,
		log:      log.With(sl.Module("cache.attendant")),
		byWuid:   make(map[string]*entity.Attendant),
		wuidByID: make(map[int64]string),
		done:     make(chan struct{}),
	}
	if refresh > 0 {
		go c.observe(refresh)
	}
	return c
}

func (c *AttendantCache) observe(interval time.Duration) {
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

// Refresh replaces the in-memory snapshot with the authoritative set.
func (c *AttendantCache) Refresh(ctx context.Context) error {
	attendants, err := c.store.Attendants(ctx)
	if err != nil {
		return err
	}

	byWuid := make(map[string]*entity.Attendant, len(attendants))
	wuidByID := make(map[int64]string, len(attendants))
	for i := range attendants {
		a := attendants[i]
		byWuid[a.Wuid] = &a
		wuidByID[a.AttendantID] = a.Wuid
	}

	c.mu.Lock()
	c.byWuid = byWuid
	c.wuidByID = wuidByID
	c.mu.Unlock()
	return nil
}

func (c *AttendantCache) Stop() {
	c.once.Do(func() { close(c.done) })
}

// FindByWuid reports whether the sender is an attendant. Misses fall
// through to the store and back-fill the snapshot.
func (c *AttendantCache) FindByWuid(ctx context.Context, wuid string) (*entity.Attendant, bool) {
	c.mu.RLock()
	attendant, ok := c.byWuid[wuid]
	if ok {
		cp := *attendant
		c.mu.RUnlock()
		return &cp, true
	}
	c.mu.RUnlock()

	fromStore, err := c.store.AttendantByWuid(ctx, wuid)
	if err != nil {
		c.log.Error("store lookup failed", sl.Op("find"), slog.String("wuid", wuid), sl.Err(err))
		return nil, false
	}
	if fromStore == nil {
		return nil, false
	}

	c.insert(fromStore)
	cp := *fromStore
	return &cp, true
}

func (c *AttendantCache) FindByID(ctx context.Context, attendantID int64) (*entity.Attendant, bool) {
	c.mu.RLock()
	wuid, ok := c.wuidByID[attendantID]
	if ok {
		cp := *c.byWuid[wuid]
		c.mu.RUnlock()
		return &cp, true
	}
	c.mu.RUnlock()

	fromStore, err := c.store.AttendantByID(ctx, attendantID)
	if err != nil {
		c.log.Error("store lookup failed", sl.Op("find"),
			slog.Int64("attendant_id", attendantID), sl.Err(err))
		return nil, false
	}
	if fromStore == nil {
		return nil, false
	}

	c.insert(fromStore)
	cp := *fromStore
	return &cp, true
}

// FirstFreeInSector selects the first active attendant of the sector
// whose id is not in the occupied set, loading the roster from the
// store when the snapshot is still empty. First-found by ascending id;
// the scheduler makes no fairness promise.
func (c *AttendantCache) FirstFreeInSector(ctx context.Context, sectorID int64, occupied map[int64]bool) (*entity.Attendant, bool) {
	c.mu.RLock()
	empty := len(c.wuidByID) == 0
	c.mu.RUnlock()

	if empty {
		if err := c.Refresh(ctx); err != nil {
			c.log.Error("store lookup failed", sl.Op("find_many"), sl.Err(err))
			return nil, false
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]int64, 0, len(c.wuidByID))
	for id := range c.wuidByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		a := c.byWuid[c.wuidByID[id]]
		if a.CompanySectorID != sectorID || !a.IsActive() || occupied[a.AttendantID] {
			continue
		}
		cp := *a
		return &cp, true
	}
	return nil, false
}

// Remove releases the attendant from the hot cache. The next lookup or
// snapshot refresh brings it back.
func (c *AttendantCache) Remove(attendantID int64) (*entity.Attendant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wuid, ok := c.wuidByID[attendantID]
	if !ok {
		return nil, false
	}
	removed := c.byWuid[wuid]
	delete(c.byWuid, wuid)
	delete(c.wuidByID, attendantID)
	return removed, true
}

func (c *AttendantCache) insert(attendant *entity.Attendant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *attendant
	c.byWuid[cp.Wuid] = &cp
	c.wuidByID[cp.AttendantID] = cp.Wuid
}
