package cache

import (
	"CallService/entity"
	"CallService/internal/lib/format"
	"CallService/internal/lib/sl"
	"context"
	"log/slog"
	"sync"
	"time"
)

type CallCenterStore interface {
	CallCenterByPhone(ctx context.Context, phoneNumber string) (*entity.CallCenter, error)
	TouchCallCenter(ctx context.Context, callCenterID, loggedAt int64) error
}

// Store is the full record-store contract the cache layer depends on.
type Store interface {
	CustomerStore
	AttendantStore
	SectorStore
	StageStore
	TransactionStore
	CallCenterStore
}

// Service bundles the per-entity caches behind one constructor, plus
// the memoized call center record.
type Service struct {
	Customer    *CustomerCache
	Attendant   *AttendantCache
	Sector      *SectorCache
	Stage       *StageCache
	Transaction *TransactionCache

	store CallCenterStore
	log   *slog.Logger

	mu         sync.Mutex
	callCenter *entity.CallCenter
}

// Intervals configures the snapshot refresh cadence of the read-mostly
// caches. Zero disables the background refresh (tests drive Refresh
// directly).
type Intervals struct {
	Attendant time.Duration
	Sector    time.Duration
}

func NewService(store Store, intervals Intervals, log *slog.Logger) *Service {
	return &Service{
		Customer:    NewCustomerCache(store, log),
		Attendant:   NewAttendantCache(store, intervals.Attendant, log),
		Sector:      NewSectorCache(store, intervals.Sector, log),
		Stage:       NewStageCache(store, log),
		Transaction: NewTransactionCache(store, log),
		store:       store,
		log:         log.With(sl.Module("cache.service")),
	}
}

// CallCenter resolves the call center record for the bot's line once
// per process, stamping logged_at on first resolution.
func (s *Service) CallCenter(ctx context.Context, phoneNumber string) (*entity.CallCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.callCenter != nil {
		cp := *s.callCenter
		return &cp, nil
	}

	callCenter, err := s.store.CallCenterByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if callCenter == nil {
		return nil, nil
	}

	callCenter.LoggedAt = format.NowMs()
	go func(id, at int64) {
		if err := s.store.TouchCallCenter(context.Background(), id, at); err != nil {
			s.log.Error("write-through lost", sl.Op("touch"),
				slog.String("entity", "call_center"),
				slog.Int64("key", id),
				sl.Err(err))
		}
	}(callCenter.CallCenterID, callCenter.LoggedAt)

	s.callCenter = callCenter
	cp := *callCenter
	return &cp, nil
}

// Stop tears down the background refreshers.
func (s *Service) Stop() {
	s.Attendant.Stop()
	s.Sector.Stop()
}
