package cache

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"CallService/entity"
)

// fakeStore is an in-memory Store used by the cache tests. Lookup
// counters expose whether a read was served from memory or fell
// through to the store.
type fakeStore struct {
	mu sync.Mutex

	customers    map[int64]*entity.Customer
	attendants   []entity.Attendant
	sectors      []entity.Sector
	stages       map[string]*entity.ChatStage
	transactions map[int64]*entity.Transaction
	callCenter   *entity.CallCenter

	nextID int64

	customerLookups    int
	transactionLookups int
	updates            int

	// updateDelay stalls UpdateTransaction, widening the window
	// between an in-memory change and its durable write.
	updateDelay time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers:    make(map[int64]*entity.Customer),
		stages:       make(map[string]*entity.ChatStage),
		transactions: make(map[int64]*entity.Transaction),
	}
}

func (f *fakeStore) sequence() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CustomerByWuid(_ context.Context, wuid string) (*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customerLookups++
	for _, c := range f.customers {
		if c.Wuid == wuid {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CustomerByID(_ context.Context, customerID int64) (*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customerLookups++
	if c, ok := f.customers[customerID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateCustomer(_ context.Context, customer *entity.Customer) (*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *customer
	cp.CustomerID = f.sequence()
	f.customers[cp.CustomerID] = &cp
	result := cp
	return &result, nil
}

func (f *fakeStore) UpdateCustomer(_ context.Context, customer *entity.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	cp := *customer
	f.customers[cp.CustomerID] = &cp
	return nil
}

func (f *fakeStore) Customers(_ context.Context) ([]entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Customer, 0, len(f.customers))
	for _, c := range f.customers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func (f *fakeStore) Attendants(_ context.Context) ([]entity.Attendant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Attendant, len(f.attendants))
	copy(out, f.attendants)
	return out, nil
}

func (f *fakeStore) AttendantByWuid(_ context.Context, wuid string) (*entity.Attendant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.attendants {
		if f.attendants[i].Wuid == wuid {
			cp := f.attendants[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) AttendantByID(_ context.Context, attendantID int64) (*entity.Attendant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.attendants {
		if f.attendants[i].AttendantID == attendantID {
			cp := f.attendants[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Sectors(_ context.Context) ([]entity.Sector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Sector, len(f.sectors))
	copy(out, f.sectors)
	return out, nil
}

func (f *fakeStore) ChatStageByWuid(_ context.Context, wuid string) (*entity.ChatStage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stages[wuid]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) UpsertChatStage(_ context.Context, stage *entity.ChatStage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *stage
	f.stages[cp.Wuid] = &cp
	return nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, transaction *entity.Transaction) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *transaction
	cp.TransactionID = f.sequence()
	f.transactions[cp.TransactionID] = &cp
	result := cp
	return &result, nil
}

func (f *fakeStore) TransactionByID(_ context.Context, transactionID int64) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactionLookups++
	if t, ok := f.transactions[transactionID]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) OpenTransactionByCustomer(_ context.Context, customerID int64) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactionLookups++
	for _, t := range f.transactions {
		if t.CustomerID == customerID && t.Status != entity.TransactionFinished {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) OpenTransactionByAttendant(_ context.Context, attendantID int64) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.transactions {
		if t.AttendantID == attendantID && t.Status != entity.TransactionFinished {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, transaction *entity.Transaction) error {
	if f.updateDelay > 0 {
		time.Sleep(f.updateDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	cp := *transaction
	f.transactions[cp.TransactionID] = &cp
	return nil
}

func (f *fakeStore) SectorTransactionsNotProcessing(_ context.Context, sectorID int64) ([]entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Transaction
	for _, t := range f.transactions {
		if t.SectorID == sectorID && t.Status != entity.TransactionProcessing {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) QueuedTransactionBySector(_ context.Context, sectorID int64) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *entity.Transaction
	for _, t := range f.transactions {
		if t.SectorID != sectorID || t.Status != entity.TransactionActive || t.AttendantID != 0 {
			continue
		}
		if oldest == nil || t.Initiated < oldest.Initiated {
			oldest = t
		}
	}
	if oldest == nil {
		return nil, nil
	}
	cp := *oldest
	return &cp, nil
}

func (f *fakeStore) CallCenterByPhone(_ context.Context, phoneNumber string) (*entity.CallCenter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.callCenter != nil && f.callCenter.PhoneNumber == phoneNumber {
		cp := *f.callCenter
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) TouchCallCenter(_ context.Context, callCenterID, loggedAt int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.callCenter != nil && f.callCenter.CallCenterID == callCenterID {
		f.callCenter.LoggedAt = loggedAt
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
