package cache

import (
	"CallService/entity"
	"CallService/internal/lib/format"
	"CallService/internal/lib/sl"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
)

var (
	// ErrFinishedImmutable rejects any mutation of a FINISHED transaction.
	ErrFinishedImmutable = errors.New("transaction already finished")
	// ErrAlreadyAssigned signals the accept race loser: another attendant
	// bound the transaction first.
	ErrAlreadyAssigned = errors.New("transaction already assigned to an attendant")
)

type TransactionStore interface {
	CreateTransaction(ctx context.Context, transaction *entity.Transaction) (*entity.Transaction, error)
	TransactionByID(ctx context.Context, transactionID int64) (*entity.Transaction, error)
	OpenTransactionByCustomer(ctx context.Context, customerID int64) (*entity.Transaction, error)
	OpenTransactionByAttendant(ctx context.Context, attendantID int64) (*entity.Transaction, error)
	UpdateTransaction(ctx context.Context, transaction *entity.Transaction) error
	SectorTransactionsNotProcessing(ctx context.Context, sectorID int64) ([]entity.Transaction, error)
	QueuedTransactionBySector(ctx context.Context, sectorID int64) (*entity.Transaction, error)
}

// TransactionPatch carries a partial update; nil fields keep their
// current value.
type TransactionPatch struct {
	Subject         *string
	Status          *entity.TransactionStatus
	StartProcessing *int64
	Finished        *int64
	Protocol        *string
	Finisher        *entity.Finisher
	SectorID        *int64
}

// TransactionCache owns the in-memory view of service transactions,
// keyed by transaction id with an index of the single open transaction
// per customer.
type TransactionCache struct {
	store TransactionStore
	log   *slog.Logger

	mu             sync.Mutex
	byID           map[int64]*entity.Transaction
	openByCustomer map[int64]int64

	creating *keyedMutex
}

func NewTransactionCache(store TransactionStore, log *slog.Logger) *TransactionCache {
	return &TransactionCache{
		store:          store,
		log:            log.With(sl.Module("cache.transaction")),
		byID:           make(map[int64]*entity.Transaction),
		openByCustomer: make(map[int64]int64),
		creating:       newKeyedMutex(),
	}
}

// Create opens a transaction for the customer unless one is already
// open. The check and the insert are serialized per customer, so two
// rapid first messages produce exactly one transaction.
func (c *TransactionCache) Create(ctx context.Context, data *entity.Transaction) (*entity.Transaction, error) {
	unlock := c.creating.Lock(strconv.FormatInt(data.CustomerID, 10))
	defer unlock()

	if existing, ok := c.FindOpenByCustomer(ctx, data.CustomerID); ok {
		return existing, nil
	}

	if data.Status == "" {
		data.Status = entity.TransactionActive
	}
	if data.Initiated == 0 {
		data.Initiated = format.NowMs()
	}

	created, err := c.store.CreateTransaction(ctx, data)
	if err != nil {
		return nil, err
	}

	c.insert(created)
	cp := *created
	return &cp, nil
}

// FindByID looks the transaction up in memory, falling through to the
// store and back-filling on a miss.
func (c *TransactionCache) FindByID(ctx context.Context, transactionID int64) (*entity.Transaction, bool) {
	c.mu.Lock()
	if t, ok := c.byID[transactionID]; ok {
		cp := *t
		c.mu.Unlock()
		return &cp, true
	}
	c.mu.Unlock()

	fromStore, err := c.store.TransactionByID(ctx, transactionID)
	if err != nil {
		c.log.Error("store lookup failed", sl.Op("find"),
			slog.Int64("transaction_id", transactionID), sl.Err(err))
		return nil, false
	}
	if fromStore == nil {
		return nil, false
	}

	c.insert(fromStore)
	cp := *fromStore
	return &cp, true
}

// FindOpenByCustomer returns the customer's single non-finished
// transaction, if any.
func (c *TransactionCache) FindOpenByCustomer(ctx context.Context, customerID int64) (*entity.Transaction, bool) {
	c.mu.Lock()
	if id, ok := c.openByCustomer[customerID]; ok {
		cp := *c.byID[id]
		c.mu.Unlock()
		return &cp, true
	}
	c.mu.Unlock()

	fromStore, err := c.store.OpenTransactionByCustomer(ctx, customerID)
	if err != nil {
		c.log.Error("store lookup failed", sl.Op("find"),
			slog.Int64("customer_id", customerID), sl.Err(err))
		return nil, false
	}
	if fromStore == nil {
		return nil, false
	}

	c.insert(fromStore)
	cp := *fromStore
	return &cp, true
}

// FindOpenByAttendant returns the transaction the attendant is bound to.
func (c *TransactionCache) FindOpenByAttendant(ctx context.Context, attendantID int64) (*entity.Transaction, bool) {
	c.mu.Lock()
	for _, t := range c.byID {
		if t.AttendantID == attendantID && t.Open() {
			cp := *t
			c.mu.Unlock()
			return &cp, true
		}
	}
	c.mu.Unlock()

	fromStore, err := c.store.OpenTransactionByAttendant(ctx, attendantID)
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

// Update merges a patch into the transaction. FINISHED is terminal:
// once reached, every further mutation is rejected. The in-memory merge
// is synchronous; the durable write is asynchronous except when the
// patch finishes the transaction, which must land before the record can
// be evicted. A stale open row in the store would otherwise be picked
// up by the next Create for the same customer.
func (c *TransactionCache) Update(ctx context.Context, transactionID int64, patch TransactionPatch) (*entity.Transaction, error) {
	if _, ok := c.FindByID(ctx, transactionID); !ok {
		return nil, nil
	}

	c.mu.Lock()
	transaction, ok := c.byID[transactionID]
	if !ok {
		c.mu.Unlock()
		return nil, nil
	}
	if transaction.Status == entity.TransactionFinished {
		c.mu.Unlock()
		return nil, ErrFinishedImmutable
	}

	if patch.Subject != nil {
		transaction.Subject = *patch.Subject
	}
	if patch.Status != nil {
		transaction.Status = *patch.Status
	}
	if patch.StartProcessing != nil {
		transaction.StartProcessing = *patch.StartProcessing
	}
	if patch.Finished != nil {
		transaction.Finished = *patch.Finished
	}
	if patch.Protocol != nil {
		transaction.Protocol = *patch.Protocol
	}
	if patch.Finisher != nil {
		transaction.Finisher = *patch.Finisher
	}
	if patch.SectorID != nil {
		transaction.SectorID = *patch.SectorID
	}
	if transaction.Status == entity.TransactionFinished {
		delete(c.openByCustomer, transaction.CustomerID)
	}
	cp := *transaction
	c.mu.Unlock()

	if cp.Status == entity.TransactionFinished {
		if err := c.store.UpdateTransaction(ctx, &cp); err != nil {
			return nil, err
		}
	} else {
		c.writeThrough("update", &cp)
	}
	result := cp
	return &result, nil
}

// BindAttendant performs the read-verify-write of the attendant binding
// as one atomic step. At most one attendant ever wins; the rest get
// ErrAlreadyAssigned.
func (c *TransactionCache) BindAttendant(ctx context.Context, transactionID, attendantID int64) (*entity.Transaction, error) {
	if _, ok := c.FindByID(ctx, transactionID); !ok {
		return nil, nil
	}

	c.mu.Lock()
	transaction, ok := c.byID[transactionID]
	if !ok {
		c.mu.Unlock()
		return nil, nil
	}
	if transaction.Status == entity.TransactionFinished {
		c.mu.Unlock()
		return nil, ErrFinishedImmutable
	}
	if transaction.AttendantID != 0 {
		c.mu.Unlock()
		return nil, ErrAlreadyAssigned
	}

	transaction.AttendantID = attendantID
	transaction.Status = entity.TransactionProcessing
	transaction.StartProcessing = format.NowMs()
	cp := *transaction
	c.mu.Unlock()

	c.writeThrough("bind_attendant", &cp)
	result := cp
	return &result, nil
}

// Remove drops the transaction from the hot cache.
func (c *TransactionCache) Remove(transactionID int64) (*entity.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, ok := c.byID[transactionID]
	if !ok {
		return nil, false
	}
	delete(c.byID, transactionID)
	if c.openByCustomer[removed.CustomerID] == transactionID {
		delete(c.openByCustomer, removed.CustomerID)
	}
	return removed, true
}

// SectorNotProcessing queries the store for every transaction of the
// sector that is not being processed. Sector-wide scans skip the cache;
// the store answer is authoritative for queue decisions.
func (c *TransactionCache) SectorNotProcessing(ctx context.Context, sectorID int64) ([]entity.Transaction, error) {
	return c.store.SectorTransactionsNotProcessing(ctx, sectorID)
}

// NextQueued returns the oldest unassigned ACTIVE transaction waiting
// in the sector, or nil.
func (c *TransactionCache) NextQueued(ctx context.Context, sectorID int64) (*entity.Transaction, bool) {
	fromStore, err := c.store.QueuedTransactionBySector(ctx, sectorID)
	if err != nil {
		c.log.Error("store lookup failed", sl.Op("next_queued"),
			slog.Int64("sector_id", sectorID), sl.Err(err))
		return nil, false
	}
	if fromStore == nil {
		return nil, false
	}

	c.insert(fromStore)
	cp := *fromStore
	return &cp, true
}

func (c *TransactionCache) insert(transaction *entity.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *transaction
	c.byID[cp.TransactionID] = &cp
	if cp.Open() {
		c.openByCustomer[cp.CustomerID] = cp.TransactionID
	}
}

func (c *TransactionCache) writeThrough(op string, transaction *entity.Transaction) {
	cp := *transaction
	go func() {
		if err := c.store.UpdateTransaction(context.Background(), &cp); err != nil {
			c.log.Error("write-through lost", sl.Op(op),
				slog.String("entity", "transaction"),
				slog.String("key", strconv.FormatInt(cp.TransactionID, 10)),
				sl.Err(err))
		}
	}()
}
