package cache

import (
	"CallService/entity"
	"CallService/internal/lib/format"
	"CallService/internal/lib/sl"
	"context"
	"log/slog"
	"strconv"
	"sync"
)

type CustomerStore interface {
	CustomerByWuid(ctx context.Context, wuid string) (*entity.Customer, error)
	CustomerByID(ctx context.Context, customerID int64) (*entity.Customer, error)
	CreateCustomer(ctx context.Context, customer *entity.Customer) (*entity.Customer, error)
	UpdateCustomer(ctx context.Context, customer *entity.Customer) error
}

// CustomerPatch carries a partial update; nil fields are left untouched.
type CustomerPatch struct {
	Name              *string
	ProfilePictureURL *string
}

// CustomerCache mirrors hot customers keyed by wuid. The in-memory copy
// is the working truth; durable writes go out asynchronously.
type CustomerCache struct {
	store CustomerStore
	log   *slog.Logger

	mu       sync.RWMutex
	byWuid   map[string]*entity.Customer
	wuidByID map[int64]string

	creating *keyedMutex
}

func NewCustomerCache(store CustomerStore, log *slog.Logger) *CustomerCache {
	return &CustomerCache{
		store:    store,
		log:      log.With(sl.Module("cache.customer")),
		byWuid:   make(map[string]*entity.Customer),
		wuidByID: make(map[int64]string),
		creating: newKeyedMutex(),
	}
}

// FindByWuid looks the customer up in memory first and falls through to
// the store on a miss, back-filling the cache. Absence is (nil, false).
func (c *CustomerCache) FindByWuid(ctx context.Context, wuid string) (*entity.Customer, bool) {
	c.mu.RLock()
	customer, ok := c.byWuid[wuid]
	if ok {
		cp := *customer
		c.mu.RUnlock()
		return &cp, true
	}
	c.mu.RUnlock()

	fromStore, err := c.store.CustomerByWuid(ctx, wuid)
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

// FindByID resolves a customer through the id index, falling through to
// the store on a miss.
func (c *CustomerCache) FindByID(ctx context.Context, customerID int64) (*entity.Customer, bool) {
	c.mu.RLock()
	wuid, ok := c.wuidByID[customerID]
	if ok {
		cp := *c.byWuid[wuid]
		c.mu.RUnlock()
		return &cp, true
	}
	c.mu.RUnlock()

	fromStore, err := c.store.CustomerByID(ctx, customerID)
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

// Create registers the customer if no record exists for its wuid yet.
// The check and the insert run under a per-wuid lock, so two rapid first
// messages from the same chat produce exactly one record.
func (c *CustomerCache) Create(ctx context.Context, data *entity.Customer) (*entity.Customer, error) {
	unlock := c.creating.Lock(data.Wuid)
	defer unlock()

	if existing, ok := c.FindByWuid(ctx, data.Wuid); ok {
		return existing, nil
	}

	data.CreatedAt = format.NowMs()
	created, err := c.store.CreateCustomer(ctx, data)
	if err != nil {
		return nil, err
	}

	c.insert(created)
	cp := *created
	return &cp, nil
}

// Update merges the patch into the in-memory record synchronously and
// pushes the merged record to the store without waiting for it.
func (c *CustomerCache) Update(ctx context.Context, customerID int64, patch CustomerPatch) (*entity.Customer, bool) {
	c.mu.Lock()
	wuid, ok := c.wuidByID[customerID]
	if !ok {
		c.mu.Unlock()
		if _, found := c.FindByID(ctx, customerID); !found {
			return nil, false
		}
		c.mu.Lock()
		if wuid, ok = c.wuidByID[customerID]; !ok {
			c.mu.Unlock()
			return nil, false
		}
	}
	customer := c.byWuid[wuid]
	if patch.Name != nil {
		customer.Name = *patch.Name
	}
	if patch.ProfilePictureURL != nil {
		customer.ProfilePictureURL = *patch.ProfilePictureURL
	}
	customer.UpdatedAt = format.NowMs()
	cp := *customer
	c.mu.Unlock()

	go func() {
		if err := c.store.UpdateCustomer(context.Background(), &cp); err != nil {
			c.log.Error("write-through lost", sl.Op("update"),
				slog.String("entity", "customer"),
				slog.String("key", strconv.FormatInt(customerID, 10)),
				sl.Err(err))
		}
	}()

	result := cp
	return &result, true
}

// Remove drops the customer from the hot cache. The durable record
// stays for history.
func (c *CustomerCache) Remove(customerID int64) (*entity.Customer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wuid, ok := c.wuidByID[customerID]
	if !ok {
		return nil, false
	}
	removed := c.byWuid[wuid]
	delete(c.byWuid, wuid)
	delete(c.wuidByID, customerID)
	return removed, true
}

func (c *CustomerCache) insert(customer *entity.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *customer
	c.byWuid[cp.Wuid] = &cp
	c.wuidByID[cp.CustomerID] = cp.Wuid
}
