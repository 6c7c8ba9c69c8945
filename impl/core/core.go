package core

import (
	"CallService/entity"
	"CallService/internal/cache"
	"CallService/internal/export"
	"CallService/internal/http-server/handlers/status"
	"CallService/internal/lib/format"
	"CallService/internal/lib/sl"
	"context"
	"log/slog"
	"time"
)

// Repository is the record-store surface the admin core depends on.
type Repository interface {
	CheckApiKey(key string) (string, error)
	GenerateApiKey(ctx context.Context, username string) (string, error)

	CreateAttendant(ctx context.Context, attendant *entity.Attendant) (*entity.Attendant, error)
	Attendants(ctx context.Context) ([]entity.Attendant, error)

	CreateSector(ctx context.Context, sector *entity.Sector) (*entity.Sector, error)
	Sectors(ctx context.Context) ([]entity.Sector, error)

	TransactionHistory(ctx context.Context, attendantID, customerID int64) ([]entity.Transaction, error)
}

// Core implements the admin API surface: roster administration,
// reports and api keys. Conversation state never flows through here.
type Core struct {
	repo      Repository
	cache     *cache.Service
	env       string
	botNumber string
	started   time.Time
	log       *slog.Logger
}

func New(repo Repository, cacheService *cache.Service, env, botNumber string, log *slog.Logger) *Core {
	return &Core{
		repo:      repo,
		cache:     cacheService,
		env:       env,
		botNumber: botNumber,
		started:   time.Now(),
		log:       log.With(sl.Module("core")),
	}
}

func (c *Core) CheckApiKey(key string) (string, error) {
	return c.repo.CheckApiKey(key)
}

func (c *Core) GenerateApiKey(ctx context.Context, username string) (string, error) {
	return c.repo.GenerateApiKey(ctx, username)
}

// CreateAttendant persists the attendant and refreshes the hot
// snapshot so the conversation flow sees the new roster immediately.
func (c *Core) CreateAttendant(ctx context.Context, attendant *entity.Attendant) (*entity.Attendant, error) {
	now := format.NowMs()
	attendant.CreatedAt = now
	attendant.UpdatedAt = now

	created, err := c.repo.CreateAttendant(ctx, attendant)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Attendant.Refresh(ctx); err != nil {
		c.log.Error("attendant snapshot refresh failed", sl.Err(err))
	}
	return created, nil
}

func (c *Core) Attendants(ctx context.Context) ([]entity.Attendant, error) {
	return c.repo.Attendants(ctx)
}

func (c *Core) CreateSector(ctx context.Context, sector *entity.Sector) (*entity.Sector, error) {
	sector.CreatedAt = format.NowMs()

	created, err := c.repo.CreateSector(ctx, sector)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Sector.Refresh(ctx); err != nil {
		c.log.Error("sector snapshot refresh failed", sl.Err(err))
	}
	return created, nil
}

func (c *Core) Sectors(ctx context.Context) ([]entity.Sector, error) {
	return c.repo.Sectors(ctx)
}

// TransactionReport flattens the history into spreadsheet rows, the
// sector and customer ids resolved to names through the caches.
func (c *Core) TransactionReport(ctx context.Context, attendantID, customerID int64) ([]export.TransactionRow, error) {
	transactions, err := c.repo.TransactionHistory(ctx, attendantID, customerID)
	if err != nil {
		return nil, err
	}

	rows := make([]export.TransactionRow, 0, len(transactions))
	for i := range transactions {
		t := &transactions[i]
		row := export.TransactionRow{
			TransactionID: t.TransactionID,
			Initiated:     format.Date(t.Initiated),
			Protocol:      t.Protocol,
			Status:        string(t.Status),
			CustomerID:    t.CustomerID,
		}
		if t.StartProcessing != 0 {
			row.StartProcessing = format.Date(t.StartProcessing)
		}
		if t.Finished != 0 {
			row.Finished = format.Date(t.Finished)
		}
		if sector, ok := c.cache.Sector.ByID(ctx, t.SectorID); ok {
			row.Sector = sector.Name
		}
		if customer, ok := c.cache.Customer.FindByID(ctx, t.CustomerID); ok {
			row.Customer = customer.DisplayName()
			row.PhoneNumber = customer.PhoneNumber
			row.Wuid = customer.Wuid
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Status reports the liveness snapshot for the dashboard.
func (c *Core) Status() status.Info {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	info := status.Info{
		Env:       c.env,
		UptimeSec: int64(time.Since(c.started).Seconds()),
	}
	if attendants, err := c.repo.Attendants(ctx); err == nil {
		info.Attendants = len(attendants)
	}
	info.Sectors = len(c.cache.Sector.All(ctx))
	if callCenter, err := c.cache.CallCenter(ctx, c.botNumber); err == nil && callCenter != nil {
		info.InOperation = callCenter.InOperation(time.Now())
	}
	return info
}
