package sector

import (
	"CallService/entity"
	"context"
)

// Core is the sector administration surface the handlers call into.
type Core interface {
	CreateSector(ctx context.Context, sector *entity.Sector) (*entity.Sector, error)
	Sectors(ctx context.Context) ([]entity.Sector, error)
}
