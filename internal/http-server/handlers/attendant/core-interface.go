package attendant

import (
	"CallService/entity"
	"context"
)

// Core is the attendant administration surface the handlers call into.
type Core interface {
	CreateAttendant(ctx context.Context, attendant *entity.Attendant) (*entity.Attendant, error)
	Attendants(ctx context.Context) ([]entity.Attendant, error)
}
