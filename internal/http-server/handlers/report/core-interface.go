package report

import (
	"CallService/internal/export"
	"context"
)

// Core serves the flattened history rows the spreadsheet is built from.
type Core interface {
	TransactionReport(ctx context.Context, attendantID, customerID int64) ([]export.TransactionRow, error)
}
