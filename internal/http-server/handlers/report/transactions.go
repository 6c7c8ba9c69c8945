package report

import (
	"CallService/internal/export"
	"CallService/internal/lib/sl"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
)

// Transactions streams the service history as an xlsx download.
// attendant_id and customer_id query parameters narrow the report.
func Transactions(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.report")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("report service not available")
			http.Error(w, "Report service not available", http.StatusServiceUnavailable)
			return
		}

		attendantID, _ := strconv.ParseInt(r.URL.Query().Get("attendant_id"), 10, 64)
		customerID, _ := strconv.ParseInt(r.URL.Query().Get("customer_id"), 10, 64)

		rows, err := handler.TransactionReport(r.Context(), attendantID, customerID)
		if err != nil {
			logger.Error("failed to fetch report rows", sl.Err(err))
			http.Error(w, fmt.Sprintf("Failed to fetch report: %v", err), http.StatusInternalServerError)
			return
		}

		data, err := export.Transactions(rows)
		if err != nil {
			logger.Error("failed to build excel file", sl.Err(err))
			http.Error(w, "Failed to generate Excel", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", export.MimeXLSX)
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			logger.Error("failed to write excel file", sl.Err(err))
			return
		}

		logger.Info("transaction report sent", slog.Int("rows", len(rows)))
	}
}
