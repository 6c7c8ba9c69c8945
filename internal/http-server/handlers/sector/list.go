package sector

import (
	"CallService/internal/lib/api/response"
	"CallService/internal/lib/sl"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func ListSectors(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.sector")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("sector service not available")
			render.JSON(w, r, response.Error("sector service not available"))
			return
		}

		sectors, err := handler.Sectors(r.Context())
		if err != nil {
			logger.Error("failed to fetch sectors", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to fetch sectors: %v", err)))
			return
		}

		render.JSON(w, r, response.Ok(sectors))
	}
}
