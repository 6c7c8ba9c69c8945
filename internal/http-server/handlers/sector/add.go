package sector

import (
	"CallService/entity"
	"CallService/internal/lib/api/response"
	"CallService/internal/lib/sl"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

func AddSector(log *slog.Logger, handler Core) http.HandlerFunc {
	validate := validator.New()

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

		var req entity.Sector
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if err := validate.Struct(&req); err != nil {
			logger.Error("invalid sector", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid sector: %v", err)))
			return
		}

		created, err := handler.CreateSector(r.Context(), &req)
		if err != nil {
			logger.Error("failed to create sector", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to create sector: %v", err)))
			return
		}

		logger.Debug("sector created", slog.Int64("sector_id", created.SectorID))
		render.JSON(w, r, response.Ok(created))
	}
}
