package attendant

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

func AddAttendant(log *slog.Logger, handler Core) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendant")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("attendant service not available")
			render.JSON(w, r, response.Error("attendant service not available"))
			return
		}

		var req entity.Attendant
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if req.Status == "" {
			req.Status = entity.AttendantActive
		}
		if err := validate.Struct(&req); err != nil {
			logger.Error("invalid attendant", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid attendant: %v", err)))
			return
		}

		created, err := handler.CreateAttendant(r.Context(), &req)
		if err != nil {
			logger.Error("failed to create attendant", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to create attendant: %v", err)))
			return
		}

		logger.Debug("attendant created", slog.Int64("attendant_id", created.AttendantID))
		render.JSON(w, r, response.Ok(created))
	}
}
