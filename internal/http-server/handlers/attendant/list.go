package attendant

import (
	"CallService/internal/lib/api/response"
	"CallService/internal/lib/sl"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func ListAttendants(log *slog.Logger, handler Core) http.HandlerFunc {
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

		attendants, err := handler.Attendants(r.Context())
		if err != nil {
			logger.Error("failed to fetch attendants", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Failed to fetch attendants: %v", err)))
			return
		}

		render.JSON(w, r, response.Ok(attendants))
	}
}
