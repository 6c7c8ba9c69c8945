package status

import (
	"CallService/internal/lib/api/response"
	"CallService/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Info is the liveness snapshot the dashboard polls.
type Info struct {
	Env         string `json:"env"`
	UptimeSec   int64  `json:"uptime_sec"`
	Attendants  int    `json:"attendants"`
	Sectors     int    `json:"sectors"`
	InOperation bool   `json:"in_operation"`
}

type Core interface {
	Status() Info
}

func Status(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.status")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("status service not available")
			render.JSON(w, r, response.Error("status service not available"))
			return
		}

		render.JSON(w, r, response.Ok(handler.Status()))
	}
}
