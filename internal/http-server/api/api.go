package api

import (
	"CallService/internal/config"
	"CallService/internal/http-server/handlers/attendant"
	"CallService/internal/http-server/handlers/errors"
	"CallService/internal/http-server/handlers/key"
	"CallService/internal/http-server/handlers/report"
	"CallService/internal/http-server/handlers/sector"
	"CallService/internal/http-server/handlers/status"
	"CallService/internal/http-server/middleware/authenticate"
	"CallService/internal/http-server/middleware/timeout"
	"CallService/internal/lib/sl"
	"CallService/internal/ws"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Webhook is the messaging transport's HTTP face: the verification
// handshake and the delivery endpoint.
type Webhook interface {
	HandleWebhookVerification(w http.ResponseWriter, r *http.Request)
	HandleWebhook(w http.ResponseWriter, r *http.Request)
}

// Handler is the full admin surface behind the authenticated routes.
type Handler interface {
	authenticate.Authenticate
	attendant.Core
	sector.Core
	report.Core
	key.Core
	status.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, webhook Webhook, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(30))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// Transport callbacks authenticate themselves: the webhook by
	// verify token and payload signature, the event stream by api key
	// in the query string.
	router.Get("/webhook", webhook.HandleWebhookVerification)
	router.Post("/webhook", webhook.HandleWebhook)
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, handler, log, w, r)
	})

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Use(authenticate.New(log, handler))

		v1.Route("/attendant", func(r chi.Router) {
			r.Get("/", attendant.ListAttendants(log, handler))
			r.Post("/create", attendant.AddAttendant(log, handler))
		})
		v1.Route("/sector", func(r chi.Router) {
			r.Get("/", sector.ListSectors(log, handler))
			r.Post("/create", sector.AddSector(log, handler))
		})
		v1.Route("/report", func(r chi.Router) {
			r.Get("/transactions", report.Transactions(log, handler))
		})
		v1.Route("/key", func(r chi.Router) {
			r.Post("/new", key.Generate(log, handler))
		})
		v1.Get("/status", status.Status(log, handler))
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
