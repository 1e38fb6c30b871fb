// Package transport mounts the engine's live WebSocket channels plus its
// health and metrics endpoints onto a chi router. Kept deliberately
// narrow: this engine has exactly two channel shapes (per-user status,
// per-bot logs) rather than a general RPC transport.
package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/shardhost/botengine/internal/eventbus"
	"github.com/shardhost/botengine/internal/facade"
	"github.com/shardhost/botengine/internal/health"
	"github.com/shardhost/botengine/internal/logger"
	"github.com/shardhost/botengine/internal/metrics"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server wires the Event Bus's subscriptions to WebSocket connections and
// exposes health/metrics alongside them.
type Server struct {
	bus     *eventbus.Bus
	health  *health.Checker
	metrics *metrics.Collector
	admin   *AdminAPI
	log     logger.Logger
}

func New(bus *eventbus.Bus, h *health.Checker, m *metrics.Collector, f *facade.Facade, log logger.Logger) *Server {
	return &Server{bus: bus, health: h, metrics: m, admin: NewAdminAPI(f), log: log}
}

// Router builds the full mux: /ws/status/{userID}, /ws/logs/{botID},
// /healthz, /metrics, and the /api/bots/* admin routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.health.Handler().ServeHTTP)
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/ws/status/{userID}", s.serveStatus)
	r.Get("/ws/logs/{botID}", s.serveLogs)
	s.admin.Mount(r)

	return r
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ch, cleanup := s.bus.SubscribeStatus(userID)
	defer cleanup()
	s.pump(w, r, ch, "status["+userID+"]")
}

func (s *Server) serveLogs(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")
	ch, cleanup := s.bus.SubscribeLogs(botID)
	defer cleanup()
	s.pump(w, r, ch, "logs["+botID+"]")
}

// pump upgrades the connection and relays every message on ch until the
// channel closes (the subscriber was replaced) or the client disconnects.
func (s *Server) pump(w http.ResponseWriter, r *http.Request, ch <-chan []byte, label string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("[transport] upgrade failed for %s: %v", label, err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by a new subscriber"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Debug("[transport] write failed for %s: %v", label, err)
				return
			}
		}
	}
}
