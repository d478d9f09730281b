package http

import (
	"net/http"
	"strconv"
	"time"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Subscriber is the part of the event hub the feed needs.
type Subscriber interface {
	Subscribe() (<-chan domain.Event, func())
}

// EventStream pushes committed engine events to websocket clients. A client
// may narrow the feed with ?booking_id= or ?principal=.
type EventStream struct {
	hub      Subscriber
	upgrader websocket.Upgrader
}

func NewEventStream(hub Subscriber, allowedOrigins []string) *EventStream {
	return &EventStream{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

type eventFilter struct {
	bookingID *int64
	principal domain.Principal
}

func (f eventFilter) match(e domain.Event) bool {
	if f.bookingID != nil && (e.BookingID == nil || *e.BookingID != *f.bookingID) {
		return false
	}
	if !f.principal.IsZero() && e.Principal != f.principal {
		return false
	}
	return true
}

func parseFilter(r *http.Request) (eventFilter, bool) {
	var f eventFilter
	q := r.URL.Query()
	if v := q.Get("booking_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, false
		}
		f.bookingID = &id
	}
	if v := q.Get("principal"); v != "" {
		p, err := domain.ParsePrincipal(v)
		if err != nil {
			return f, false
		}
		f.principal = p
	}
	return f, true
}

func (s *EventStream) ServeWS(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(r)
	if !ok {
		badRequest(w, "invalid filter")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Event feed upgrade failed", "error", err)
		return
	}

	events, unsubscribe := s.hub.Subscribe()
	logger.Info("Event feed client connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go s.readLoop(conn, done)
	s.writeLoop(conn, events, filter, done)

	unsubscribe()
	_ = conn.Close()
	logger.Info("Event feed client disconnected", "remote", r.RemoteAddr)
}

// readLoop only services control frames; it closes done when the client goes
// away.
func (s *EventStream) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(4 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *EventStream) writeLoop(conn *websocket.Conn, events <-chan domain.Event, filter eventFilter, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case e, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			if !filter.match(e) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
