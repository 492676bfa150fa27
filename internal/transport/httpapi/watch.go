package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/transport/wire"
)

const (
	sendQueueSize = 16
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// session pushes snapshots to one websocket client.
type session struct {
	conn   *websocket.Conn
	queue  chan []byte
	done   chan struct{}
	closed atomic.Int32
	log    *zap.Logger
}

func newSession(conn *websocket.Conn, log *zap.Logger) *session {
	return &session{
		conn:  conn,
		queue: make(chan []byte, sendQueueSize),
		done:  make(chan struct{}),
		log:   log,
	}
}

// trySend queues a snapshot. A client too slow to drain its queue is
// disconnected; it will get the full state again when it reconnects.
func (s *session) trySend(msg []byte) bool {
	if s.closed.Load() == 1 {
		return false
	}
	select {
	case s.queue <- msg:
		return true
	default:
		s.log.Warn("watch: backpressure overflow, dropping connection")
		s.closeWithReason(websocket.CloseTryAgainLater, "backpressure overflow")
		return false
	}
}

func (s *session) close() {
	s.closeWithReason(websocket.CloseNormalClosure, "server closing")
}

func (s *session) closeWithReason(code int, reason string) {
	if !s.closed.CompareAndSwap(0, 1) {
		return
	}
	close(s.done)

	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	s.conn.Close()
}

func (s *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case msg := <-s.queue:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Debug("watch: write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// readLoop discards client frames and returns once the client goes away.
func (s *session) readLoop() {
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("watch: read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Handler) WatchConversations(w http.ResponseWriter, r *http.Request) {
	p := ParticipantFrom(r.Context())
	h.watch(w, r, func(ctx context.Context, s *session) (domain.Subscription, error) {
		return h.svc.SubscribeConversations(ctx, p, func(summaries []domain.ConversationSummary, report domain.DecodeReport) {
			s.push(wire.NewConversationList(summaries, report))
		})
	})
}

func (h *Handler) WatchMessages(w http.ResponseWriter, r *http.Request) {
	p := ParticipantFrom(r.Context())
	convID := chi.URLParam(r, "conversationID")
	h.watch(w, r, func(ctx context.Context, s *session) (domain.Subscription, error) {
		return h.svc.SubscribeMessages(ctx, p, convID, func(msgs []domain.Message, report domain.DecodeReport) {
			s.push(wire.NewMessageList(msgs, report))
		})
	})
}

func (s *session) push(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("watch: marshal snapshot", zap.Error(err))
		return
	}
	s.trySend(b)
}

// watch upgrades the request and keeps a subscription open until either
// side closes the socket.
func (h *Handler) watch(
	w http.ResponseWriter,
	r *http.Request,
	subscribe func(ctx context.Context, s *session) (domain.Subscription, error),
) {
	log := observability.GetLogger(r.Context())
	if ParticipantFrom(r.Context()).IsZero() {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("watch: upgrade error", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	s := newSession(conn, log)
	sub, err := subscribe(ctx, s)
	if err != nil {
		cancel()
		log.Warn("watch: subscribe failed", zap.Error(err))
		s.closeWithReason(websocket.CloseInternalServerErr, "subscribe failed")
		return
	}

	go s.writeLoop()
	go func() {
		defer cancel()
		s.readLoop()
		_ = sub.Close()
		s.close()
	}()
}
