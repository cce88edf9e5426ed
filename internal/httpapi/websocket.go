package httpapi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-router"
)

// closePolicyViolation is the RFC 6455 status sent when the upgrade lacks an org.
const closePolicyViolation = 1008

var errSubscriberClosed = errors.New("httpapi: subscriber closed")

// socket is the part of router.WebSocketContext a subscriber drives.
type socket interface {
	ConnectionID() string
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WritePing(data []byte) error
	CloseWithStatus(code int, reason string) error
	Close() error
}

// subscriber adapts a WebSocket to realtime.Conn. Send only queues the frame;
// writePump owns every write to the socket.
type subscriber struct {
	id     string
	socket socket
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	ping   time.Duration
	log    router.Logger
}

func newSubscriber(ws socket, buffer int, ping time.Duration, log router.Logger) *subscriber {
	if buffer <= 0 {
		buffer = 64
	}
	if ping <= 0 {
		ping = 30 * time.Second
	}
	return &subscriber{
		id:     ws.ConnectionID(),
		socket: ws,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		ping:   ping,
		log:    log,
	}
}

func (s *subscriber) ID() string { return s.id }

func (s *subscriber) Send(ctx context.Context, payload []byte) error {
	select {
	case <-s.done:
		return errSubscriberClosed
	default:
	}
	select {
	case s.send <- payload:
		return nil
	case <-s.done:
		return errSubscriberClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is safe to call from the broadcaster, the pumps and the handler.
func (s *subscriber) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.socket.Close()
	})
	return err
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(s.ping)
	defer func() {
		ticker.Stop()
		_ = s.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case message := <-s.send:
			if err := s.socket.WriteMessage(router.TextMessage, message); err != nil {
				s.log.Debug("write error conn=%s err=%v", s.id, err)
				return
			}
		case <-ticker.C:
			if err := s.socket.WritePing(nil); err != nil {
				s.log.Debug("ping error conn=%s err=%v", s.id, err)
				return
			}
		}
	}
}

// readPump drains inbound frames until the peer goes away.
func (s *subscriber) readPump() {
	for {
		if _, _, err := s.socket.ReadMessage(); err != nil {
			s.log.Debug("read error conn=%s err=%v", s.id, err)
			return
		}
	}
}

func (s *Server) wsConfig() router.WebSocketConfig {
	cfg := router.DefaultWebSocketConfig()
	cfg.Origins = s.origins
	cfg.OnPreUpgrade = func(c router.Context) (router.UpgradeData, error) {
		return router.UpgradeData{
			"org_id": strings.TrimSpace(c.Query("org_id")),
		}, nil
	}
	return cfg
}

// HandleWebSocket registers the connection under the org named at upgrade
// time and blocks until the peer disconnects.
func (s *Server) HandleWebSocket(ws router.WebSocketContext) error {
	orgID, _ := router.GetUpgradeDataWithDefault(ws, "org_id", "").(string)
	return s.serveSocket(ws, orgID)
}

func (s *Server) serveSocket(ws socket, orgID string) error {
	if strings.TrimSpace(orgID) == "" {
		s.wsLog.Info("upgrade rejected conn=%s reason=missing-org", ws.ConnectionID())
		return ws.CloseWithStatus(closePolicyViolation, "org_id is required")
	}

	sub := newSubscriber(ws, s.sendBuffer, s.pingInterval, s.wsLog)
	if err := s.registry.Register(sub, orgID); err != nil {
		s.wsLog.Warn("register failed conn=%s org=%s err=%v", sub.id, orgID, err)
		return ws.CloseWithStatus(closePolicyViolation, err.Error())
	}
	s.wsLog.Debug("subscriber registered conn=%s org=%s", sub.id, orgID)

	defer func() {
		s.registry.Unregister(sub)
		_ = sub.Close()
		s.wsLog.Debug("subscriber closed conn=%s org=%s", sub.id, orgID)
	}()

	go sub.writePump()
	sub.readPump()
	return nil
}
