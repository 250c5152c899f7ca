// Package chatws pushes chat messages to the websocket sessions of both
// conversation participants.
package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

const outboxSize = 32

const (
	frameMessage = "message"
	frameError   = "error"
)

type sender interface {
	SendMessage(
		ctx context.Context,
		actorID int64,
		conversationID int64,
		content string,
	) (*services.ChatDelivery, error)
}

// Frame is the JSON envelope exchanged over the socket. Ids travel as strings.
type Frame struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id,string,omitempty"`
	SenderID       int64  `json:"sender_id,string,omitempty"`
	RecipientID    int64  `json:"recipient_id,string,omitempty"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// Hub tracks the open sessions of every connected student. A student may
// hold several sessions at once, one per tab or device.
type Hub struct {
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[int64]map[*Session]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:   logger,
		sessions: make(map[int64]map[*Session]struct{}),
	}
}

func (h *Hub) join(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[s.userID]
	if !ok {
		set = make(map[*Session]struct{})
		h.sessions[s.userID] = set
	}
	set[s] = struct{}{}
	h.logger.Debug("chat session opened", zap.Int64("user_id", s.userID), zap.Int("sessions", len(set)))
}

func (h *Hub) leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(s)
}

// dropLocked removes s and closes its outbox exactly once.
func (h *Hub) dropLocked(s *Session) {
	set, ok := h.sessions[s.userID]
	if !ok {
		return
	}
	if _, exists := set[s]; !exists {
		return
	}
	delete(set, s)
	close(s.outbox)
	if len(set) == 0 {
		delete(h.sessions, s.userID)
	}
}

// Publish sends a stored message to every session of its sender and
// recipient.
func (h *Hub) Publish(delivery *services.ChatDelivery) {
	if delivery == nil || delivery.Message == nil {
		return
	}
	frame := Frame{
		Type:           frameMessage,
		ConversationID: delivery.Message.ConversationID,
		SenderID:       delivery.Message.SenderID,
		RecipientID:    delivery.RecipientID,
		Content:        delivery.Message.Content,
		Timestamp:      services.FormatChatTimestamp(delivery.Message.CreatedAt),
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("encode chat frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.fanOutLocked(frame.SenderID, payload)
	if frame.RecipientID != frame.SenderID {
		h.fanOutLocked(frame.RecipientID, payload)
	}
}

// fanOutLocked never blocks: a session whose outbox is full is disconnected.
func (h *Hub) fanOutLocked(userID int64, payload []byte) {
	for s := range h.sessions[userID] {
		select {
		case s.outbox <- payload:
		default:
			h.logger.Warn("dropping slow chat session", zap.Int64("user_id", userID))
			h.dropLocked(s)
		}
	}
}

// Session is one websocket connection of a student.
type Session struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	outbox chan []byte
}

func NewSession(hub *Hub, conn *websocket.Conn, userID int64) *Session {
	return &Session{
		hub:    hub,
		conn:   conn,
		userID: userID,
		outbox: make(chan []byte, outboxSize),
	}
}

// Serve registers the session and reads frames until the connection closes.
// Each accepted message is stored through service before it is published.
func (s *Session) Serve(ctx context.Context, service sender) {
	s.hub.join(s)
	go s.writeLoop()
	defer func() {
		s.hub.leave(s)
		_ = s.conn.Close()
	}()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming Frame
		if err := json.Unmarshal(payload, &incoming); err != nil {
			s.reject("invalid message payload")
			continue
		}
		if incoming.Type != frameMessage {
			s.reject("unsupported message type")
			continue
		}
		if incoming.ConversationID <= 0 {
			s.reject("invalid conversation id")
			continue
		}

		delivery, err := service.SendMessage(ctx, s.userID, incoming.ConversationID, incoming.Content)
		if err != nil {
			s.hub.logger.Debug("chat message rejected",
				zap.Int64("user_id", s.userID),
				zap.Int64("conversation_id", incoming.ConversationID),
				zap.Error(err),
			)
			s.reject(sendFailure(err))
			continue
		}
		s.hub.Publish(delivery)
	}
}

// writeLoop drains the outbox. A closed outbox means the hub dropped the
// session, so the connection is closed to stop the reader as well.
func (s *Session) writeLoop() {
	defer func() {
		_ = s.conn.Close()
	}()
	for payload := range s.outbox {
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// reject queues an error frame for this session only.
func (s *Session) reject(reason string) {
	payload, err := json.Marshal(Frame{
		Type:      frameError,
		Content:   reason,
		Timestamp: services.FormatChatTimestamp(time.Now().UTC()),
	})
	if err != nil {
		return
	}

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, open := s.hub.sessions[s.userID][s]; !open {
		return
	}
	select {
	case s.outbox <- payload:
	default:
		s.hub.dropLocked(s)
	}
}

func sendFailure(err error) string {
	switch {
	case errors.Is(err, services.ErrBlocked):
		return "messaging is not available for this conversation"
	case errors.Is(err, services.ErrInvalidInput):
		return "message content is required"
	case errors.Is(err, services.ErrForbidden), errors.Is(err, pgx.ErrNoRows):
		return "conversation not found"
	default:
		return "failed to send message"
	}
}
