package chatws

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

func openSession(h *Hub, userID int64) *Session {
	session := NewSession(h, nil, userID)
	h.join(session)
	return session
}

func delivery(senderID, recipientID int64, content string) *services.ChatDelivery {
	return &services.ChatDelivery{
		Message: &models.ChatMessage{
			ID:             1,
			ConversationID: 9,
			SenderID:       senderID,
			Content:        content,
			CreatedAt:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		},
		RecipientID: recipientID,
	}
}

func TestPublishReachesEverySessionOfBothParticipants(t *testing.T) {
	hub := NewHub(nil)
	sender := openSession(hub, 1)
	recipientPhone := openSession(hub, 2)
	recipientLaptop := openSession(hub, 2)
	bystander := openSession(hub, 3)

	hub.Publish(delivery(1, 2, "hi"))

	for _, session := range []*Session{sender, recipientPhone, recipientLaptop} {
		select {
		case payload := <-session.outbox:
			var got Frame
			if err := json.Unmarshal(payload, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Type != frameMessage || got.Content != "hi" || got.ConversationID != 9 || got.RecipientID != 2 {
				t.Fatalf("unexpected frame %+v", got)
			}
		default:
			t.Fatalf("session of user %d received nothing", session.userID)
		}
	}

	select {
	case <-bystander.outbox:
		t.Fatalf("bystander should not receive the message")
	default:
	}
}

func TestFramesCarryIDsAsStrings(t *testing.T) {
	payload, err := json.Marshal(Frame{Type: frameMessage, ConversationID: 9, SenderID: 1, RecipientID: 2, Content: "hi"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if raw["conversation_id"] != "9" || raw["sender_id"] != "1" {
		t.Fatalf("expected string ids, got %v", raw)
	}

	var incoming Frame
	if err := json.Unmarshal([]byte(`{"type":"message","conversation_id":"12","content":"yo"}`), &incoming); err != nil {
		t.Fatalf("Unmarshal incoming: %v", err)
	}
	if incoming.ConversationID != 12 {
		t.Fatalf("expected conversation 12, got %d", incoming.ConversationID)
	}
}

func TestPublishDisconnectsFullSessions(t *testing.T) {
	hub := NewHub(nil)
	slow := openSession(hub, 1)
	for i := 0; i < cap(slow.outbox); i++ {
		slow.outbox <- []byte("x")
	}

	hub.Publish(delivery(1, 2, "overflow"))

	if _, ok := hub.sessions[1]; ok {
		t.Fatalf("expected slow session to be removed")
	}
	// leave after a drop must not close the outbox twice.
	hub.leave(slow)
}

func TestRejectOnlyReachesOpenSession(t *testing.T) {
	hub := NewHub(nil)
	session := openSession(hub, 4)

	session.reject("invalid conversation id")

	var got Frame
	if err := json.Unmarshal(<-session.outbox, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != frameError || got.Content != "invalid conversation id" {
		t.Fatalf("unexpected frame %+v", got)
	}

	hub.leave(session)
	session.reject("ignored")
}

func TestSendFailureMessages(t *testing.T) {
	cases := map[error]string{
		fmt.Errorf("wrap: %w", services.ErrBlocked): "messaging is not available for this conversation",
		services.ErrInvalidInput:                    "message content is required",
		pgx.ErrNoRows:                               "conversation not found",
		errors.New("boom"):                          "failed to send message",
	}
	for err, want := range cases {
		if got := sendFailure(err); got != want {
			t.Errorf("sendFailure(%v) = %q, want %q", err, got, want)
		}
	}
}
