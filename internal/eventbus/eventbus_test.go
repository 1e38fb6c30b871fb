package eventbus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shardhost/botengine/internal/logger"
)

func TestBroadcastStatusDeliversToSubscriber(t *testing.T) {
	b := New(logger.Discard())
	ch, cleanup := b.SubscribeStatus("user1")
	defer cleanup()

	b.BroadcastStatus("user1", StatusMessage{Type: "bot_status_update", BotID: "bot1", Status: "running"})

	select {
	case data := <-ch:
		var msg StatusMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.BotID != "bot1" || msg.Status != "running" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestBroadcastStatusNoSubscriberNoPanic(t *testing.T) {
	b := New(logger.Discard())
	b.BroadcastStatus("nobody", StatusMessage{Type: "bot_status_update", BotID: "bot1", Status: "running"})
}

func TestSubscribeStatusReplacesPrevious(t *testing.T) {
	b := New(logger.Discard())
	first, _ := b.SubscribeStatus("user1")
	second, cleanup := b.SubscribeStatus("user1")
	defer cleanup()

	if _, ok := <-first; ok {
		t.Fatal("expected previous subscriber channel to be closed on replacement")
	}

	b.BroadcastStatus("user1", StatusMessage{Type: "bot_status_update", BotID: "bot1"})
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("expected new subscriber to receive the broadcast")
	}
}

func TestPublishLogDeliversToSubscriber(t *testing.T) {
	b := New(logger.Discard())
	ch, cleanup := b.SubscribeLogs("bot1")
	defer cleanup()

	b.PublishLog("bot1", LogMessage{Level: "info", Message: "hello"})

	select {
	case data := <-ch:
		var msg LogMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Message != "hello" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for log message")
	}
}
