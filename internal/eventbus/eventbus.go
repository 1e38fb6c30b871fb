// Package eventbus delivers status transitions and log records to live
// WebSocket clients. An in-memory pub/sub adapted for a strict
// single-subscriber-per-user invariant: broadcast is a register-or-replace
// of one channel per user, not a fan-out list.
package eventbus

import (
	"encoding/json"
	"sync"

	"github.com/shardhost/botengine/internal/logger"
)

// StatusMessage is published on a user's status channel whenever one of
// their bots changes state, or is deleted.
type StatusMessage struct {
	Type   string `json:"type"`
	BotID  string `json:"botId"`
	Status string `json:"status,omitempty"`
}

// LogMessage is published on a bot's log channel for every appended
// BotLogRecord.
type LogMessage struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

// Bus is a process-wide broadcaster. Safe for concurrent use.
type Bus struct {
	log logger.Logger

	mu       sync.RWMutex
	statusCh map[string]chan []byte // userID -> at most one subscriber
	logCh    map[string]chan []byte // botID -> at most one subscriber
}

// New returns an empty Bus.
func New(log logger.Logger) *Bus {
	return &Bus{
		log:      log,
		statusCh: make(map[string]chan []byte),
		logCh:    make(map[string]chan []byte),
	}
}

// SubscribeStatus registers the caller as userID's sole status subscriber,
// replacing any previous one. cleanup unregisters it.
func (b *Bus) SubscribeStatus(userID string) (ch <-chan []byte, cleanup func()) {
	c := make(chan []byte, 32)

	b.mu.Lock()
	if old, ok := b.statusCh[userID]; ok {
		close(old)
	}
	b.statusCh[userID] = c
	b.mu.Unlock()

	var once sync.Once
	return c, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.statusCh[userID] == c {
				delete(b.statusCh, userID)
				close(c)
			}
		})
	}
}

// SubscribeLogs registers the caller as botID's sole log subscriber,
// replacing any previous one.
func (b *Bus) SubscribeLogs(botID string) (ch <-chan []byte, cleanup func()) {
	c := make(chan []byte, 256)

	b.mu.Lock()
	if old, ok := b.logCh[botID]; ok {
		close(old)
	}
	b.logCh[botID] = c
	b.mu.Unlock()

	var once sync.Once
	return c, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.logCh[botID] == c {
				delete(b.logCh, botID)
				close(c)
			}
		})
	}
}

// BroadcastStatus delivers msg to userID's subscriber iff one is
// registered. Absent or full channels silently no-op; this must never
// block supervisor progress.
func (b *Bus) BroadcastStatus(userID string, msg StatusMessage) {
	b.send(b.statusChannel(userID), msg)
}

// PublishLog delivers msg on botID's log channel iff a subscriber is
// registered.
func (b *Bus) PublishLog(botID string, msg LogMessage) {
	b.send(b.logChannel(botID), msg)
}

func (b *Bus) statusChannel(userID string) chan []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.statusCh[userID]
}

func (b *Bus) logChannel(botID string) chan []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.logCh[botID]
}

func (b *Bus) send(ch chan []byte, payload interface{}) {
	if ch == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		b.log.Error("[eventbus] marshal failed: %v", err)
		return
	}
	select {
	case ch <- data:
	default:
		b.log.Warn("[eventbus] dropping message, subscriber channel full")
	}
}
