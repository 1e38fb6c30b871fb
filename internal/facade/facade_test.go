package facade

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shardhost/botengine/internal/eventbus"
	"github.com/shardhost/botengine/internal/logger"
	"github.com/shardhost/botengine/internal/metrics"
	"github.com/shardhost/botengine/internal/model"
	"github.com/shardhost/botengine/internal/store/memstore"
	"github.com/shardhost/botengine/internal/supervisor"
	"github.com/shardhost/botengine/internal/workspace"
)

func newTestFacade(t *testing.T) (*Facade, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	ws := workspace.New(t.TempDir())
	log := logger.Discard()
	bus := eventbus.New(log)
	sup := supervisor.New(supervisor.Config{WorkspaceRoot: t.TempDir()}, st, ws, bus, log)
	return New(st, sup, ws, bus, metrics.NewCollector(), log), st
}

func seedBot(st *memstore.Store, id, owner string) {
	st.Seed(&model.Bot{ID: id, OwnerID: owner, Name: "demo", Runtime: model.RuntimeA, Status: model.StatusStopped},
		[]*model.BotFile{{ID: "f1", BotID: id, Filename: "main.py", Content: "print(1)"}})
}

func TestOwnedRejectsWrongCaller(t *testing.T) {
	f, st := newTestFacade(t)
	seedBot(st, "bot1", "alice")

	if _, err := f.IsRunning(context.Background(), "mallory", "bot1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestOwnedRejectsMissingBot(t *testing.T) {
	f, _ := newTestFacade(t)
	if _, err := f.IsRunning(context.Background(), "alice", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFileRejectsUnknownFilename(t *testing.T) {
	f, st := newTestFacade(t)
	seedBot(st, "bot1", "alice")

	err := f.UpdateFile(context.Background(), "alice", "bot1", "nope.py", "x")
	if !errors.Is(err, ErrUnknownFilename) {
		t.Fatalf("expected ErrUnknownFilename, got %v", err)
	}
}

func TestUpdateFileSucceedsForOwnedExistingFile(t *testing.T) {
	f, st := newTestFacade(t)
	seedBot(st, "bot1", "alice")

	if err := f.UpdateFile(context.Background(), "alice", "bot1", "main.py", "print(2)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	files, _ := st.GetBotFiles(context.Background(), "bot1")
	if files[0].Content != "print(2)" {
		t.Fatalf("content not updated: %q", files[0].Content)
	}
}

func TestReadLogsReturnsNewestFirst(t *testing.T) {
	f, st := newTestFacade(t)
	seedBot(st, "bot1", "alice")
	st.CreateBotLog(context.Background(), &model.BotLogRecord{ID: "l1", BotID: "bot1", Message: "first"})
	st.CreateBotLog(context.Background(), &model.BotLogRecord{ID: "l2", BotID: "bot1", Message: "second"})

	records, err := f.ReadLogs(context.Background(), "alice", "bot1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[0].Message != "second" {
		t.Fatalf("got %+v", records)
	}
}

func TestDeleteRemovesBotRecord(t *testing.T) {
	f, st := newTestFacade(t)
	seedBot(st, "bot1", "alice")

	if err := f.Delete(context.Background(), "alice", "bot1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := st.GetBot(context.Background(), "bot1"); err == nil {
		t.Fatal("expected bot to be gone")
	}
}

func TestDeleteRejectsWrongCaller(t *testing.T) {
	f, st := newTestFacade(t)
	seedBot(st, "bot1", "alice")

	if err := f.Delete(context.Background(), "mallory", "bot1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeleteBroadcastsBotDeleted(t *testing.T) {
	st := memstore.New()
	ws := workspace.New(t.TempDir())
	log := logger.Discard()
	bus := eventbus.New(log)
	sup := supervisor.New(supervisor.Config{WorkspaceRoot: t.TempDir()}, st, ws, bus, log)
	f := New(st, sup, ws, bus, metrics.NewCollector(), log)
	seedBot(st, "bot1", "alice")

	ch, cleanup := bus.SubscribeStatus("alice")
	defer cleanup()

	if err := f.Delete(context.Background(), "alice", "bot1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), `"type":"bot_deleted"`) || !strings.Contains(string(msg), `"botId":"bot1"`) {
			t.Fatalf("unexpected broadcast payload: %s", msg)
		}
	default:
		t.Fatal("expected a bot_deleted broadcast")
	}
}
