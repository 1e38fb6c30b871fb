package sqlstore

import (
	"context"
	"testing"

	"github.com/shardhost/botengine/internal/model"
	"github.com/shardhost/botengine/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestDeleteBotCascadesToFilesAndLogs(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	bot := &model.Bot{ID: "bot1", OwnerID: "alice", Name: "demo", Runtime: model.RuntimeA}
	if err := st.CreateBot(ctx, bot); err != nil {
		t.Fatalf("create bot: %v", err)
	}
	if err := st.CreateBotFile(ctx, &model.BotFile{BotID: "bot1", Filename: "main.py", Content: "print(1)"}); err != nil {
		t.Fatalf("create bot file: %v", err)
	}
	if err := st.CreateBotLog(ctx, &model.BotLogRecord{BotID: "bot1", Severity: model.SeverityInfo, Message: "started"}); err != nil {
		t.Fatalf("create bot log: %v", err)
	}

	if err := st.DeleteBot(ctx, "bot1"); err != nil {
		t.Fatalf("delete bot: %v", err)
	}

	if _, err := st.GetBot(ctx, "bot1"); err == nil {
		t.Fatal("expected bot row to be gone")
	}
	files, err := st.GetBotFiles(ctx, "bot1")
	if err != nil {
		t.Fatalf("get bot files: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected cascade to remove bot_files, found %d", len(files))
	}
	logs, err := st.GetBotLogs(ctx, "bot1", 10)
	if err != nil {
		t.Fatalf("get bot logs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected cascade to remove bot_log_records, found %d", len(logs))
	}
}

func TestDeleteBotMissingReturnsNotFound(t *testing.T) {
	st := openTestStore(t)
	if err := st.DeleteBot(context.Background(), "ghost"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
