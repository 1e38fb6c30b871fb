package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shardhost/botengine/internal/eventbus"
	"github.com/shardhost/botengine/internal/facade"
	"github.com/shardhost/botengine/internal/health"
	"github.com/shardhost/botengine/internal/logger"
	"github.com/shardhost/botengine/internal/metrics"
	"github.com/shardhost/botengine/internal/model"
	"github.com/shardhost/botengine/internal/store/memstore"
	"github.com/shardhost/botengine/internal/supervisor"
	"github.com/shardhost/botengine/internal/workspace"
)

func newTestServer(t *testing.T) (*Server, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	ws := workspace.New(t.TempDir())
	log := logger.Discard()
	bus := eventbus.New(log)
	sup := supervisor.New(supervisor.Config{WorkspaceRoot: t.TempDir()}, st, ws, bus, log)
	mcol := metrics.NewCollector()
	fc := facade.New(st, sup, ws, bus, mcol, log)
	return New(bus, health.NewChecker(), mcol, fc, log), st
}

func seedBot(st *memstore.Store, id, owner string) {
	st.Seed(&model.Bot{ID: id, OwnerID: owner, Name: "demo", Runtime: model.RuntimeA, Status: model.StatusStopped},
		[]*model.BotFile{{ID: "f1", BotID: id, Filename: "main.py", Content: "print(1)"}})
}

func TestHealthzOK(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminAPIRejectsWrongCallerWithForbidden(t *testing.T) {
	srv, st := newTestServer(t)
	seedBot(st, "bot1", "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/bots/bot1/running", nil)
	req.Header.Set("X-User-Id", "mallory")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminAPIReturnsNotFoundForMissingBot(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/bots/ghost/running", nil)
	req.Header.Set("X-User-Id", "alice")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminAPIUpdateFileRejectsUnknownFilenameWithBadRequest(t *testing.T) {
	srv, st := newTestServer(t)
	seedBot(st, "bot1", "alice")

	req := httptest.NewRequest(http.MethodPut, "/api/bots/bot1/files/nope.py", strings.NewReader("x"))
	req.Header.Set("X-User-Id", "alice")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminAPIUpdateFileSucceeds(t *testing.T) {
	srv, st := newTestServer(t)
	seedBot(st, "bot1", "alice")

	req := httptest.NewRequest(http.MethodPut, "/api/bots/bot1/files/main.py", strings.NewReader("print(2)"))
	req.Header.Set("X-User-Id", "alice")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	files, _ := st.GetBotFiles(context.Background(), "bot1")
	if files[0].Content != "print(2)" {
		t.Fatalf("content not updated: %q", files[0].Content)
	}
}

func TestAdminAPIDeleteRemovesBot(t *testing.T) {
	srv, st := newTestServer(t)
	seedBot(st, "bot1", "alice")

	req := httptest.NewRequest(http.MethodDelete, "/api/bots/bot1", nil)
	req.Header.Set("X-User-Id", "alice")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := st.GetBot(context.Background(), "bot1"); err == nil {
		t.Fatal("expected bot to be gone")
	}
}
