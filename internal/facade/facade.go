// Package facade is the HTTP collaborator's single entry point into the
// engine: every operation validates that the caller owns the bot before
// touching the supervisor or the store.
package facade

import (
	"context"
	"errors"
	"fmt"

	"github.com/shardhost/botengine/internal/eventbus"
	"github.com/shardhost/botengine/internal/logger"
	"github.com/shardhost/botengine/internal/metrics"
	"github.com/shardhost/botengine/internal/model"
	"github.com/shardhost/botengine/internal/store"
	"github.com/shardhost/botengine/internal/supervisor"
	"github.com/shardhost/botengine/internal/workspace"
)

var (
	ErrNotFound        = errors.New("bot not found")
	ErrForbidden       = errors.New("caller does not own this bot")
	ErrUnknownFilename = errors.New("unknown filename")
)

const defaultLogLimit = 100

// Facade is the engine's public surface.
type Facade struct {
	store store.Store
	sup   *supervisor.Supervisor
	ws    *workspace.Materializer
	bus   *eventbus.Bus
	mcol  *metrics.Collector // optional; nil disables metric cleanup on delete
	log   logger.Logger
}

func New(st store.Store, sup *supervisor.Supervisor, ws *workspace.Materializer, bus *eventbus.Bus, mcol *metrics.Collector, log logger.Logger) *Facade {
	return &Facade{store: st, sup: sup, ws: ws, bus: bus, mcol: mcol, log: log}
}

func (f *Facade) owned(ctx context.Context, callerID, botID string) (*model.Bot, error) {
	bot, err := f.store.GetBot(ctx, botID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if bot.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return bot, nil
}

// Start starts botID on callerID's behalf.
func (f *Facade) Start(ctx context.Context, callerID, botID string) (supervisor.Result, error) {
	if _, err := f.owned(ctx, callerID, botID); err != nil {
		return supervisor.Result{}, err
	}
	return f.sup.Start(ctx, botID), nil
}

// Stop stops botID on callerID's behalf.
func (f *Facade) Stop(ctx context.Context, callerID, botID string) (supervisor.Result, error) {
	if _, err := f.owned(ctx, callerID, botID); err != nil {
		return supervisor.Result{}, err
	}
	return f.sup.Stop(ctx, botID), nil
}

// Restart restarts botID on callerID's behalf.
func (f *Facade) Restart(ctx context.Context, callerID, botID string) (supervisor.Result, error) {
	if _, err := f.owned(ctx, callerID, botID); err != nil {
		return supervisor.Result{}, err
	}
	return f.sup.Restart(ctx, botID), nil
}

// IsRunning reports whether botID currently has a live Process Handle.
func (f *Facade) IsRunning(ctx context.Context, callerID, botID string) (bool, error) {
	if _, err := f.owned(ctx, callerID, botID); err != nil {
		return false, err
	}
	return f.sup.IsRunning(botID), nil
}

// ReadLogs returns the most recent limit log records, newest first. A
// non-positive limit is replaced with the default of 100.
func (f *Facade) ReadLogs(ctx context.Context, callerID, botID string, limit int) ([]*model.BotLogRecord, error) {
	if _, err := f.owned(ctx, callerID, botID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLogLimit
	}
	return f.store.GetBotLogs(ctx, botID, limit)
}

// UpdateFile overwrites one of botID's persisted files. The filename must
// already exist; this operation does not create new files.
func (f *Facade) UpdateFile(ctx context.Context, callerID, botID, filename, content string) error {
	if _, err := f.owned(ctx, callerID, botID); err != nil {
		return err
	}
	files, err := f.store.GetBotFiles(ctx, botID)
	if err != nil {
		return err
	}
	found := false
	for _, bf := range files {
		if bf.Filename == filename {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownFilename, filename)
	}
	return f.store.UpdateBotFile(ctx, botID, filename, content)
}

// Delete stops botID if running, removes its workspace directory, then
// deletes the bot record through the store, whose DeleteBot cascades to
// the bot's files and logs, and broadcasts bot_deleted to the owner's
// status subscriber.
func (f *Facade) Delete(ctx context.Context, callerID, botID string) error {
	bot, err := f.owned(ctx, callerID, botID)
	if err != nil {
		return err
	}
	if f.sup.IsRunning(botID) {
		f.sup.Stop(ctx, botID)
	}
	if err := f.ws.Remove(botID); err != nil {
		f.log.Warn("[facade] workspace removal failed for bot %s: %v", botID, err)
	}
	if err := f.store.DeleteBot(ctx, botID); err != nil {
		return err
	}
	if f.mcol != nil {
		f.mcol.ClearBot(botID)
	}
	if f.bus != nil {
		f.bus.BroadcastStatus(bot.OwnerID, eventbus.StatusMessage{Type: "bot_deleted", BotID: botID})
	}
	f.log.Info("[facade] bot %s deleted by %s", botID, callerID)
	return nil
}
