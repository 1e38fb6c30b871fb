// Package store defines the persistence interface the supervision engine
// consumes. It is the only shape the core needs from a relational
// collaborator; concrete adapters live in memstore (tests) and sqlstore
// (standalone single-host deployment).
package store

import (
	"context"
	"errors"

	"github.com/shardhost/botengine/internal/model"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	GetBot(ctx context.Context, id string) (*model.Bot, error)
	UpdateBot(ctx context.Context, id string, patch model.BotPatch) error
	DeleteBot(ctx context.Context, id string) error

	GetBotFiles(ctx context.Context, botID string) ([]*model.BotFile, error)
	UpdateBotFile(ctx context.Context, botID, filename, content string) error

	GetBotLogs(ctx context.Context, botID string, limit int) ([]*model.BotLogRecord, error)
	CreateBotLog(ctx context.Context, rec *model.BotLogRecord) error
}
