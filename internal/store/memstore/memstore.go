// Package memstore is an in-memory store.Store used by tests and by
// standalone demos that don't need durability.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/shardhost/botengine/internal/model"
	"github.com/shardhost/botengine/internal/store"
)

type Store struct {
	mu    sync.Mutex
	bots  map[string]*model.Bot
	files map[string]map[string]*model.BotFile // botID -> filename -> file
	logs  map[string][]*model.BotLogRecord     // botID -> records, oldest first
}

func New() *Store {
	return &Store{
		bots:  map[string]*model.Bot{},
		files: map[string]map[string]*model.BotFile{},
		logs:  map[string][]*model.BotLogRecord{},
	}
}

// Seed inserts a bot and its files directly; it's a test helper, not part
// of store.Store.
func (s *Store) Seed(bot *model.Bot, files []*model.BotFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bot
	s.bots[bot.ID] = &cp
	fm := map[string]*model.BotFile{}
	for _, f := range files {
		cf := *f
		fm[f.Filename] = &cf
	}
	s.files[bot.ID] = fm
}

func (s *Store) GetBot(ctx context.Context, id string) (*model.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bots[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) UpdateBot(ctx context.Context, id string, patch model.BotPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bots[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	if patch.PID != nil {
		b.PID = *patch.PID
	}
	if patch.Memory != nil {
		b.Memory = *patch.Memory
	}
	if patch.CPU != nil {
		b.CPU = *patch.CPU
	}
	if patch.Uptime != nil {
		b.Uptime = *patch.Uptime
	}
	if patch.MainFile != nil {
		b.MainFile = *patch.MainFile
	}
	if patch.LastStart != nil {
		b.LastStart = *patch.LastStart
	}
	return nil
}

func (s *Store) DeleteBot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bots[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.bots, id)
	delete(s.files, id)
	delete(s.logs, id)
	return nil
}

func (s *Store) GetBotFiles(ctx context.Context, botID string) ([]*model.BotFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fm := s.files[botID]
	out := make([]*model.BotFile, 0, len(fm))
	for _, f := range fm {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func (s *Store) UpdateBotFile(ctx context.Context, botID, filename, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fm, ok := s.files[botID]
	if !ok {
		return store.ErrNotFound
	}
	f, ok := fm[filename]
	if !ok {
		return store.ErrNotFound
	}
	f.Content = content
	f.Size = len(content)
	return nil
}

func (s *Store) GetBotLogs(ctx context.Context, botID string, limit int) ([]*model.BotLogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.logs[botID]
	n := len(all)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*model.BotLogRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		cp := *all[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) CreateBotLog(ctx context.Context, rec *model.BotLogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.logs[rec.BotID] = append(s.logs[rec.BotID], &cp)
	return nil
}

var _ store.Store = (*Store)(nil)
