package logger

import "sync"

// BufferPrinter records printed lines in memory; tests assert against it.
type BufferPrinter struct {
	mu    sync.Mutex
	Lines []Line
}

type Line struct {
	Level   Level
	Message string
	Fields  Fields
}

func (p *BufferPrinter) Print(level Level, msg string, fields Fields) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := append(Fields{}, fields...)
	p.Lines = append(p.Lines, Line{Level: level, Message: msg, Fields: cp})
}

func (p *BufferPrinter) All() []Line {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Line{}, p.Lines...)
}
