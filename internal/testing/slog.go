package testing

import (
	"context"
	"log/slog"
	"sync"
)

// SlogHandler captures log records so tests can make assertions about what
// was logged
type SlogHandler struct {
	records  []slog.Record
	minLevel slog.Leveler
	mu       sync.Mutex
}

// NewSlogHandler returns a SlogHandler that captures everything at debug
// level and above
func NewSlogHandler() *SlogHandler {
	var minLevel slog.LevelVar
	minLevel.Set(slog.LevelDebug)
	return &SlogHandler{
		minLevel: &minLevel,
	}
}

// Logger returns a Logger that writes to this handler
func (h *SlogHandler) Logger() *slog.Logger {
	return slog.New(h)
}

// Messages returns the messages of every captured record, in order
func (h *SlogHandler) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	res := make([]string, len(h.records))
	for i, r := range h.records {
		res[i] = r.Message
	}
	return res
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel.Level()
}

func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *SlogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *SlogHandler) WithGroup(_ string) slog.Handler {
	return h
}
