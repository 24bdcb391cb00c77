package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	flushEvery = 5 * time.Second
	flushSize  = 50
)

// PGHandler is an slog.Handler that batches ERROR+ logs into system_logs.
type PGHandler struct {
	db    *gorm.DB
	attrs []slog.Attr
	sink  *batch
}

type batch struct {
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	h := &PGHandler{
		db: db,
		sink: &batch{
			buffer: make([]models.SystemLog, 0, flushSize),
			ticker: time.NewTicker(flushEvery),
			done:   make(chan struct{}),
		},
	}
	go h.flushLoop()
	return h
}

func (h *PGHandler) flushLoop() {
	for {
		select {
		case <-h.sink.ticker.C:
			h.flush()
		case <-h.sink.done:
			h.flush()
			return
		}
	}
}

func (h *PGHandler) flush() {
	h.sink.mu.Lock()
	if len(h.sink.buffer) == 0 {
		h.sink.mu.Unlock()
		return
	}
	pending := h.sink.buffer
	h.sink.buffer = make([]models.SystemLog, 0, flushSize)
	h.sink.mu.Unlock()

	if err := h.db.CreateInBatches(pending, flushSize).Error; err != nil {
		// stdout only; logging through slog here would recurse into this handler
		slog.Warn("failed to flush system logs", "error", err.Error(), "count", len(pending))
	}
}

// Stop flushes what is buffered and ends the background loop.
func (h *PGHandler) Stop() {
	h.sink.once.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := toSystemLog(record, h.attrs)

	h.sink.mu.Lock()
	h.sink.buffer = append(h.sink.buffer, entry)
	needFlush := len(h.sink.buffer) >= flushSize
	h.sink.mu.Unlock()

	if needFlush {
		go h.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &PGHandler{db: h.db, attrs: merged, sink: h.sink}
}

func (h *PGHandler) WithGroup(string) slog.Handler {
	return h
}

// toSystemLog maps well-known attribute keys onto columns; everything else
// lands in the extra jsonb column.
func toSystemLog(record slog.Record, preset []slog.Attr) models.SystemLog {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "method":
			entry.Method = a.Value.String()
		case "path":
			entry.Path = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range preset {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}
	return entry
}
