package core

import (
	"io"
	"log/slog"
	"os"
	"path"
	"sync"

	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// LogSink hands out per-router loggers that share one console writer and,
// optionally, one log file.
type LogSink struct {
	w     io.Writer
	level slog.Level
	file  *os.File
	mu    sync.Mutex
}

func NewLogSink(w io.Writer, level slog.Level, logPath string) (*LogSink, error) {
	sink := &LogSink{w: w, level: level}
	if logPath != "" {
		err := os.MkdirAll(path.Dir(logPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, err
		}
		sink.file = f
	}
	return sink, nil
}

// Logger returns a logger whose console lines are prefixed with prefix.
// A nil sink discards everything.
func (l *LogSink) Logger(prefix string) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	handlers := make([]slog.Handler, 0, 2)
	if l.w != nil {
		handlers = append(handlers,
			tint.NewHandler(l.w, &tint.Options{
				Level:        l.level,
				AddSource:    false,
				CustomPrefix: prefix,
				ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
					if attr.Key == "time" {
						return slog.Attr{}
					}
					return attr
				},
			}))
	}
	if l.file != nil {
		handlers = append(handlers, slog.NewTextHandler(l.file, &slog.HandlerOptions{Level: l.level}).
			WithAttrs([]slog.Attr{slog.String("router", prefix)}))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

func (l *LogSink) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
