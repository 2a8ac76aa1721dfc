package vsengine

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with catalog-lifecycle helpers covering
// collection and named-index events.
type Logger struct {
	*slog.Logger
}

// NewLogger returns a Logger writing structured text to stderr,
// discarding records below level.
func NewLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler)}
}

func (l *Logger) LogCreateCollection(name string, err error) {
	if err != nil {
		l.Warn("create_collection", "name", name, "err", err)
		return
	}
	l.Info("create_collection", "name", name)
}

func (l *Logger) LogBuildIndex(kind AlgorithmKind, algName, collName string, err error) {
	if err != nil {
		l.Error("build_index", "kind", kind, "alg", algName, "collection", collName, "err", err)
		return
	}
	l.Info("build_index", "kind", kind, "alg", algName, "collection", collName)
}

func (l *Logger) LogQuery(target string, ef int, n int, err error) {
	if err != nil {
		l.Warn("query", "target", target, "ef", ef, "err", err)
		return
	}
	l.Debug("query", "target", target, "ef", ef, "results", n)
}
