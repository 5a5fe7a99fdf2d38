package utils

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger   zerolog.Logger
	loggerMu sync.RWMutex
)

func init() {
	InitLogger("info", "json", os.Stderr)
}

// InitLogger configures the process-wide logger. format is "json" or "console".
func InitLogger(level, format string, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	w := out
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	loggerMu.Lock()
	logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	loggerMu.Unlock()
}

func Logger() *zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	l := logger
	return &l
}

func LogError(err error, context string) {
	if err == nil {
		return
	}
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file = "unknown"
		line = 0
	}
	Logger().Error().
		Err(err).
		Str("caller", filepath.Base(file)).
		Int("line", line).
		Msg(context)
}
