package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// InitLogger configures the global logger. Output always goes to stdout; when
// file is set it is also written to a size-rotated log file.
func InitLogger(file string, maxSizeMB, maxBackups, maxAgeDays int, compress bool, level string) {
	writers := []io.Writer{os.Stdout}
	if file != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   compress,
		})
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("service", "neon-visitors").
		Logger().
		Level(parseLevel(level))

	mu.Lock()
	logger = l
	mu.Unlock()
}

// SetLogLevel changes the level of the global logger. Unknown levels fall back to info.
func SetLogLevel(level string) {
	mu.Lock()
	logger = logger.Level(parseLevel(level))
	mu.Unlock()
}

// SetLoggerForTest replaces the global logger.
func SetLoggerForTest(l zerolog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs msg at debug level with alternating key/value pairs.
func Debug(msg string, kv ...any) {
	l := current()
	withFields(l.Debug(), kv).Msg(msg)
}

// Info logs msg at info level with alternating key/value pairs.
func Info(msg string, kv ...any) {
	l := current()
	withFields(l.Info(), kv).Msg(msg)
}

// Warn logs msg at warn level with alternating key/value pairs.
func Warn(msg string, kv ...any) {
	l := current()
	withFields(l.Warn(), kv).Msg(msg)
}

// Error logs msg at error level with alternating key/value pairs.
func Error(msg string, kv ...any) {
	l := current()
	withFields(l.Error(), kv).Msg(msg)
}

func withFields(e *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			// odd number of arguments
			e = e.Interface(key, nil)
			break
		}
		switch v := kv[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}
