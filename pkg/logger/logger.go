package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init builds the process logger. "production"/"prod" gets JSON output at
// info level, anything else the development console encoder at debug level.
func Init(env string) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return
	}

	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debug(msg string, keysAndValues ...interface{}) {
	get().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	get().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	get().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	get().Errorw(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	get().Fatalw(msg, keysAndValues...)
}

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = get().Sync()
}
