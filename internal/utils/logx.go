package utils

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogxManager hands out one zap logger per component, each teeing its
// info, error and debug output into separate files.
type LogxManager struct {
	basePath string
	debug    bool
	loggers  map[string]*zap.Logger
	files    []*os.File
	mu       sync.RWMutex
}

func NewManager(base string, debug bool) *LogxManager {
	m := &LogxManager{basePath: base, debug: debug, loggers: make(map[string]*zap.Logger)}

	if err := os.MkdirAll(m.basePath, 0744); err != nil {
		log.Printf("failed to create base log dir %s: %v", m.basePath, err)
	}
	return m
}

// Logger returns the logger for component, creating its log directory on first use
func (m *LogxManager) Logger(component string) *zap.Logger {
	m.mu.RLock()
	if lg, ok := m.loggers[component]; ok {
		m.mu.RUnlock()
		return lg
	}
	m.mu.RUnlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	if lg, ok := m.loggers[component]; ok {
		return lg
	}
	dir := filepath.Join(m.basePath, component)
	if err := os.MkdirAll(dir, 0744); err != nil {
		log.Printf("failed to create log dir %s: %v", dir, err)
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:     "ts",
		MessageKey:  "msg",
		NameKey:     "logger",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeTime:  zapcore.TimeEncoderOfLayout("02/Jan/2006:15:04:05 -0700"),
		EncodeName:  zapcore.FullNameEncoder,
		EncodeLevel: zapcore.CapitalLevelEncoder,
		LevelKey:    "level",
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)

	infoOut := zapcore.AddSync(m.openLogFile(filepath.Join(dir, "info.log")))
	errorOut := zapcore.AddSync(m.openLogFile(filepath.Join(dir, "error.log")))
	dbgOut := zapcore.AddSync(m.openLogFile(filepath.Join(dir, "debug.log")))

	infoLv := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l == zapcore.InfoLevel })
	errLv := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel })
	dbgLv := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return m.debug && l == zapcore.DebugLevel })
	warnLv := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.WarnLevel })

	tee := zapcore.NewTee(
		zapcore.NewCore(encoder, infoOut, infoLv),
		zapcore.NewCore(encoder, errorOut, errLv),
		zapcore.NewCore(encoder, dbgOut, dbgLv),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), warnLv),
	)
	lg := zap.New(tee).Named(component)
	m.loggers[component] = lg
	return lg
}

func (m *LogxManager) openLogFile(path string) *os.File {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file %s: %v", path, err)
		return os.Stdout
	}
	m.files = append(m.files, f)
	return f
}

// Close flushes every logger and closes the log files
func (m *LogxManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lg := range m.loggers {
		_ = lg.Sync()
	}
	for _, f := range m.files {
		if err := f.Close(); err != nil {
			log.Printf("failed to close log file %s: %v", f.Name(), err)
		}
	}
	m.files = nil
	m.loggers = make(map[string]*zap.Logger)
}
