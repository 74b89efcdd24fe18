package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = newConsole(zapcore.InfoLevel)
)

// newConsole construit un logger console coloré horodaté HH:MM:SS
func newConsole(level zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.CallerKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core)
}

// Init remplace le logger global selon le niveau demandé (debug, info, warn, error)
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	mu.Lock()
	base = newConsole(lvl)
	mu.Unlock()
	return nil
}

// Set injecte un logger existant (tests, outils)
func Set(l *zap.Logger) {
	mu.Lock()
	base = l
	mu.Unlock()
}

// L retourne le logger zap sous-jacent pour les logs structurés
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync vide les buffers avant l'arrêt
func Sync() {
	_ = L().Sync()
}

// Info log une information générale
func Info(message string, args ...interface{}) {
	L().Info(fmt.Sprintf(message, args...))
}

// Success log un succès
func Success(message string, args ...interface{}) {
	L().Info("✓ "+fmt.Sprintf(message, args...), zap.Bool("ok", true))
}

// Warning log un avertissement
func Warning(message string, args ...interface{}) {
	L().Warn(fmt.Sprintf(message, args...))
}

// Error log une erreur
func Error(message string, args ...interface{}) {
	L().Error(fmt.Sprintf(message, args...))
}

// Debug log un message de debug, filtré hors niveau debug
func Debug(message string, args ...interface{}) {
	L().Debug(fmt.Sprintf(message, args...))
}

// Request log une requête HTTP avec durée
func Request(method, path string, statusCode int, duration time.Duration) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", statusCode),
		zap.String("duration", formatDuration(duration)),
	}

	switch {
	case statusCode >= 500:
		L().Error("request", fields...)
	case statusCode >= 400:
		L().Warn("request", fields...)
	default:
		L().Info("request", fields...)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
