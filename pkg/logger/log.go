package logger

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger создает основной логгер приложения.
// Пишем одновременно в stdout и в файл, как в проде, так и локально.
func NewLogger() *zap.Logger {
	logPath := os.Getenv("LOG_PATH")
	if logPath == "" {
		logPath = "./logs/app.log"
	}

	cfg := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l
}

// Named возвращает дочерний логгер для подсистемы (workflow, offers, auth...).
func Named(base *zap.Logger, name string) *zap.Logger {
	return base.Named(name)
}
