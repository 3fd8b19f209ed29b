package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base  = zap.NewNop()
	sugar = base.Sugar()
)

// Init инициализирует zap логгер с уровнем level ("debug", "info", ...)
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()

	// Настройка формата времени
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := config.Build()
	if err != nil {
		return err
	}

	base = logger
	sugar = logger.Sugar()
	return nil
}

// Log возвращает структурный логгер для передачи в компоненты
func Log() *zap.Logger {
	return base
}

func Sugar() *zap.SugaredLogger {
	return sugar
}

// RequestResponseLogger — middleware-логер для входящих HTTP-запросов.
func RequestResponseLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		uri := c.Request.RequestURI
		method := c.Request.Method

		c.Next() // Выполнение следующего handler

		sugar.Infoln(
			"uri", uri,
			"method", method,
			"duration", time.Since(start),
			"status", c.Writer.Status(),
			"size", c.Writer.Size(),
		)
	}
}

func Close() {
	if sugar != nil {
		sugar.Sync()
	}
}
