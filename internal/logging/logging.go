package logging

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wichananm65/pet-care-backend/internal/user"
)

// New builds the process logger and installs it as the zerolog global so
// packages can log through github.com/rs/zerolog/log.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	log.Logger = logger
	zerolog.SetGlobalLevel(lvl)
	return logger
}

// Middleware logs one line per request once the handler chain has finished.
func Middleware(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		evt := logger.Info()
		if status >= fiber.StatusInternalServerError {
			evt = logger.Error().Err(err)
		}
		if id, uerr := user.GetUserIDFromCtx(c); uerr == nil {
			evt = evt.Int("user_id", id)
		}
		evt.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request completed")
		return err
	}
}
