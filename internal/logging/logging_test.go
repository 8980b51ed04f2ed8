package logging

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func TestMiddleware_LogsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	app := fiber.New()
	app.Use(Middleware(logger))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTeapot).SendString("pong")
	})

	res, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusTeapot {
		t.Fatalf("expected 418, got %d", res.StatusCode)
	}

	line := buf.String()
	if !strings.Contains(line, `"status":418`) || !strings.Contains(line, `"path":"/ping"`) {
		t.Fatalf("unexpected log line: %s", line)
	}
}

func TestNew_FallsBackToInfo(t *testing.T) {
	logger := New("not-a-level", "json")
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", logger.GetLevel())
	}
}
