package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"pixnox/internal/config"
	"pixnox/internal/log"
)

func TestSetupLoggerTo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "warn", LogFormat: "json"}
	logger := SetupLoggerTo(&buf, cfg, "test")

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("expected JSON record, got %s", out)
	}
	if logger.Component() != "test" {
		t.Errorf("component = %q", logger.Component())
	}
}

func TestShutdownRunsCleanup(t *testing.T) {
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	ctx, cancel := context.WithCancel(context.Background())

	ran := false
	shutdown(cancel, logger, time.Second, func(ctx context.Context) { ran = true })

	if !ran {
		t.Error("cleanup not run")
	}
	if ctx.Err() == nil {
		t.Error("root context not cancelled")
	}
}

func TestShutdownTimeout(t *testing.T) {
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	shutdown(cancel, logger, 20*time.Millisecond, func(ctx context.Context) { <-release })

	if time.Since(start) > time.Second {
		t.Error("shutdown waited past its timeout")
	}
	if ctx.Err() == nil {
		t.Error("root context not cancelled")
	}
}
