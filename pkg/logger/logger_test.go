package logger

import (
	"context"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerFields(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Info(ctx, "heist started",
		String("heistID", "h-123"),
		Int("attempts", 2),
		Int64("stolen", 250),
		Float64("rate", 0.5),
		Bool("blocked", false),
		Duration("timeLimit", 180*time.Second),
		Any("payload", map[string]int{"x": 1}),
	)
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("sweeper")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Debug(context.Background(), "tick")
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, level := range []string{"debug", "info", "WARN", "warning", "error"} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("SetLevelString(%q): %v", level, err)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
