package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestRunIDHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newRunIDHandler(slog.NewJSONHandler(&buf, nil), "run-abc")).With("extra", "value")
	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, `"run_id":"run-abc"`) {
		t.Errorf("expected run_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Errorf("expected extra attr in output, got: %s", output)
	}
}

func TestRunIDHandlerNilBase(t *testing.T) {
	if _, ok := newRunIDHandler(nil, "run").(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when base is nil")
	}
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	info := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debug := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(newTeeHandler(info, debug))
	logger.Debug("only debug")
	logger.Info("both")

	if strings.Contains(infoBuf.String(), "only debug") {
		t.Fatalf("info handler received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "only debug") || !strings.Contains(debugBuf.String(), "both") {
		t.Fatalf("debug handler missing records: %s", debugBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "both") {
		t.Fatalf("info handler missing record: %s", infoBuf.String())
	}
}

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for empty tee")
	}
	single := slog.NewTextHandler(&bytes.Buffer{}, nil)
	if got := newTeeHandler(nil, single); got != single {
		t.Fatalf("expected single handler passthrough, got %T", got)
	}
	if (NoopHandler{}).Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop handler should be disabled")
	}
}

func TestPrettyHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, level, false))
	logger.Warn("conflict",
		slog.String("name", "Ana Ruiz"),
		slog.String("contest_id", "X1"),
		slog.Any("error", errors.New("bad row")),
		slog.Int("votes", 2),
		slog.String("empty", ""),
	)

	line := buf.String()
	for _, want := range []string{`name="Ana Ruiz"`, "contest_id=X1", `error="bad row"`, "votes=2", `empty=""`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}
