package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("auto is JSON off a terminal", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New(&buf, "info", FormatAuto)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		l.Info("file created", "id", 7)

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("output is not JSON: %q", buf.String())
		}
		if rec["msg"] != "file created" || rec["id"] != float64(7) {
			t.Errorf("record = %v", rec)
		}
	})

	t.Run("text honours the level", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New(&buf, "WARN", FormatText)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		l.Info("hidden")
		l.Warn("shown")
		if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		if _, err := New(&bytes.Buffer{}, "loud", FormatText); err == nil {
			t.Error("New() accepted level loud")
		}
		if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
			t.Error("New() accepted format xml")
		}
	})
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Error("FromContext() without a logger should return slog.Default()")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if FromContext(WithLogger(context.Background(), l)) != l {
		t.Error("FromContext() did not return the stored logger")
	}
}
