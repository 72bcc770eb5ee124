package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestPayloadHandler_ElidesPayloadKeys verifies payload keys never reach the output.
func TestPayloadHandler_ElidesPayloadKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{name: "markup", key: "markup"},
		{name: "innerHTML mixed case", key: "innerHTML"},
		{name: "attributes", key: "attributes"},
		{name: "backup field name", key: "attr_and_vals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, true)
			logger.Info("block", tt.key, "secret paragraph text")

			out := buf.String()
			if strings.Contains(out, "secret paragraph text") {
				t.Errorf("payload leaked: %s", out)
			}
			if !strings.Contains(out, "elided 21 bytes") {
				t.Errorf("expected size summary, got %s", out)
			}
		})
	}
}

// TestPayloadHandler_ElidesMarkupValues verifies markup is detected by value.
func TestPayloadHandler_ElidesMarkupValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	long := `<p class="lead">a paragraph that is long enough</p>`
	logger.Info("moved", "value", long, "short", "<b>x</b>", "operation", "OVERFLOW{elementIndex:4, fromPage:1, toPage:2}")

	out := buf.String()
	if strings.Contains(out, "a paragraph") {
		t.Errorf("long markup leaked: %s", out)
	}
	if !strings.Contains(out, "<b>x</b>") {
		t.Errorf("short markup should be kept: %s", out)
	}
	if !strings.Contains(out, "OVERFLOW{elementIndex:4") {
		t.Errorf("operation should be kept: %s", out)
	}
}

// TestPayloadHandler_Truncates verifies long plain values are truncated.
func TestPayloadHandler_Truncates(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)
	logger.Info("long", "path", strings.Repeat("a", 200))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	got, _ := record["path"].(string)
	want := strings.Repeat("a", MaxValueLength) + "...(+80 bytes)"
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

// TestPayloadHandler_Groups verifies grouped and pre-bound attributes are trimmed.
func TestPayloadHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true).With("markup", "hidden body").WithGroup("block")
	logger.Info("grouped", slog.Group("descriptor", slog.String("innerHTML", "nested body"), slog.Int("page", 2)))

	out := buf.String()
	if strings.Contains(out, "hidden body") || strings.Contains(out, "nested body") {
		t.Errorf("payload leaked: %s", out)
	}
	if !strings.Contains(out, "block.descriptor.page=2") {
		t.Errorf("non-payload attribute missing: %s", out)
	}
}

// TestNewLogger_Levels verifies verbose selects the Debug level.
func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		want    bool
	}{
		{name: "quiet drops debug", verbose: false, want: false},
		{name: "verbose keeps debug", verbose: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			NewLogger(&buf, tt.verbose).Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.want {
				t.Errorf("debug logged = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestNewPayloadHandler_NilHandler verifies the default handler fallback.
func TestNewPayloadHandler_NilHandler(t *testing.T) {
	t.Parallel()

	if h := NewPayloadHandler(nil); h.handler == nil {
		t.Error("expected default handler")
	}
}
