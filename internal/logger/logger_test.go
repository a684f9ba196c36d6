package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/Strob0t/toolgate/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc"}
	l, closer := New(cfg, nil)
	defer closer.Close()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewAsync(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc", Async: true}
	l, closer := New(cfg, nil)
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	closer.Close()
}

func TestNew_RedactsSecrets(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc"}
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout := os.Stdout
	os.Stdout = w
	l, closer := New(cfg, []string{`(?i)sk-[A-Za-z0-9]{20,}`})
	os.Stdout = stdout
	l.Info("token sk-abcdefghijklmnopqrstuvwxyz issued")
	closer.Close()
	_ = w.Close()
	out, _ := io.ReadAll(r)
	if strings.Contains(string(out), "sk-") {
		t.Errorf("secret leaked into log output: %s", out)
	}
	if !strings.Contains(string(out), "***REDACTED***") {
		t.Errorf("expected redaction marker in log output: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input).String()
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()

	// Empty context returns empty string
	if got := RequestID(ctx); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}

	// Set and retrieve
	ctx = WithRequestID(ctx, "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
}
