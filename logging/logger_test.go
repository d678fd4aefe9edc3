package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(Reset)

	logger := NewLogger("test-component")
	if logger == nil {
		t.Fatal("Expected logger to be created")
	}

	// Verify it's a logrus.Entry with the component field
	if logger.Data["component"] != "test-component" {
		t.Errorf("Expected component to be 'test-component', got %v", logger.Data["component"])
	}

	// Same component returns the cached logger
	if NewLogger("test-component") != logger {
		t.Error("Expected NewLogger to return the cached logger for the same component")
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&TextFormatter{Config: FormatConfig{}})

	entry := logger.WithField("component", "test")
	entry.Info("Test message")

	output := buf.String()

	if !strings.Contains(output, "[INFO]") {
		t.Errorf("Expected output to contain [INFO], got: %s", output)
	}
	if !strings.Contains(output, "[test]") {
		t.Errorf("Expected output to contain [test], got: %s", output)
	}
	if !strings.Contains(output, "Test message") {
		t.Errorf("Expected output to contain 'Test message', got: %s", output)
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string
		notWant []string
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Level:   logrus.InfoLevel,
				Message: "cache hit",
				Data: logrus.Fields{
					"component": "loader",
					"kind":      "projects",
				},
			},
			want: []string{"[INFO]", "[loader]", "cache hit", "kind=projects"},
		},
		{
			name: "simple format",
			config: FormatConfig{
				DisableTimestamp: true,
				DisableComponent: true,
			},
			entry: &logrus.Entry{
				Level:   logrus.WarnLevel,
				Message: "fetch failed",
				Data: logrus.Fields{
					"component": "loader",
				},
			},
			want:    []string{"[WARN]", "fetch failed"},
			notWant: []string{"[loader]"},
		},
		{
			name:   "caller information with function name",
			config: FormatConfig{},
			entry: func() *logrus.Entry {
				logger := logrus.New()
				logger.SetReportCaller(true)
				return &logrus.Entry{
					Logger:  logger,
					Level:   logrus.InfoLevel,
					Message: "scope changed",
					Data: logrus.Fields{
						"component": "scope-mirror",
					},
					Caller: &runtime.Frame{
						File:     "/path/to/mirror.go",
						Line:     42,
						Function: "github.com/example/scope.(*Mirror).check",
					},
				}
			}(),
			want: []string{"[INFO]", "[scope-mirror]", "scope changed", "[mirror.go:42 scope.(*Mirror).check]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &TextFormatter{Config: tt.config}

			output, err := formatter.Format(tt.entry)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			outputStr := string(output)
			for _, want := range tt.want {
				if !strings.Contains(outputStr, want) {
					t.Errorf("Expected output to contain '%s', got: %s", want, outputStr)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(outputStr, notWant) {
					t.Errorf("Expected output NOT to contain '%s', got: %s", notWant, outputStr)
				}
			}
		})
	}
}

func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("DASHBOARD_LOG_LEVEL", "debug")
	t.Setenv("DASHBOARD_LOG_CALLER", "true")

	logger := newLogger("env-test", Config{
		Format: FormatConfig{StructuredToStderr: "never"},
		File:   FileSinkConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "env.log")},
	})

	if logger.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level from env, got %v", logger.Logger.GetLevel())
	}
	if !logger.Logger.ReportCaller {
		t.Error("Expected ReportCaller to be enabled from env")
	}
}

func TestConfigLevelAndFileSink(t *testing.T) {
	t.Setenv("DASHBOARD_LOG_LEVEL", "")
	logPath := filepath.Join(t.TempDir(), "logs", "dash.log")

	logger := newLogger("file-test", Config{
		Level:  "warn",
		File:   FileSinkConfig{Enabled: true, Path: logPath},
		Format: FormatConfig{Preset: "json", StructuredToStderr: "never"},
	})

	logger.Info("dropped")
	logger.Warn("kept")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Expected log file to be written: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Error("Info message should not be written at warn level")
	}
	if !strings.Contains(out, `"msg":"kept"`) {
		t.Errorf("Expected JSON warn entry, got: %s", out)
	}
	if !strings.Contains(out, `"component":"file-test"`) {
		t.Errorf("Expected component field in JSON output, got: %s", out)
	}
}

func TestLogFilePath(t *testing.T) {
	explicit := LogFilePath("x", Config{File: FileSinkConfig{Enabled: true, Path: "/tmp/dash.log"}})
	if explicit != "/tmp/dash.log" {
		t.Errorf("Expected explicit path, got %s", explicit)
	}

	def := LogFilePath("loader", Config{})
	if !strings.Contains(def, filepath.Join(".dashboard", "logs", "loader-")) {
		t.Errorf("Expected default path under .dashboard/logs, got %s", def)
	}
}

func TestGlobalOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := SetGlobalOutput(&buf)
	t.Cleanup(func() { SetGlobalOutput(prev) })

	logger := newLogger("global-test", Config{
		Format: FormatConfig{Preset: "simple", StructuredToStderr: "always"},
		File:   FileSinkConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "g.log")},
	})
	logger.Info("redirected")

	if !strings.Contains(buf.String(), "redirected") {
		t.Errorf("Expected stderr sink to follow the global writer, got: %q", buf.String())
	}
}

func TestTextFormatterFieldOrder(t *testing.T) {
	formatter := &TextFormatter{Config: FormatConfig{DisableTimestamp: true, DisableComponent: true}}
	entry := &logrus.Entry{
		Level:   logrus.DebugLevel,
		Message: "Fetching collection",
		Data: logrus.Fields{
			"filters":   "a=1",
			"error":     "boom",
			"scope":     "",
			"count":     2,
			"kind":      "product-versions",
			"component": "loader",
			"note":      "with space",
		},
	}

	want := `[DEBUG] Fetching collection kind=product-versions scope="" count=2 filters="a=1" note="with space" error=boom` + "\n"
	for i := 0; i < 20; i++ {
		output, err := formatter.Format(entry)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if string(output) != want {
			t.Fatalf("Format() = %q, want %q", output, want)
		}
	}
}

func TestSetGlobalOutputReturnsPrevious(t *testing.T) {
	var first, second bytes.Buffer
	orig := SetGlobalOutput(&first)
	t.Cleanup(func() { SetGlobalOutput(orig) })

	if prev := SetGlobalOutput(&second); prev != &first {
		t.Errorf("Expected previous writer to be returned, got %v", prev)
	}
	fmt.Fprint(GetGlobalOutput(), "line")
	if second.String() != "line" || first.Len() != 0 {
		t.Errorf("Expected write to reach the current writer only, got first=%q second=%q", first.String(), second.String())
	}

	SetGlobalOutput(nil)
	if _, err := GetGlobalOutput().Write([]byte("dropped")); err != nil {
		t.Errorf("Expected nil writer to discard, got %v", err)
	}
	if second.String() != "line" {
		t.Errorf("Expected discarded write, got %q", second.String())
	}
}
