package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/dashboard/config"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	// Load configuration from dashboard.yml
	var logCfg Config
	cfg, err := config.LoadDefault()
	if err == nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			// Log a warning if parsing fails, but continue with defaults
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	entry := newLogger(component, logCfg)
	loggers[component] = entry
	return entry
}

// Reset drops every cached component logger so the next NewLogger call
// re-reads configuration.
func Reset() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	loggers = make(map[string]*logrus.Entry)
}

func newLogger(component string, logCfg Config) *logrus.Entry {
	logger := logrus.New()

	// Configure Level
	levelStr := "info" // Default level
	if os.Getenv("DASHBOARD_LOG_LEVEL") != "" {
		levelStr = os.Getenv("DASHBOARD_LOG_LEVEL")
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configure Caller Reporting
	if os.Getenv("DASHBOARD_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	// Configure Formatter
	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer

	if file := openLogFile(component, logCfg); file != nil {
		writers = append(writers, file)
	}

	if shouldLogToStderr(logCfg, logger.GetLevel()) {
		writers = append(writers, GetGlobalOutput())
	}

	switch len(writers) {
	case 0:
		// Intentional in auto mode for interactive terminals
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger.WithField("component", component)
}

// LogFilePath returns the file a component logs to, honouring an explicitly
// configured path. It returns "" when no location can be determined.
func LogFilePath(component string, logCfg Config) string {
	if logCfg.File.Enabled && logCfg.File.Path != "" {
		return expandPath(logCfg.File.Path)
	}

	// Default to .dashboard/logs/<component>-<date>.log in the current working directory
	dateStr := time.Now().Format("2006-01-02")
	base, err := os.Getwd()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return ""
		}
		base = home
	}
	return filepath.Join(base, ".dashboard", "logs", fmt.Sprintf("%s-%s.log", component, dateStr))
}

func openLogFile(component string, logCfg Config) io.Writer {
	logFilePath := LogFilePath(component, logCfg)
	if logFilePath == "" {
		return nil
	}

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		// Don't warn about default log dir creation failures
		if logCfg.File.Enabled {
			logrus.Warnf("Failed to create log directory %s: %v", dir, err)
		}
		return nil
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		if logCfg.File.Enabled {
			logrus.Warnf("Failed to open log file %s: %v", logFilePath, err)
		}
		return nil
	}
	return file
}

func shouldLogToStderr(logCfg Config, level logrus.Level) bool {
	stderrMode := "auto"
	if logCfg.Format.StructuredToStderr != "" {
		stderrMode = logCfg.Format.StructuredToStderr
	}

	switch stderrMode {
	case "always":
		return true
	case "never":
		return false
	default:
		// Only show structured logs on stderr when debugging or when output
		// is not an interactive terminal (piped, CI).
		isDebug := os.Getenv("DASHBOARD_DEBUG") == "1" || level == logrus.DebugLevel
		isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		return isDebug || !isInteractive
	}
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
