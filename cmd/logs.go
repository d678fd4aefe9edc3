package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/dashboard/cli"
	"github.com/grovetools/dashboard/logging"
	"github.com/grovetools/dashboard/tui/theme"
	"github.com/hpcloud/tail"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// logLine is one line read from a component log file.
type logLine struct {
	Component string
	Line      string
}

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the dashboard's component logs",
		Long: `Reads today's log files under .dashboard/logs, or the file configured
in the logging section of dashboard.yml.

Examples:
  # Follow every component
  dashctl logs -f

  # Last 50 lines of the scope mirror
  dashctl logs --component scope --tail 50
`,
		Args: cobra.NoArgs,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().StringSlice("component", nil, "Only show these components (comma-separated)")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of each file (default: all)")
	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd)
	follow, _ := cmd.Flags().GetBool("follow")
	components, _ := cmd.Flags().GetStringSlice("component")
	tailLines, _ := cmd.Flags().GetInt("tail")
	jsonOutput := cli.GetOptions(cmd).JSONOutput

	var logCfg logging.Config
	if cfg, err := cli.LoadConfig(cmd); err == nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logger.WithError(err).Debug("Ignoring invalid logging config")
		}
	}

	files, err := findLogFiles(logCfg, components)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), theme.DefaultTheme.Muted.Render("No log files found."))
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if follow {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	lines := make(chan logLine, 100)
	var wg sync.WaitGroup
	for component, path := range files {
		logger.WithFields(logrus.Fields{
			"component": component,
			"log_file":  path,
		}).Debug("Tailing log file")

		wg.Add(1)
		go func(component, path string) {
			defer wg.Done()
			tailLogFile(ctx, component, path, follow, tailLines, lines, logger)
		}(component, path)
	}
	go func() {
		wg.Wait()
		close(lines)
	}()

	out := cmd.OutOrStdout()
	for l := range lines {
		if jsonOutput {
			printLogJSON(out, l)
		} else {
			printLogText(out, l)
		}
	}
	return nil
}

// findLogFiles maps each component to its log file. A configured file path
// wins over the per-component daily files.
func findLogFiles(logCfg logging.Config, components []string) (map[string]string, error) {
	files := make(map[string]string)
	if logCfg.File.Enabled && logCfg.File.Path != "" {
		files["dashboard"] = logging.LogFilePath("", logCfg)
		return files, nil
	}

	if len(components) > 0 {
		for _, c := range components {
			if path := logging.LogFilePath(c, logCfg); path != "" {
				files[c] = path
			}
		}
		return files, nil
	}

	sample := logging.LogFilePath("dashctl", logCfg)
	if sample == "" {
		return files, nil
	}
	suffix := "-" + time.Now().Format("2006-01-02") + ".log"
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(sample), "*"+suffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	for _, m := range matches {
		files[strings.TrimSuffix(filepath.Base(m), suffix)] = m
	}
	return files, nil
}

// tailLogFile sends the lines of path to out. Without follow it stops at
// EOF and keeps only the last tailLines lines when tailLines >= 0.
func tailLogFile(ctx context.Context, component, path string, follow bool, tailLines int, out chan<- logLine, logger *logrus.Entry) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: !follow,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		logger.WithError(err).WithField("log_file", path).Debug("Cannot tail file")
		return
	}
	defer t.Cleanup()
	defer t.Stop()

	var buffered []string
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines:
			if !ok {
				for _, l := range buffered {
					out <- logLine{Component: component, Line: l}
				}
				return
			}
			if line.Err != nil {
				logger.WithError(line.Err).WithField("log_file", path).Debug("Error reading line")
				continue
			}
			if follow || tailLines < 0 {
				out <- logLine{Component: component, Line: line.Text}
				continue
			}
			buffered = append(buffered, line.Text)
			if len(buffered) > tailLines {
				buffered = buffered[1:]
			}
		}
	}
}

func printLogJSON(out io.Writer, l logLine) {
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(l.Line), &entry); err != nil {
		entry = map[string]interface{}{"msg": l.Line}
	}
	if _, ok := entry["component"]; !ok {
		entry["component"] = l.Component
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	fmt.Fprintln(out, string(data))
}

func printLogText(out io.Writer, l logLine) {
	t := theme.DefaultTheme
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(l.Line), &entry); err != nil {
		fmt.Fprintf(out, "[%s] %s\n", t.Accent.Render(l.Component), l.Line)
		return
	}

	ts, _ := entry["time"].(string)
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)
	component, _ := entry["component"].(string)
	if component == "" {
		component = l.Component
	}

	timeStr := ts
	if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		timeStr = parsed.Format(time.TimeOnly)
	}

	var levelStyle lipgloss.Style
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		levelStyle = t.Error
	case "warning":
		levelStyle = t.Warning
	case "info":
		levelStyle = t.Info
	default:
		levelStyle = t.Muted
	}

	var keys []string
	for k := range entry {
		switch k {
		case "time", "level", "msg", "component":
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", t.Muted.Render(k), entry[k]))
	}

	fmt.Fprintf(out, "%s [%s] %s %s %s\n",
		timeStr,
		t.Accent.Render(component),
		levelStyle.Render(strings.ToUpper(level)),
		msg,
		strings.Join(fields, " "),
	)
}
