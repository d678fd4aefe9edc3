package logging

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/grovetools/dashboard/tui/theme"
	"github.com/sirupsen/logrus"
)

// leadingFields are printed first, in this order, whenever present. The
// loader, hooks and mirror attach them to nearly every line.
var leadingFields = []string{"kind", "scope"}

// TextFormatter renders entries as one line:
//
//	2026-01-02 15:04:05 [INFO] [loader] Cached collection kind=projects scope="" count=2
//
// kind and scope come first, the remaining fields follow sorted by name,
// and the error field, if any, comes last.
type TextFormatter struct {
	Config FormatConfig
}

// Format renders a single log entry.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if !f.Config.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(level))

	if component, ok := entry.Data["component"]; ok && !f.Config.DisableComponent {
		fmt.Fprintf(&b, " [%s]", theme.DefaultTheme.Accent.Render(fmt.Sprint(component)))
	}

	if entry.HasCaller() {
		fmt.Fprintf(&b, " [%s:%d %s]",
			filepath.Base(entry.Caller.File), entry.Caller.Line, filepath.Base(entry.Caller.Function))
	}

	b.WriteByte(' ')
	b.WriteString(entry.Message)

	for _, key := range fieldOrder(entry.Data) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(formatValue(entry.Data[key]))
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// fieldOrder returns the keys of data to print, leading fields first.
func fieldOrder(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for _, key := range leadingFields {
		if _, ok := data[key]; ok {
			keys = append(keys, key)
		}
	}

	rest := make([]string, 0, len(data))
	for key := range data {
		switch key {
		case "component", "kind", "scope", logrus.ErrorKey:
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	if _, ok := data[logrus.ErrorKey]; ok {
		keys = append(keys, logrus.ErrorKey)
	}
	return keys
}

// formatValue quotes values that would not survive a split on spaces or
// that are empty, like the null scope.
func formatValue(v interface{}) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}
