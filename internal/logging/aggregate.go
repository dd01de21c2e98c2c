package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Entry is one parsed line of debug.log.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	SessionID string
	Slot      int
	Model     string
	Phase     string
	Attrs     map[string]any
}

// Filter selects log entries. Zero-valued fields match everything.
type Filter struct {
	MinLevel  string
	Since     time.Time
	SessionID string
	Slot      int
	Pattern   *regexp.Regexp
}

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ReadEntries parses {dir}/debug.log. Lines that are not valid JSON are skipped
// so a partially written tail does not hide the rest of the file.
func ReadEntries(dir string) ([]Entry, error) {
	path := filepath.Join(dir, LogFileName)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no log file at %s (run with --debug to create one): %w", path, err)
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	const maxLine = 1024 * 1024
	scanner.Buffer(make([]byte, maxLine), maxLine)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	return entries, nil
}

func parseEntry(line string) (Entry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	entry := Entry{Attrs: make(map[string]any)}
	for key, value := range raw {
		switch key {
		case "time":
			if s, ok := value.(string); ok {
				entry.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case "level":
			entry.Level, _ = value.(string)
		case "msg":
			entry.Message, _ = value.(string)
		case "session_id":
			entry.SessionID, _ = value.(string)
		case "slot":
			if f, ok := value.(float64); ok {
				entry.Slot = int(f)
			}
		case "model":
			entry.Model, _ = value.(string)
		case "phase":
			entry.Phase, _ = value.(string)
		default:
			entry.Attrs[key] = value
		}
	}
	return entry, nil
}

// Apply returns the entries matching every criterion of f.
func (f Filter) Apply(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func (f Filter) matches(e Entry) bool {
	if f.MinLevel != "" && levelOrder[strings.ToUpper(e.Level)] < levelOrder[ParseLevel(f.MinLevel)] {
		return false
	}
	if !f.Since.IsZero() && e.Time.Before(f.Since) {
		return false
	}
	if f.SessionID != "" && !strings.HasPrefix(e.SessionID, f.SessionID) {
		return false
	}
	if f.Slot != 0 && e.Slot != f.Slot {
		return false
	}
	if f.Pattern != nil && !f.Pattern.MatchString(e.Message) {
		return false
	}
	return true
}

// Format renders an entry as a single human-readable line.
func (e Entry) Format() string {
	var sb strings.Builder
	sb.WriteString(e.Time.Format("15:04:05.000"))
	fmt.Fprintf(&sb, " %-5s", e.Level)
	if e.Phase != "" {
		fmt.Fprintf(&sb, " [%s]", e.Phase)
	}
	if e.Slot != 0 {
		fmt.Fprintf(&sb, " [slot %d %s]", e.Slot, e.Model)
	}
	sb.WriteString(" ")
	sb.WriteString(e.Message)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, e.Attrs[k])
	}
	return sb.String()
}
