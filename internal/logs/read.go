package logs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"ballotlink/internal/logging"
)

const maxLineBytes = 1024 * 1024

// Entry is one decoded log record.
type Entry struct {
	Time      time.Time      `json:"ts"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Component string         `json:"component,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	EventType string         `json:"event_type,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Filter selects entries. Zero values match everything.
type Filter struct {
	// RunID matches entries whose run id starts with this prefix.
	RunID     string
	MinLevel  slog.Level
	EventType string
	Component string
	// Limit keeps only the newest Limit matches; <= 0 keeps all.
	Limit int
}

func (f Filter) match(e Entry) bool {
	if f.RunID != "" && !strings.HasPrefix(e.RunID, f.RunID) {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.Component != "" && e.Component != f.Component {
		return false
	}
	if level, ok := parseLevel(e.Level); ok && level < f.MinLevel {
		return false
	}
	return true
}

// Read returns the entries of the log file at path that pass filter, oldest
// first. A missing file yields no entries.
func Read(ctx context.Context, path string, filter Filter) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("log path %q is a directory", path)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var ring *entryRing
	var all []Entry
	if filter.Limit > 0 {
		ring = newEntryRing(filter.Limit)
	}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		entry, ok := decode(scanner.Bytes())
		if !ok || !filter.match(entry) {
			continue
		}
		if ring != nil {
			ring.push(entry)
		} else {
			all = append(all, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	if ring != nil {
		return ring.entries(), nil
	}
	return all, nil
}

func decode(line []byte) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Entry{}, false
	}
	entry := Entry{
		Level:     takeString(raw, "level"),
		Message:   takeString(raw, "msg"),
		Component: takeString(raw, logging.FieldComponent),
		RunID:     takeString(raw, logging.FieldRunID),
		EventType: takeString(raw, logging.FieldEventType),
	}
	if ts := takeString(raw, "ts"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Time = parsed
		}
	}
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, true
}

func takeString(raw map[string]any, key string) string {
	value, ok := raw[key]
	if !ok {
		return ""
	}
	delete(raw, key)
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func parseLevel(value string) (slog.Level, bool) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, false
	}
	return level, true
}

type entryRing struct {
	buf   []Entry
	next  int
	count int
}

func newEntryRing(limit int) *entryRing {
	return &entryRing{buf: make([]Entry, limit)}
}

func (r *entryRing) push(e Entry) {
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *entryRing) entries() []Entry {
	out := make([]Entry, r.count)
	if r.count < len(r.buf) {
		copy(out, r.buf[:r.count])
		return out
	}
	for i := range out {
		out[i] = r.buf[(r.next+i)%len(r.buf)]
	}
	return out
}
