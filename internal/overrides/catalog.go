// Package overrides loads hand-curated contest and candidate mappings and
// commits them to a Matcher ahead of automatic matching.
package overrides

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"ballotlink/internal/linker"
	"ballotlink/internal/logging"
)

// Kinds of override entries.
const (
	KindContest   = "contest"
	KindCandidate = "candidate"
)

// ErrInvalidOverride reports an entry that cannot be applied.
var ErrInvalidOverride = errors.New("invalid override")

// Catalog loads user-authored mapping overrides.
type Catalog struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	loaded  time.Time
	entries []Override
}

// Override pins a secondary contest or candidate to its primary counterpart.
// Candidate ids use the "contest:candidate" form.
type Override struct {
	Kind      string `json:"kind" yaml:"kind"`
	Secondary string `json:"secondary" yaml:"secondary"`
	Primary   string `json:"primary" yaml:"primary"`
	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Applied summarises what Apply committed.
type Applied struct {
	Contests   int
	Candidates int
	Rejected   int
}

// NewCatalog constructs a catalog backed by the provided JSON file.
func NewCatalog(path string, logger *slog.Logger) *Catalog {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	return &Catalog{path: trimmed, logger: logging.NewComponentLogger(logger, "overrides")}
}

// Path returns the backing file.
func (c *Catalog) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Entries returns the loaded overrides in file order. A missing file yields
// no entries.
func (c *Catalog) Entries() ([]Override, error) {
	if c == nil {
		return nil, nil
	}
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Override(nil), c.entries...), nil
}

// Apply commits every override to m. Overrides rejected by the matcher
// (because an earlier override already claimed either side) are counted and
// surface as conflicts in the matcher's diagnostics.
func (c *Catalog) Apply(m *linker.Matcher) (Applied, error) {
	var applied Applied
	entries, err := c.Entries()
	if err != nil {
		return applied, err
	}
	for i, entry := range entries {
		switch entry.Kind {
		case KindContest:
			if m.SetContestMap(entry.Secondary, entry.Primary) {
				applied.Contests++
			} else {
				applied.Rejected++
			}
		case KindCandidate:
			secondary, ok1 := linker.ParseCandidateRef(entry.Secondary)
			primary, ok2 := linker.ParseCandidateRef(entry.Primary)
			if !ok1 || !ok2 {
				return applied, fmt.Errorf("override %d: %w: candidate ids must look like contest:candidate", i+1, ErrInvalidOverride)
			}
			if m.SetCandidateMap(secondary, primary) {
				applied.Candidates++
			} else {
				applied.Rejected++
			}
		}
	}
	if len(entries) > 0 {
		c.logger.Info("applied mapping overrides",
			logging.String("path", c.path),
			logging.Int("contests", applied.Contests),
			logging.Int("candidates", applied.Candidates),
			logging.Int("rejected", applied.Rejected),
		)
	}
	return applied, nil
}

func (c *Catalog) ensureLoaded() error {
	c.mu.RLock()
	path := c.path
	c.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.logger.Debug("overrides file not found", logging.String("path", path))
			return nil
		}
		return fmt.Errorf("stat overrides: %w", err)
	}

	c.mu.RLock()
	alreadyLoaded := !c.loaded.IsZero() && c.loaded.Equal(info.ModTime())
	c.mu.RUnlock()
	if alreadyLoaded {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read overrides: %w", err)
	}
	parse := parseOverrides
	if isYAML(path) {
		parse = parseYAMLOverrides
	}
	entries, err := parse(data)
	if err != nil {
		return fmt.Errorf("parse overrides %s: %w", path, err)
	}

	c.mu.Lock()
	c.entries = entries
	c.loaded = info.ModTime()
	c.mu.Unlock()
	c.logger.Info("loaded mapping overrides", logging.String("path", path), logging.Int("count", len(entries)))
	return nil
}

func parseOverrides(data []byte) ([]Override, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var entries []Override
	// Accept either an array or an object with contests/candidates lists.
	if data[0] == '{' {
		var wrapper struct {
			Contests   []Override `json:"contests"`
			Candidates []Override `json:"candidates"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		for _, entry := range wrapper.Contests {
			entry.Kind = KindContest
			entries = append(entries, entry)
		}
		for _, entry := range wrapper.Candidates {
			entry.Kind = KindCandidate
			entries = append(entries, entry)
		}
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return normalizeAll(entries)
}

// parseYAMLOverrides accepts the same two shapes as parseOverrides.
func parseYAMLOverrides(data []byte) ([]Override, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	var entries []Override
	switch doc.Kind {
	case yaml.MappingNode:
		var wrapper struct {
			Contests   []Override `yaml:"contests"`
			Candidates []Override `yaml:"candidates"`
		}
		if err := doc.Decode(&wrapper); err != nil {
			return nil, err
		}
		for _, entry := range wrapper.Contests {
			entry.Kind = KindContest
			entries = append(entries, entry)
		}
		for _, entry := range wrapper.Candidates {
			entry.Kind = KindCandidate
			entries = append(entries, entry)
		}
	case yaml.SequenceNode:
		if err := doc.Decode(&entries); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: expected a list or a contests/candidates mapping", ErrInvalidOverride)
	}
	return normalizeAll(entries)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func normalizeAll(entries []Override) ([]Override, error) {
	normalized := make([]Override, 0, len(entries))
	for i, entry := range entries {
		if err := entry.normalize(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		normalized = append(normalized, entry)
	}
	return normalized, nil
}

func (o *Override) normalize() error {
	o.Kind = strings.ToLower(strings.TrimSpace(o.Kind))
	o.Secondary = strings.TrimSpace(o.Secondary)
	o.Primary = strings.TrimSpace(o.Primary)
	o.Note = strings.TrimSpace(o.Note)
	if o.Kind == "" {
		o.Kind = KindContest
	}
	if o.Kind != KindContest && o.Kind != KindCandidate {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOverride, o.Kind)
	}
	if o.Secondary == "" || o.Primary == "" {
		return fmt.Errorf("%w: secondary and primary are required", ErrInvalidOverride)
	}
	return nil
}
