// Package featureflags evaluates runtime feature toggles from configuration.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// BookCache enables Redis cache-aside for book detail reads.
const BookCache = "book_cache"

// rule is a parsed flag value: fully on, fully off, or a percentage rollout.
type rule struct {
	percent int
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "book_cache=on,new_search=25%,legacy_ordering=off"
type Manager struct {
	rules map[string]rule
}

// NewManager creates a feature-flag manager from a comma-separated config
// string. Malformed entries are ignored.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		if key == "" {
			continue
		}
		r, ok := parseRule(normalize(value))
		if !ok {
			continue
		}
		rules[key] = r
	}

	return &Manager{rules: rules}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{percent: 100}, true
	case "off", "false", "0":
		return rule{percent: 0}, true
	}
	pctRaw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return rule{}, false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil {
		return rule{}, false
	}
	return rule{percent: max(0, min(100, pct))}, true
}

// Enabled returns whether a flag is enabled for a given user. Partial
// rollouts are deterministic per user and never include anonymous callers.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}
	switch {
	case r.percent >= 100:
		return true
	case r.percent <= 0, userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// EnabledGlobally reports whether a flag is fully on, independent of user.
func (m *Manager) EnabledGlobally(name string) bool {
	return m.Enabled(name, 0)
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.rules))
	for name := range m.rules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.Names()))
	for _, name := range m.Names() {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
