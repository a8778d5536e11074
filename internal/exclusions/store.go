package exclusions

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/medwatch/claimscan/internal/model"
)

// Store is the learned false-positive store: an append-only JSONL log plus
// a derived in-memory index. Entries are never mutated or deleted. Appends
// are serialized through a single mutex; scoring reads a Snapshot.
type Store struct {
	path         string
	promoteAfter int

	mu      sync.Mutex
	entries []model.ExclusionEntry

	// derived index, rebuilt at load and updated on append
	perRule   map[string]map[string]model.ExclusionReason // ruleID -> phrase -> reason
	menuTexts map[string]map[string]bool                  // ruleID -> phrase
	global    map[string]bool                             // phrase
	origins   map[string]map[string]bool                  // phrase -> "rule|domain" pairs, for promotion
}

// Open loads the store from its JSONL log, creating an empty store when the
// file does not exist yet.
func Open(cfg model.ExclusionsConfig) (*Store, error) {
	promoteAfter := cfg.PromoteAfter
	if promoteAfter <= 0 {
		promoteAfter = 3
	}

	s := &Store{
		path:         cfg.Path,
		promoteAfter: promoteAfter,
		perRule:      make(map[string]map[string]model.ExclusionReason),
		menuTexts:    make(map[string]map[string]bool),
		global:       make(map[string]bool),
		origins:      make(map[string]map[string]bool),
	}

	if cfg.Path == "" {
		return s, nil // in-memory only
	}

	f, err := os.Open(cfg.Path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open exclusion log: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var entry model.ExclusionEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			// A corrupt line must not poison the whole store
			fmt.Fprintf(os.Stderr, "Warning: exclusion log line %d unreadable: %v\n", line, err)
			continue
		}
		s.index(entry)
		s.entries = append(s.entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read exclusion log: %w", err)
	}

	return s, nil
}

// Normalize is the canonical phrase form used for all lookups
func Normalize(phrase string) string {
	return strings.ToLower(strings.TrimSpace(phrase))
}

// Append records a new exclusion determination and returns any promotion
// entry it triggered. The write path is the only mutation in the system.
func (s *Store) Append(entry model.ExclusionEntry) error {
	entry.Phrase = Normalize(entry.Phrase)
	if entry.Phrase == "" {
		return fmt.Errorf("empty exclusion phrase")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(entry); err != nil {
		return err
	}
	s.index(entry)
	s.entries = append(s.entries, entry)

	// Promotion policy: a phrase overturned across enough distinct
	// rule/domain pairs becomes a cross-rule global exclusion.
	if entry.Reason != model.ReasonGlobalExclusion && !s.global[entry.Phrase] {
		if len(s.origins[entry.Phrase]) >= s.promoteAfter {
			promo := model.ExclusionEntry{
				Phrase:    entry.Phrase,
				Reason:    model.ReasonGlobalExclusion,
				Source:    "promotion",
				Note:      fmt.Sprintf("seen in %d distinct rule/domain contexts", len(s.origins[entry.Phrase])),
				CreatedAt: time.Now().UTC(),
			}
			if err := s.write(promo); err != nil {
				return err
			}
			s.index(promo)
			s.entries = append(s.entries, promo)
		}
	}

	return nil
}

func (s *Store) write(entry model.ExclusionEntry) error {
	if s.path == "" {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create exclusion dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open exclusion log: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal exclusion: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append exclusion: %w", err)
	}
	return nil
}

func (s *Store) index(entry model.ExclusionEntry) {
	phrase := Normalize(entry.Phrase)

	switch entry.Reason {
	case model.ReasonGlobalExclusion:
		s.global[phrase] = true
	case model.ReasonMenuText:
		if s.menuTexts[entry.RuleID] == nil {
			s.menuTexts[entry.RuleID] = make(map[string]bool)
		}
		s.menuTexts[entry.RuleID][phrase] = true
	default:
		if s.perRule[entry.RuleID] == nil {
			s.perRule[entry.RuleID] = make(map[string]model.ExclusionReason)
		}
		s.perRule[entry.RuleID][phrase] = entry.Reason
	}

	if entry.RuleID != "" {
		if s.origins[phrase] == nil {
			s.origins[phrase] = make(map[string]bool)
		}
		s.origins[phrase][entry.RuleID+"|"+entry.Domain] = true
	}
}

// Snapshot returns a read-only point-in-time view for scoring. Appends made
// after a snapshot do not affect runs already using it, which keeps a run
// deterministic.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		perRule:   make(map[string]map[string]model.ExclusionReason, len(s.perRule)),
		menuTexts: make(map[string]map[string]bool, len(s.menuTexts)),
		global:    make(map[string]bool, len(s.global)),
	}
	for rule, phrases := range s.perRule {
		m := make(map[string]model.ExclusionReason, len(phrases))
		for p, r := range phrases {
			m[p] = r
		}
		snap.perRule[rule] = m
	}
	for rule, phrases := range s.menuTexts {
		m := make(map[string]bool, len(phrases))
		for p := range phrases {
			m[p] = true
		}
		snap.menuTexts[rule] = m
	}
	for p := range s.global {
		snap.global[p] = true
	}
	return snap
}

// Entries returns a copy of the full log, oldest first
func (s *Store) Entries() []model.ExclusionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ExclusionEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Stats aggregates the log for reporting
type Stats struct {
	Total    int                             `json:"total"`
	ByReason map[model.ExclusionReason]int   `json:"by_reason"`
	ByRule   map[string]int                  `json:"by_rule"`
	ByDomain map[string]int                  `json:"by_domain"`
	Global   int                             `json:"global"`
}

// Stats computes aggregate counts over the append log
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		ByReason: make(map[model.ExclusionReason]int),
		ByRule:   make(map[string]int),
		ByDomain: make(map[string]int),
	}
	for _, e := range s.entries {
		st.Total++
		st.ByReason[e.Reason]++
		if e.RuleID != "" {
			st.ByRule[e.RuleID]++
		}
		if e.Domain != "" {
			st.ByDomain[e.Domain]++
		}
	}
	st.Global = len(s.global)
	return st
}

// Snapshot is the immutable view the context scorer consults
type Snapshot struct {
	perRule   map[string]map[string]model.ExclusionReason
	menuTexts map[string]map[string]bool
	global    map[string]bool
}

// EmptySnapshot returns a snapshot with no learned exclusions
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		perRule:   make(map[string]map[string]model.ExclusionReason),
		menuTexts: make(map[string]map[string]bool),
		global:    make(map[string]bool),
	}
}

// Lookup reports whether the normalized phrase is excluded for the rule,
// either rule-locally, as learned menu text, or globally.
func (s *Snapshot) Lookup(ruleID, phrase string) (model.ExclusionReason, bool) {
	phrase = Normalize(phrase)
	if phrase == "" {
		return "", false
	}
	if s.global[phrase] {
		return model.ReasonGlobalExclusion, true
	}
	if s.menuTexts[ruleID][phrase] {
		return model.ReasonMenuText, true
	}
	if reason, ok := s.perRule[ruleID][phrase]; ok {
		return reason, true
	}
	return "", false
}
