package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/medwatch/claimscan/internal/model"
	"gopkg.in/yaml.v3"
)

// CompiledRule is a rule with its regular expressions compiled once at load
type CompiledRule struct {
	model.Rule

	KeywordPatterns   []*regexp.Regexp // index-aligned with Triggers.Keywords
	SemanticPatterns  []*regexp.Regexp // index-aligned with Triggers.Semantic
	TriggerPatterns   []*regexp.Regexp
	AggravatingRegex  []*regexp.Regexp // index-aligned with Context.Aggravating where IsRegex
	MitigatingRegex   []*regexp.Regexp // index-aligned with Context.Mitigating where IsRegex
	ExclusionPatterns []*regexp.Regexp
}

// Store holds the validated, compiled rule set for a run. Read-only after load.
type Store struct {
	rules   []*CompiledRule
	skipped int
}

// ruleFile is the YAML document shape for external rule files
type ruleFile struct {
	Rules []model.Rule `yaml:"rules"`
}

// Load builds a store from the builtin set and/or an external YAML path.
// Validation failures are configuration errors and abort the load; regex
// compile failures skip the affected rule with a warning.
func Load(cfg model.RulesConfig) (*Store, error) {
	var raw []model.Rule
	if cfg.UseBuiltin {
		raw = append(raw, BuiltinRules()...)
	}
	if cfg.Path != "" {
		external, err := readRuleFiles(cfg.Path)
		if err != nil {
			return nil, err
		}
		raw = append(raw, external...)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no rules configured (builtin disabled and no rules path)")
	}
	return NewStore(raw)
}

// NewStore validates and compiles a rule set
func NewStore(raw []model.Rule) (*Store, error) {
	seen := make(map[string]bool)
	store := &Store{}

	for i := range raw {
		rule := raw[i]
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("invalid rule: %w", err)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("duplicate rule id: %s", rule.ID)
		}
		seen[rule.ID] = true

		compiled, err := compile(rule)
		if err != nil {
			// Extraction error, not a configuration error: skip the rule
			// for this run and keep going.
			fmt.Fprintf(os.Stderr, "Warning: skipping rule %s: %v\n", rule.ID, err)
			store.skipped++
			continue
		}
		store.rules = append(store.rules, compiled)
	}

	return store, nil
}

// Rules returns the active compiled rules
func (s *Store) Rules() []*CompiledRule {
	return s.rules
}

// Skipped returns how many rules were dropped for regex compile failures
func (s *Store) Skipped() int {
	return s.skipped
}

// Get returns a rule by id
func (s *Store) Get(id string) (*CompiledRule, bool) {
	for _, r := range s.rules {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func compile(rule model.Rule) (*CompiledRule, error) {
	c := &CompiledRule{Rule: rule}

	// Keyword triggers are matched as quoted case-insensitive regexes so
	// that match offsets always index the original text. Folding the text
	// with strings.ToLower shifts byte offsets for runes whose lowercase
	// form has a different UTF-8 length.
	c.KeywordPatterns = compileKeywords(rule.Triggers.Keywords)
	c.SemanticPatterns = compileKeywords(rule.Triggers.Semantic)

	for _, p := range rule.Triggers.Patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("trigger pattern %q: %w", p, err)
		}
		c.TriggerPatterns = append(c.TriggerPatterns, re)
	}

	var err error
	if c.AggravatingRegex, err = compileWeighted(rule.Context.Aggravating); err != nil {
		return nil, fmt.Errorf("aggravating: %w", err)
	}
	if c.MitigatingRegex, err = compileWeighted(rule.Context.Mitigating); err != nil {
		return nil, fmt.Errorf("mitigating: %w", err)
	}

	for _, p := range rule.Context.Exclusions {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("exclusion pattern %q: %w", p, err)
		}
		c.ExclusionPatterns = append(c.ExclusionPatterns, re)
	}

	return c, nil
}

// compileKeywords compiles quoted keywords; empty entries get a nil slot
func compileKeywords(keywords []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		if kw == "" {
			continue
		}
		compiled[i] = regexp.MustCompile("(?i)" + regexp.QuoteMeta(kw))
	}
	return compiled
}

// compileWeighted compiles regex entries; plain-keyword entries get a nil slot
func compileWeighted(patterns []model.WeightedPattern) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, wp := range patterns {
		if !wp.IsRegex {
			continue
		}
		re, err := regexp.Compile("(?i)" + wp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", wp.Pattern, err)
		}
		compiled[i] = re
	}
	return compiled, nil
}

// readRuleFiles loads rules from a YAML file or every *.yaml/*.yml in a directory
func readRuleFiles(path string) ([]model.Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("rules path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read rules dir: %w", err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
				continue
			}
			files = append(files, filepath.Join(path, name))
		}
	} else {
		files = []string{path}
	}

	var rules []model.Rule
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		var doc ruleFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		rules = append(rules, doc.Rules...)
	}

	return rules, nil
}
