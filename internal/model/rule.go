package model

import "fmt"

// Severity classifies how serious a confirmed violation is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// RequiredLogic is the co-occurrence operator for required evidence
type RequiredLogic string

const (
	RequiredAND RequiredLogic = "AND"
	RequiredOR  RequiredLogic = "OR"
)

// Rule is a single declarative regulated-claim pattern.
// Rules are pure data: one generic interpreter evaluates all of them,
// there is no per-category code.
type Rule struct {
	ID          string   `json:"id" yaml:"id"`
	Category    string   `json:"category" yaml:"category"`
	Subcategory string   `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Severity    Severity `json:"severity" yaml:"severity"`
	RiskScore   int      `json:"risk_score" yaml:"risk_score"` // 1-100

	Triggers   Triggers      `json:"triggers" yaml:"triggers"`
	Context    ContextConfig `json:"context" yaml:"context"`
	Thresholds Thresholds    `json:"thresholds" yaml:"thresholds"`

	// AIVerification enables escalation for the ambiguous band
	AIVerification bool `json:"ai_verification" yaml:"ai_verification"`

	Legal          Legal          `json:"legal" yaml:"legal"`
	Recommendation Recommendation `json:"recommendation" yaml:"recommendation"`
}

// Triggers promote a text span to a match candidate
type Triggers struct {
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"` // case-insensitive literals
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"` // regular expressions
	// Semantic are paraphrase fallbacks matched at reduced confidence (0.6)
	Semantic []string `json:"semantic,omitempty" yaml:"semantic,omitempty"`
}

// ContextConfig describes how the window around a trigger is weighed
type ContextConfig struct {
	WindowSize  int               `json:"window_size" yaml:"window_size"` // characters, centered on the match
	Aggravating []WeightedPattern `json:"aggravating,omitempty" yaml:"aggravating,omitempty"`
	Mitigating  []WeightedPattern `json:"mitigating,omitempty" yaml:"mitigating,omitempty"`
	Required    *RequiredConfig   `json:"required,omitempty" yaml:"required,omitempty"`
	Exclusions  []string          `json:"exclusions,omitempty" yaml:"exclusions,omitempty"` // patterns; a hit discards the candidate
}

// WeightedPattern is a keyword or regex with a contribution weight
type WeightedPattern struct {
	Pattern string  `json:"pattern" yaml:"pattern"`
	IsRegex bool    `json:"is_regex,omitempty" yaml:"is_regex,omitempty"`
	Weight  float64 `json:"weight" yaml:"weight"` // 0.1-1.0
}

// RequiredConfig is a hard co-occurrence gate: when the AND/OR condition
// over the listed keywords fails in the window, the candidate is dismissed
type RequiredConfig struct {
	Keywords []string      `json:"keywords" yaml:"keywords"`
	Logic    RequiredLogic `json:"logic" yaml:"logic"`
}

// Thresholds map a final score to a decision band.
// Invariant: 0 <= Dismiss < ConfirmViolation <= 1.
type Thresholds struct {
	ConfirmViolation float64 `json:"confirm_violation" yaml:"confirm_violation"`
	Dismiss          float64 `json:"dismiss" yaml:"dismiss"`
}

// Legal carries the citation backing a rule
type Legal struct {
	Citation string `json:"citation" yaml:"citation"`
	Statute  string `json:"statute,omitempty" yaml:"statute,omitempty"`
	Penalty  string `json:"penalty,omitempty" yaml:"penalty,omitempty"`
}

// Recommendation is the remediation guidance attached to findings
type Recommendation struct {
	Action      string `json:"action" yaml:"action"`
	BadExample  string `json:"bad_example,omitempty" yaml:"bad_example,omitempty"`
	GoodExample string `json:"good_example,omitempty" yaml:"good_example,omitempty"`
}

// Validate checks the load-time invariants. A rule failing validation is
// a configuration error and must not enter a run.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule has no id")
	}
	switch r.Severity {
	case SeverityCritical, SeverityWarning, SeverityInfo:
	default:
		return fmt.Errorf("rule %s: invalid severity %q", r.ID, r.Severity)
	}
	if r.RiskScore < 1 || r.RiskScore > 100 {
		return fmt.Errorf("rule %s: risk_score %d out of range [1,100]", r.ID, r.RiskScore)
	}
	if len(r.Triggers.Keywords) == 0 && len(r.Triggers.Patterns) == 0 && len(r.Triggers.Semantic) == 0 {
		return fmt.Errorf("rule %s: no triggers configured", r.ID)
	}
	t := r.Thresholds
	if t.Dismiss < 0 || t.ConfirmViolation > 1 {
		return fmt.Errorf("rule %s: thresholds out of [0,1]", r.ID)
	}
	if t.Dismiss >= t.ConfirmViolation {
		return fmt.Errorf("rule %s: dismiss (%.2f) must be below confirm_violation (%.2f)", r.ID, t.Dismiss, t.ConfirmViolation)
	}
	for _, wp := range r.Context.Aggravating {
		if err := wp.validate(r.ID, "aggravating"); err != nil {
			return err
		}
	}
	for _, wp := range r.Context.Mitigating {
		if err := wp.validate(r.ID, "mitigating"); err != nil {
			return err
		}
	}
	if req := r.Context.Required; req != nil {
		if len(req.Keywords) == 0 {
			return fmt.Errorf("rule %s: required gate without keywords", r.ID)
		}
		if req.Logic != RequiredAND && req.Logic != RequiredOR {
			return fmt.Errorf("rule %s: required logic %q must be AND or OR", r.ID, req.Logic)
		}
	}
	if r.Context.WindowSize < 0 {
		return fmt.Errorf("rule %s: negative window_size", r.ID)
	}
	return nil
}

func (wp WeightedPattern) validate(ruleID, class string) error {
	if wp.Pattern == "" {
		return fmt.Errorf("rule %s: empty %s pattern", ruleID, class)
	}
	if wp.Weight < 0.1 || wp.Weight > 1.0 {
		return fmt.Errorf("rule %s: %s pattern %q weight %.2f out of range [0.1,1.0]", ruleID, class, wp.Pattern, wp.Weight)
	}
	return nil
}
