package model

import "time"

// ExclusionReason explains why a phrase was recorded as a false positive
type ExclusionReason string

const (
	ReasonMenuText        ExclusionReason = "menu_text"        // span sat inside a navigation/structural region
	ReasonGlobalExclusion ExclusionReason = "global_exclusion" // promoted cross-rule safe phrase
	ReasonLoginProtected  ExclusionReason = "login_protected"
	ReasonContextNegative ExclusionReason = "context_negative"
	ReasonInfoOnly        ExclusionReason = "info_only"
	ReasonRulePattern     ExclusionReason = "rule_pattern" // matched a rule's own exclusions list
)

// ExclusionEntry is one learned false-positive determination.
// Entries are append-only: never mutated or deleted, only aggregated.
type ExclusionEntry struct {
	Phrase    string          `json:"phrase"` // normalized: trimmed, case-folded
	Reason    ExclusionReason `json:"reason"`
	RuleID    string          `json:"rule_id,omitempty"` // empty for global exclusions
	Domain    string          `json:"domain,omitempty"`  // source domain the overturn came from
	Source    string          `json:"source,omitempty"`  // "reviewer" or "ai_verifier"
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
