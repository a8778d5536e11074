package model

import "time"

// Document is one unit of crawler input: a page region's extracted text
type Document struct {
	Text         string `json:"text"`
	SourceLabel  string `json:"source_label"` // URL or region identifier
	IsMenuRegion bool   `json:"is_menu_region"`
}

// Finding is the emitted record for a candidate that was not a pass.
// It is self-contained: everything a reviewer needs to understand the
// decision is on the record, no further lookups.
type Finding struct {
	RuleID      string   `json:"rule_id"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Severity    Severity `json:"severity"`
	RiskScore   int      `json:"risk_score"`

	Matched       string `json:"matched"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
	Window        string `json:"window"`
	ContextBefore string `json:"context_before,omitempty"` // extended slice preceding the match
	ContextAfter  string `json:"context_after,omitempty"`  // extended slice following the match

	Decision   Decision      `json:"decision"` // violation or warning
	Confidence float64       `json:"confidence"`
	Scores     ContextScores `json:"scores"`
	Evidence   ScoreEvidence `json:"evidence"`

	Legal          Legal          `json:"legal"`
	Recommendation Recommendation `json:"recommendation"`

	AIVerification *AIVerification `json:"ai_verification,omitempty"`
}

// FilterStats counts candidates suppressed by the exclusion machinery
type FilterStats struct {
	ViolationsFiltered int                     `json:"violations_filtered"`
	ByReason           map[ExclusionReason]int `json:"by_reason,omitempty"`
}

// NewFilterStats returns an empty stats record
func NewFilterStats() FilterStats {
	return FilterStats{ByReason: make(map[ExclusionReason]int)}
}

// Add records one suppressed candidate
func (s *FilterStats) Add(reason ExclusionReason) {
	s.ViolationsFiltered++
	if s.ByReason == nil {
		s.ByReason = make(map[ExclusionReason]int)
	}
	s.ByReason[reason]++
}

// AnalysisResult is the complete outcome for one document
type AnalysisResult struct {
	SourceLabel string    `json:"source_label"`
	AnalyzedAt  time.Time `json:"analyzed_at"`

	Score      int       `json:"score"` // 0-100 compliance score
	Violations []Finding `json:"violations"`
	Warnings   []Finding `json:"warnings"`

	FilterStats FilterStats `json:"filter_stats"`

	RulesEvaluated int  `json:"rules_evaluated"`
	RulesSkipped   int  `json:"rules_skipped,omitempty"` // regex compile failures
	TimedOut       bool `json:"timed_out,omitempty"`     // per-document deadline hit during a batch run
}

// EmptyResult returns a valid result for a degenerate document
func EmptyResult(sourceLabel string) *AnalysisResult {
	return &AnalysisResult{
		SourceLabel: sourceLabel,
		AnalyzedAt:  time.Now().UTC(),
		Score:       100,
		Violations:  []Finding{},
		Warnings:    []Finding{},
		FilterStats: NewFilterStats(),
	}
}
