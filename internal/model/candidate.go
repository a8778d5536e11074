package model

// MatchCandidate is a raw trigger hit awaiting context scoring
type MatchCandidate struct {
	RuleID   string `json:"rule_id"`
	Matched  string `json:"matched"`             // the matched span
	Start    int    `json:"start"`               // absolute byte offset in the document
	End      int    `json:"end"`                 // exclusive
	Window   string `json:"window"`              // windowSize chars centered on the match, clipped
	Semantic bool   `json:"semantic,omitempty"`  // matched a paraphrase fallback trigger
	Trigger  string `json:"trigger"`             // which keyword/pattern fired
}

// Decision is the graded outcome for one candidate
type Decision string

const (
	DecisionViolation Decision = "violation"
	DecisionWarning   Decision = "warning"
	DecisionPass      Decision = "pass"
	DecisionNeedsAI   Decision = "needs_ai"
)

// ContextScores are the component scores behind a decision.
// Each component lists the sub-matches that produced it so the result is
// explainable without re-running the scorer.
type ContextScores struct {
	TriggerScore     float64 `json:"trigger_score"`
	AggravatingScore float64 `json:"aggravating_score"`
	MitigatingScore  float64 `json:"mitigating_score"`
	RequiredScore    float64 `json:"required_score"`
	FinalScore       float64 `json:"final_score"` // [0,1]
}

// ScoreEvidence records which configured patterns matched the window
type ScoreEvidence struct {
	TriggerMatches     []string `json:"trigger_matches,omitempty"`
	AggravatingMatches []string `json:"aggravating_matches,omitempty"`
	MitigatingMatches  []string `json:"mitigating_matches,omitempty"`
	RequiredMatches    []string `json:"required_matches,omitempty"`
	ExclusionMatch     string   `json:"exclusion_match,omitempty"` // what suppressed the candidate, if anything
}

// ContextAnalysisResult is the evaluated outcome for one candidate
type ContextAnalysisResult struct {
	Candidate       MatchCandidate  `json:"candidate"`
	Scores          ContextScores   `json:"scores"`
	Decision        Decision        `json:"decision"`
	Confidence      float64         `json:"confidence"` // [0,1]
	Evidence        ScoreEvidence   `json:"evidence"`
	Excluded        bool            `json:"excluded,omitempty"`
	ExclusionReason ExclusionReason `json:"exclusion_reason,omitempty"`

	AIVerification *AIVerification `json:"ai_verification,omitempty"`
}

// AIVerification records an escalation verdict when one occurred
type AIVerification struct {
	Provider  string  `json:"provider"`
	Model     string  `json:"model,omitempty"`
	Verdict   Verdict `json:"verdict"`
	Reasoning string  `json:"reasoning,omitempty"`
	CostUSD   float64 `json:"cost_usd,omitempty"`
	Cached    bool    `json:"cached,omitempty"`
	Failed    bool    `json:"failed,omitempty"` // provider errored or timed out; warning fallback applied
}

// Verdict is the escalation verifier's answer
type Verdict string

const (
	VerdictConfirmViolation Verdict = "confirm_violation"
	VerdictConfirmPass      Verdict = "confirm_pass"
	VerdictConfirmWarning   Verdict = "confirm_warning"
)
