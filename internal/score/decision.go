package score

import (
	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/rules"
)

// needsAIConfidence is the confidence assigned to the ambiguous band:
// maximal uncertainty until the verifier answers
const needsAIConfidence = 0.5

// DecisionEngine maps a final score into a decision band using the rule's
// thresholds. Rules are independent: no rule ever suppresses another.
type DecisionEngine struct{}

// NewDecisionEngine creates a new decision engine
func NewDecisionEngine() *DecisionEngine {
	return &DecisionEngine{}
}

// Decide fills Decision and Confidence on a scored result. Excluded
// candidates were already decided by the scorer and pass through untouched.
func (e *DecisionEngine) Decide(result *model.ContextAnalysisResult, rule *rules.CompiledRule) {
	if result.Excluded {
		return
	}

	final := result.Scores.FinalScore
	switch {
	case final >= rule.Thresholds.ConfirmViolation:
		result.Decision = model.DecisionViolation
		result.Confidence = final
	case final <= rule.Thresholds.Dismiss:
		result.Decision = model.DecisionPass
		result.Confidence = 1 - final
	case rule.AIVerification:
		result.Decision = model.DecisionNeedsAI
		result.Confidence = needsAIConfidence
	default:
		// Ambiguous band with escalation disabled degrades to a warning
		result.Decision = model.DecisionWarning
		result.Confidence = final
	}
}

// ApplyVerdict resolves a needs_ai result with the verifier's answer.
// A failed escalation falls back to warning: availability of the verifier
// must never block emission of a result.
func (e *DecisionEngine) ApplyVerdict(result *model.ContextAnalysisResult, verification *model.AIVerification) {
	result.AIVerification = verification

	if verification.Failed {
		result.Decision = model.DecisionWarning
		result.Confidence = result.Scores.FinalScore
		return
	}

	switch verification.Verdict {
	case model.VerdictConfirmViolation:
		result.Decision = model.DecisionViolation
		result.Confidence = result.Scores.FinalScore
	case model.VerdictConfirmPass:
		result.Decision = model.DecisionPass
		result.Confidence = 1 - result.Scores.FinalScore
	default:
		result.Decision = model.DecisionWarning
		result.Confidence = result.Scores.FinalScore
	}
}
