package pipeline

import (
	"github.com/medwatch/claimscan/internal/extract"
	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/rules"
)

// Default sizes of the extended before/after context on emitted findings.
// Independent of the scoring window: reviewers want more surrounding text
// than the scorer needs.
const (
	defaultContextBefore = 250
	defaultContextAfter  = 250
)

// Assembler packages a scored candidate into the emitted finding record.
// The record is self-contained: matched span, contexts, component scores,
// legal citation and remediation all travel together, so no further lookup
// is needed to explain the decision to a reviewer.
type Assembler struct {
	contextBefore int
	contextAfter  int
}

// NewAssembler creates an assembler with default context sizes
func NewAssembler() *Assembler {
	return &Assembler{
		contextBefore: defaultContextBefore,
		contextAfter:  defaultContextAfter,
	}
}

// Assemble builds the finding for a candidate that was not a pass
func (a *Assembler) Assemble(text string, scored model.ContextAnalysisResult, rule *rules.CompiledRule) model.Finding {
	candidate := scored.Candidate
	before, after := extract.BeforeAfter(text, candidate.Start, candidate.End, a.contextBefore, a.contextAfter)

	return model.Finding{
		RuleID:      rule.ID,
		Category:    rule.Category,
		Subcategory: rule.Subcategory,
		Severity:    rule.Severity,
		RiskScore:   rule.RiskScore,

		Matched:       candidate.Matched,
		Start:         candidate.Start,
		End:           candidate.End,
		Window:        candidate.Window,
		ContextBefore: before,
		ContextAfter:  after,

		Decision:   scored.Decision,
		Confidence: scored.Confidence,
		Scores:     scored.Scores,
		Evidence:   scored.Evidence,

		Legal:          rule.Legal,
		Recommendation: rule.Recommendation,

		AIVerification: scored.AIVerification,
	}
}
