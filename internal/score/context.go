package score

import (
	"regexp"
	"strings"

	"github.com/medwatch/claimscan/internal/exclusions"
	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/rules"
)

// semanticTriggerScore is the reduced confidence for paraphrase triggers
const semanticTriggerScore = 0.6

// ContextScorer computes the component scores for one candidate from the
// evidence inside its context window. It is pure: no network, no writes,
// identical inputs always produce identical results.
type ContextScorer struct {
	snapshot *exclusions.Snapshot
}

// NewContextScorer creates a scorer reading the given exclusion snapshot
func NewContextScorer(snapshot *exclusions.Snapshot) *ContextScorer {
	if snapshot == nil {
		snapshot = exclusions.EmptySnapshot()
	}
	return &ContextScorer{snapshot: snapshot}
}

// Score evaluates one candidate against its rule.
// Exclusions always win: a matched exclusion pattern or a learned phrase
// forces the candidate to pass before any thresholding happens.
func (s *ContextScorer) Score(candidate model.MatchCandidate, rule *rules.CompiledRule) model.ContextAnalysisResult {
	result := model.ContextAnalysisResult{Candidate: candidate}
	window := candidate.Window

	// 1. Trigger component: a trigger fired by definition
	result.Scores.TriggerScore = 1.0
	if candidate.Semantic {
		result.Scores.TriggerScore = semanticTriggerScore
	}
	result.Evidence.TriggerMatches = []string{candidate.Trigger}

	// 2-3. Aggravating and mitigating evidence, capped at 1.0
	result.Scores.AggravatingScore, result.Evidence.AggravatingMatches =
		weighClass(window, rule.Context.Aggravating, rule.AggravatingRegex)
	result.Scores.MitigatingScore, result.Evidence.MitigatingMatches =
		weighClass(window, rule.Context.Mitigating, rule.MitigatingRegex)

	// 4. Required co-occurrence gate
	requiredOK := true
	if req := rule.Context.Required; req != nil {
		requiredOK, result.Evidence.RequiredMatches = evalRequired(window, req)
		if requiredOK {
			result.Scores.RequiredScore = 1.0
		}
	} else {
		result.Scores.RequiredScore = 1.0
	}

	// 5. Exclusions: rule patterns first, then the learned store
	if excluded, match, reason := s.checkExclusions(candidate, rule, window); excluded {
		result.Excluded = true
		result.ExclusionReason = reason
		result.Evidence.ExclusionMatch = match
		result.Scores.FinalScore = 0
		result.Decision = model.DecisionPass
		result.Confidence = 1.0
		return result
	}

	// Required-but-absent dismisses regardless of other evidence
	if !requiredOK {
		result.Scores.FinalScore = 0
		return result
	}

	// 6. Final score
	result.Scores.FinalScore = clamp(result.Scores.TriggerScore +
		result.Scores.AggravatingScore - result.Scores.MitigatingScore)

	return result
}

// weighClass sums the weights of matched patterns in a class, capped at 1.0.
// An absent class contributes 0.
func weighClass(window string, patterns []model.WeightedPattern, compiled []*regexp.Regexp) (float64, []string) {
	if len(patterns) == 0 {
		return 0, nil
	}

	lower := strings.ToLower(window)
	var sum float64
	var matched []string
	for i, wp := range patterns {
		hit := false
		if wp.IsRegex && i < len(compiled) && compiled[i] != nil {
			hit = compiled[i].MatchString(window)
		} else {
			hit = strings.Contains(lower, strings.ToLower(wp.Pattern))
		}
		if hit {
			sum += wp.Weight
			matched = append(matched, wp.Pattern)
		}
	}
	if sum > 1.0 {
		sum = 1.0
	}
	return sum, matched
}

// evalRequired checks the AND/OR condition over required keywords
func evalRequired(window string, req *model.RequiredConfig) (bool, []string) {
	lower := strings.ToLower(window)
	var matched []string
	for _, kw := range req.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	switch req.Logic {
	case model.RequiredAND:
		return len(matched) == len(req.Keywords), matched
	default: // OR
		return len(matched) > 0, matched
	}
}

// checkExclusions tests rule exclusion patterns against the window, then the
// learned store against the normalized matched phrase
func (s *ContextScorer) checkExclusions(candidate model.MatchCandidate, rule *rules.CompiledRule, window string) (bool, string, model.ExclusionReason) {
	for i, re := range rule.ExclusionPatterns {
		if re.MatchString(window) {
			return true, rule.Context.Exclusions[i], model.ReasonRulePattern
		}
	}
	if reason, ok := s.snapshot.Lookup(rule.ID, candidate.Matched); ok {
		return true, exclusions.Normalize(candidate.Matched), reason
	}
	return false, "", ""
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
