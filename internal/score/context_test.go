package score

import (
	"math"
	"testing"

	"github.com/medwatch/claimscan/internal/exclusions"
	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/rules"
)

func compiledRule(t *testing.T, rule model.Rule) *rules.CompiledRule {
	t.Helper()
	store, err := rules.NewStore([]model.Rule{rule})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return store.Rules()[0]
}

func baseRule() model.Rule {
	return model.Rule{
		ID:        "cure-claim",
		Category:  "efficacy",
		Severity:  model.SeverityCritical,
		RiskScore: 80,
		Triggers:  model.Triggers{Keywords: []string{"cure"}},
		Context: model.ContextConfig{
			WindowSize: 200,
			Aggravating: []model.WeightedPattern{
				{Pattern: "100%", Weight: 0.8},
				{Pattern: "guaranteed", Weight: 0.6},
			},
			Mitigating: []model.WeightedPattern{
				{Pattern: "results may vary", Weight: 0.9},
				{Pattern: "in some cases", Weight: 0.4},
			},
		},
		Thresholds: model.Thresholds{ConfirmViolation: 0.8, Dismiss: 0.4},
	}
}

func candidate(window string) model.MatchCandidate {
	return model.MatchCandidate{
		RuleID:  "cure-claim",
		Matched: "cure",
		Start:   10,
		End:     14,
		Window:  window,
		Trigger: "cure",
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_AggravatedViolation(t *testing.T) {
	scorer := NewContextScorer(nil)
	rule := compiledRule(t, baseRule())

	result := scorer.Score(candidate("this cure is 100% guaranteed to work"), rule)

	if !almostEqual(result.Scores.TriggerScore, 1.0) {
		t.Errorf("expected trigger score 1.0, got %f", result.Scores.TriggerScore)
	}
	// 0.8 + 0.6 caps at 1.0
	if !almostEqual(result.Scores.AggravatingScore, 1.0) {
		t.Errorf("expected aggravating score capped at 1.0, got %f", result.Scores.AggravatingScore)
	}
	if !almostEqual(result.Scores.MitigatingScore, 0) {
		t.Errorf("expected mitigating score 0, got %f", result.Scores.MitigatingScore)
	}
	// 1.0 + 1.0 - 0 clamps to 1.0
	if !almostEqual(result.Scores.FinalScore, 1.0) {
		t.Errorf("expected final score 1.0, got %f", result.Scores.FinalScore)
	}
	if len(result.Evidence.AggravatingMatches) != 2 {
		t.Errorf("expected 2 aggravating matches recorded, got %d", len(result.Evidence.AggravatingMatches))
	}
}

func TestScore_MitigatedClaim(t *testing.T) {
	scorer := NewContextScorer(nil)
	rule := compiledRule(t, baseRule())

	result := scorer.Score(candidate("a cure is possible, though results may vary"), rule)

	if !almostEqual(result.Scores.MitigatingScore, 0.9) {
		t.Errorf("expected mitigating score 0.9, got %f", result.Scores.MitigatingScore)
	}
	// 1.0 + 0 - 0.9 = 0.1
	if !almostEqual(result.Scores.FinalScore, 0.1) {
		t.Errorf("expected final score 0.1, got %f", result.Scores.FinalScore)
	}
	if len(result.Evidence.MitigatingMatches) != 1 || result.Evidence.MitigatingMatches[0] != "results may vary" {
		t.Errorf("expected mitigating evidence recorded, got %v", result.Evidence.MitigatingMatches)
	}
}

func TestScore_BareTrigger(t *testing.T) {
	scorer := NewContextScorer(nil)
	rule := compiledRule(t, baseRule())

	result := scorer.Score(candidate("we discuss whether a cure exists"), rule)

	// No context evidence either way: final score is the trigger score
	if !almostEqual(result.Scores.FinalScore, 1.0) {
		t.Errorf("expected final score 1.0, got %f", result.Scores.FinalScore)
	}
	if !almostEqual(result.Scores.AggravatingScore, 0) || !almostEqual(result.Scores.MitigatingScore, 0) {
		t.Error("absent evidence classes must contribute 0")
	}
}

func TestScore_SemanticTriggerReduced(t *testing.T) {
	scorer := NewContextScorer(nil)
	rule := compiledRule(t, baseRule())

	c := candidate("this treatment makes illness vanish, results may vary")
	c.Semantic = true
	result := scorer.Score(c, rule)

	if !almostEqual(result.Scores.TriggerScore, 0.6) {
		t.Errorf("expected semantic trigger score 0.6, got %f", result.Scores.TriggerScore)
	}
	// 0.6 + 0 - 0.9 clamps to 0
	if !almostEqual(result.Scores.FinalScore, 0) {
		t.Errorf("expected clamped final score 0, got %f", result.Scores.FinalScore)
	}
}

func TestScore_MitigationMonotonic(t *testing.T) {
	scorer := NewContextScorer(nil)
	rule := compiledRule(t, baseRule())

	without := scorer.Score(candidate("the cure works, guaranteed"), rule)
	with := scorer.Score(candidate("the cure works, guaranteed, but results may vary"), rule)

	if with.Scores.FinalScore >= without.Scores.FinalScore {
		t.Errorf("adding mitigating evidence must not raise the score: %f >= %f",
			with.Scores.FinalScore, without.Scores.FinalScore)
	}
}

func TestScore_RequiredGateAND(t *testing.T) {
	raw := baseRule()
	raw.Context.Required = &model.RequiredConfig{
		Keywords: []string{"treatment", "clinic"},
		Logic:    model.RequiredAND,
	}
	rule := compiledRule(t, raw)
	scorer := NewContextScorer(nil)

	// Both present: gate passes
	pass := scorer.Score(candidate("our clinic offers a cure as a treatment"), rule)
	if !almostEqual(pass.Scores.RequiredScore, 1.0) {
		t.Errorf("expected required score 1.0, got %f", pass.Scores.RequiredScore)
	}
	if almostEqual(pass.Scores.FinalScore, 0) {
		t.Error("satisfied gate must not zero the score")
	}

	// Only one present: gate fails and forces the score to zero
	fail := scorer.Score(candidate("our clinic discusses a cure, guaranteed 100%"), rule)
	if !almostEqual(fail.Scores.RequiredScore, 0) {
		t.Errorf("expected required score 0, got %f", fail.Scores.RequiredScore)
	}
	if !almostEqual(fail.Scores.FinalScore, 0) {
		t.Errorf("failed required gate must force final score 0 regardless of aggravators, got %f", fail.Scores.FinalScore)
	}
}

func TestScore_RequiredGateOR(t *testing.T) {
	raw := baseRule()
	raw.Context.Required = &model.RequiredConfig{
		Keywords: []string{"surgery", "procedure"},
		Logic:    model.RequiredOR,
	}
	rule := compiledRule(t, raw)
	scorer := NewContextScorer(nil)

	pass := scorer.Score(candidate("the cure after surgery"), rule)
	if !almostEqual(pass.Scores.RequiredScore, 1.0) {
		t.Errorf("expected OR gate satisfied by one keyword, got %f", pass.Scores.RequiredScore)
	}

	fail := scorer.Score(candidate("the cure in general"), rule)
	if !almostEqual(fail.Scores.FinalScore, 0) {
		t.Errorf("OR gate with no keyword present must force 0, got %f", fail.Scores.FinalScore)
	}
}

func TestScore_RulePatternExclusionWins(t *testing.T) {
	raw := baseRule()
	raw.Context.Exclusions = []string{`no\s+cure`}
	rule := compiledRule(t, raw)
	scorer := NewContextScorer(nil)

	result := scorer.Score(candidate("there is no cure, 100% guaranteed"), rule)

	if !result.Excluded {
		t.Fatal("expected exclusion to win over aggravating evidence")
	}
	if result.ExclusionReason != model.ReasonRulePattern {
		t.Errorf("expected rule_pattern reason, got %s", result.ExclusionReason)
	}
	if result.Decision != model.DecisionPass {
		t.Errorf("excluded candidate must pass, got %s", result.Decision)
	}
	if !almostEqual(result.Confidence, 1.0) {
		t.Errorf("expected confidence 1.0, got %f", result.Confidence)
	}
	if !almostEqual(result.Scores.FinalScore, 0) {
		t.Errorf("expected final score 0, got %f", result.Scores.FinalScore)
	}
}

func TestScore_LearnedExclusionWins(t *testing.T) {
	store, err := exclusions.Open(model.ExclusionsConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Append(model.ExclusionEntry{
		Phrase: "cure",
		Reason: model.ReasonMenuText,
		RuleID: "cure-claim",
		Domain: "clinic.example.com",
	}); err != nil {
		t.Fatal(err)
	}

	scorer := NewContextScorer(store.Snapshot())
	rule := compiledRule(t, baseRule())

	result := scorer.Score(candidate("the cure is 100% guaranteed"), rule)
	if !result.Excluded {
		t.Fatal("expected learned phrase to exclude the candidate")
	}
	if result.ExclusionReason != model.ReasonMenuText {
		t.Errorf("expected menu_text reason, got %s", result.ExclusionReason)
	}
}

func TestScore_Deterministic(t *testing.T) {
	scorer := NewContextScorer(nil)
	rule := compiledRule(t, baseRule())
	c := candidate("the cure is guaranteed, but results may vary in some cases")

	first := scorer.Score(c, rule)
	for i := 0; i < 5; i++ {
		again := scorer.Score(c, rule)
		if again.Scores != first.Scores {
			t.Fatalf("identical input produced different scores: %+v vs %+v", again.Scores, first.Scores)
		}
		if again.Decision != first.Decision || again.Excluded != first.Excluded {
			t.Fatal("identical input produced a different decision")
		}
	}
}

func TestWeighClass_CaseInsensitiveKeywords(t *testing.T) {
	patterns := []model.WeightedPattern{{Pattern: "Guaranteed", Weight: 0.5}}
	sum, matched := weighClass("this is GUARANTEED to work", patterns, nil)
	if !almostEqual(sum, 0.5) {
		t.Errorf("expected 0.5, got %f", sum)
	}
	if len(matched) != 1 {
		t.Errorf("expected 1 match, got %d", len(matched))
	}
}

func TestWeighClass_EmptyClass(t *testing.T) {
	sum, matched := weighClass("anything", nil, nil)
	if sum != 0 || matched != nil {
		t.Errorf("empty class must contribute nothing, got %f %v", sum, matched)
	}
}
