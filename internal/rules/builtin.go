package rules

import "github.com/medwatch/claimscan/internal/model"

// BuiltinRules returns the default medical-advertising rule set.
// External YAML rules extend or replace these via RulesConfig.
func BuiltinRules() []model.Rule {
	return []model.Rule{
		{
			ID:          "cure-guarantee",
			Category:    "efficacy",
			Subcategory: "guarantee",
			Severity:    model.SeverityCritical,
			RiskScore:   90,
			Triggers: model.Triggers{
				Keywords: []string{"100% cured", "complete cure", "guaranteed cure", "cures all"},
				Patterns: []string{`\b(100|ninety[- ]?nine)\s?%\s+(cure|success|effective)`},
				Semantic: []string{"full recovery guaranteed", "never fails"},
			},
			Context: model.ContextConfig{
				WindowSize: 300,
				Aggravating: []model.WeightedPattern{
					{Pattern: "guaranteed", Weight: 0.4},
					{Pattern: "permanent", Weight: 0.3},
					{Pattern: "no relapse", Weight: 0.3},
				},
				Mitigating: []model.WeightedPattern{
					{Pattern: "individual results may vary", Weight: 0.9},
					{Pattern: "results vary", Weight: 0.6},
					{Pattern: "not guaranteed", Weight: 0.8},
					{Pattern: "may not", Weight: 0.4},
				},
				Exclusions: []string{`clinical\s+trial\s+protocol`, `terms\s+of\s+service`},
			},
			Thresholds:     model.Thresholds{ConfirmViolation: 0.8, Dismiss: 0.4},
			AIVerification: true,
			Legal: model.Legal{
				Citation: "Medical Advertising Act §14(1)",
				Statute:  "Advertising may not claim certainty of therapeutic success.",
				Penalty:  "Fine up to 50,000 or suspension of advertising privileges",
			},
			Recommendation: model.Recommendation{
				Action:      "Remove certainty language; describe outcomes as possible, not guaranteed.",
				BadExample:  "Our therapy leaves you 100% cured.",
				GoodExample: "Many patients report improvement; individual results may vary.",
			},
		},
		{
			ID:          "side-effect-denial",
			Category:    "safety",
			Subcategory: "absolutes",
			Severity:    model.SeverityCritical,
			RiskScore:   85,
			Triggers: model.Triggers{
				Keywords: []string{"no side effects", "completely safe", "zero risk", "absolutely harmless"},
				Semantic: []string{"nothing to worry about", "entirely without risk"},
			},
			Context: model.ContextConfig{
				WindowSize: 300,
				Aggravating: []model.WeightedPattern{
					{Pattern: "proven", Weight: 0.3},
					{Pattern: "for everyone", Weight: 0.4},
					{Pattern: `all\s+patients`, IsRegex: true, Weight: 0.4},
				},
				Mitigating: []model.WeightedPattern{
					{Pattern: "rare side effects", Weight: 0.7},
					{Pattern: "consult your doctor", Weight: 0.5},
					{Pattern: "may occur", Weight: 0.5},
				},
			},
			Thresholds:     model.Thresholds{ConfirmViolation: 0.8, Dismiss: 0.4},
			AIVerification: true,
			Legal: model.Legal{
				Citation: "Medical Advertising Act §14(2)",
				Statute:  "Advertising may not assert absence of risk or side effects.",
				Penalty:  "Fine up to 50,000",
			},
			Recommendation: model.Recommendation{
				Action:      "State that side effects can occur and refer readers to professional advice.",
				BadExample:  "The procedure has no side effects whatsoever.",
				GoodExample: "Side effects are uncommon but possible; discuss risks with your physician.",
			},
		},
		{
			ID:          "superlative-efficacy",
			Category:    "efficacy",
			Subcategory: "superlative",
			Severity:    model.SeverityWarning,
			RiskScore:   55,
			Triggers: model.Triggers{
				Keywords: []string{"the best treatment", "most effective therapy", "world-class results", "number one clinic"},
				Patterns: []string{`\bbest\s+(clinic|doctor|surgeon|hospital)\b`},
			},
			Context: model.ContextConfig{
				WindowSize: 250,
				Aggravating: []model.WeightedPattern{
					{Pattern: "in the country", Weight: 0.3},
					{Pattern: "unmatched", Weight: 0.3},
				},
				Mitigating: []model.WeightedPattern{
					{Pattern: "we strive", Weight: 0.6},
					{Pattern: "our goal", Weight: 0.6},
					{Pattern: "patient satisfaction survey", Weight: 0.5},
				},
			},
			Thresholds:     model.Thresholds{ConfirmViolation: 0.85, Dismiss: 0.45},
			AIVerification: true,
			Legal: model.Legal{
				Citation: "Medical Advertising Act §15",
				Statute:  "Comparative or superlative claims require verifiable substantiation.",
			},
			Recommendation: model.Recommendation{
				Action:      "Replace superlatives with verifiable statements or remove the comparison.",
				BadExample:  "We are the best clinic in the country.",
				GoodExample: "Our clinic is certified for this procedure and publishes its outcome data.",
			},
		},
		{
			ID:          "before-after-efficacy",
			Category:    "efficacy",
			Subcategory: "testimonial",
			Severity:    model.SeverityWarning,
			RiskScore:   60,
			Triggers: model.Triggers{
				Keywords: []string{"before and after", "before/after"},
				Patterns: []string{`\bafter\s+(just|only)\s+\d+\s+(days?|weeks?|sessions?)\b`},
			},
			Context: model.ContextConfig{
				WindowSize: 300,
				Required: &model.RequiredConfig{
					Keywords: []string{"treatment", "therapy", "procedure", "surgery"},
					Logic:    model.RequiredOR,
				},
				Aggravating: []model.WeightedPattern{
					{Pattern: "dramatic", Weight: 0.4},
					{Pattern: "amazing transformation", Weight: 0.5},
					{Pattern: "instant", Weight: 0.4},
				},
				Mitigating: []model.WeightedPattern{
					{Pattern: "individual results may vary", Weight: 0.9},
					{Pattern: "illustrative", Weight: 0.6},
				},
			},
			Thresholds:     model.Thresholds{ConfirmViolation: 0.8, Dismiss: 0.4},
			AIVerification: true,
			Legal: model.Legal{
				Citation: "Medical Advertising Act §16(3)",
				Statute:  "Before/after depictions implying assured outcomes are restricted.",
			},
			Recommendation: model.Recommendation{
				Action:      "Add variability disclaimers and remove time-bound outcome promises.",
				BadExample:  "Amazing transformation after just 3 sessions!",
				GoodExample: "Results shown are from one patient; outcomes and timelines vary.",
			},
		},
		{
			ID:          "price-inducement",
			Category:    "commercial",
			Subcategory: "discount",
			Severity:    model.SeverityInfo,
			RiskScore:   30,
			Triggers: model.Triggers{
				Keywords: []string{"limited time offer", "discount for surgery", "free consultation today only"},
				Patterns: []string{`\b\d{1,2}\s?%\s+off\b.{0,40}\b(surgery|procedure|treatment)\b`},
			},
			Context: model.ContextConfig{
				WindowSize: 250,
				Aggravating: []model.WeightedPattern{
					{Pattern: "book now", Weight: 0.3},
					{Pattern: "expires", Weight: 0.3},
				},
				Mitigating: []model.WeightedPattern{
					{Pattern: "consultation is free of charge", Weight: 0.5},
				},
			},
			Thresholds: model.Thresholds{ConfirmViolation: 0.75, Dismiss: 0.35},
			Legal: model.Legal{
				Citation: "Medical Advertising Act §18",
				Statute:  "Time-pressured price inducements for medical procedures are restricted.",
			},
			Recommendation: model.Recommendation{
				Action:      "Remove urgency framing from pricing of medical procedures.",
				BadExample:  "30% off surgery — book now, offer expires Friday!",
				GoodExample: "Pricing information is available on request.",
			},
		},
	}
}
