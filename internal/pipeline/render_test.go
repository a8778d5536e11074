package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/medwatch/claimscan/internal/model"
)

func sampleResult() *model.AnalysisResult {
	result := model.EmptyResult("https://clinic.example.com")
	result.AnalyzedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	result.Score = 10
	result.Violations = []model.Finding{
		{
			RuleID:        "cure-guarantee",
			Category:      "efficacy",
			Severity:      model.SeverityCritical,
			RiskScore:     90,
			Matched:       "guaranteed cure",
			ContextBefore: "Our clinic offers a ",
			ContextAfter:  ", 100% effective.",
			Decision:      model.DecisionViolation,
			Confidence:    1.0,
			Legal:         model.Legal{Citation: "Medical Advertising Act art. 56"},
			Recommendation: model.Recommendation{
				Action:      "Remove the outcome guarantee",
				BadExample:  "guaranteed cure",
				GoodExample: "treatment options with individual outcomes",
			},
		},
	}
	result.FilterStats.Add(model.ReasonMenuText)
	return result
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	renderer := NewRenderer(true)

	if err := renderer.RenderJSON(sampleResult(), path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded model.AnalysisResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("rendered JSON must parse back: %v", err)
	}
	if decoded.Score != 10 || len(decoded.Violations) != 1 {
		t.Errorf("unexpected round trip: score %d, %d violations", decoded.Score, len(decoded.Violations))
	}
	if decoded.Violations[0].Legal.Citation != "Medical Advertising Act art. 56" {
		t.Error("legal metadata lost in rendering")
	}
}

func TestRenderMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	renderer := NewRenderer(true)

	if err := renderer.RenderMarkdown(sampleResult(), path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	report := string(data)

	for _, want := range []string{
		"# Compliance Report: https://clinic.example.com",
		"10/100",
		"cure-guarantee",
		"**guaranteed cure**",
		"Medical Advertising Act art. 56",
		"Remove the outcome guarantee",
		"menu_text: 1",
		"Generated by claimscan",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("expected report to contain %q", want)
		}
	}
}

func TestRenderMarkdown_NoFooter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	renderer := NewRenderer(false)

	if err := renderer.RenderMarkdown(sampleResult(), path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Generated by claimscan") {
		t.Error("footer must be omitted when disabled")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10, true); got != "short" {
		t.Errorf("expected unchanged, got %q", got)
	}
	if got := truncate("abcdefghij", 4, true); got != "ghij" {
		t.Errorf("expected tail kept, got %q", got)
	}
	if got := truncate("abcdefghij", 4, false); got != "abcd" {
		t.Errorf("expected head kept, got %q", got)
	}
}
