package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/medwatch/claimscan/internal/model"
)

// Provider is an external verifier for the ambiguous confidence band.
// It is a collaborator: asked to confirm or overturn a candidate, never to
// find candidates itself.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Verify asks the provider for a verdict on one candidate
	Verify(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request carries everything the verifier needs to judge a candidate
type Request struct {
	MatchedText     string
	ContextWindow   string
	RuleID          string
	RuleDescription string // category/subcategory plus recommendation action
	LegalBasis      string // citation and statute text

	// Model overrides the configured model for this call
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response is the verifier's answer
type Response struct {
	Verdict    model.Verdict
	Reasoning  string
	Model      string
	TokensUsed int
	CostUSD    float64
}

// Config holds verifier provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, test servers)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   20,
		MaxTokens: 500,
	}
}

// systemPrompt frames the verifier's role for chat-style providers
const systemPrompt = "You are a medical-advertising compliance reviewer. " +
	"You judge whether a flagged text span is a genuine regulatory violation " +
	"in its context. Answer with a verdict line first, then brief reasoning."

// BuildPrompt constructs the verification prompt for a candidate
func BuildPrompt(req Request) string {
	return fmt.Sprintf(`A compliance scanner flagged the following text span as a possible regulated medical-advertising claim, but its confidence is in the ambiguous band. Decide whether it is a genuine violation in context.

Rule: %s
%s
Legal basis: %s

Flagged span:
%q

Surrounding context:
%q

Consider negation, disclaimers, navigation/boilerplate text, and purely informational statements. Respond with exactly one of these verdict tokens on the first line:
- VIOLATION (the span is a genuine violation)
- PASS (the span is not a violation, e.g. negated, boilerplate, or informational)
- WARNING (borderline; should be reviewed but not certain)

Then give 1-3 sentences of reasoning.`, req.RuleID, req.RuleDescription, req.LegalBasis, req.MatchedText, req.ContextWindow)
}

// ParseVerdict extracts the verdict token from a provider's free-text answer.
// An unrecognizable answer degrades to confirm_warning rather than erroring:
// the borderline band stays borderline.
func ParseVerdict(text string) model.Verdict {
	upper := strings.ToUpper(text)
	firstLine := upper
	if idx := strings.IndexByte(upper, '\n'); idx >= 0 {
		firstLine = upper[:idx]
	}

	// Prefer a token at the start of the first line, where the prompt asks
	// for it. A substring scan would misread "PASS (not a violation)" as
	// VIOLATION.
	if v, ok := leadingVerdict(firstLine); ok {
		return v
	}

	for _, scope := range []string{firstLine, upper} {
		switch {
		case strings.Contains(scope, "NOT A VIOLATION"), strings.Contains(scope, "NO VIOLATION"):
			return model.VerdictConfirmPass
		case strings.Contains(scope, "VIOLATION"):
			return model.VerdictConfirmViolation
		case strings.Contains(scope, "PASS"):
			return model.VerdictConfirmPass
		case strings.Contains(scope, "WARNING"):
			return model.VerdictConfirmWarning
		}
	}
	return model.VerdictConfirmWarning
}

// leadingVerdict matches a verdict token at the start of the line, ignoring
// bullet or heading punctuation some models prepend.
func leadingVerdict(line string) (model.Verdict, bool) {
	line = strings.TrimLeft(strings.TrimSpace(line), "-*#> ")
	switch {
	case strings.HasPrefix(line, "VIOLATION"):
		return model.VerdictConfirmViolation, true
	case strings.HasPrefix(line, "PASS"):
		return model.VerdictConfirmPass, true
	case strings.HasPrefix(line, "WARNING"):
		return model.VerdictConfirmWarning, true
	}
	return "", false
}

// splitReasoning returns everything after the verdict line
func splitReasoning(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return ""
}
