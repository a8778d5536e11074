package exclusions

import (
	"net/url"
	"strings"

	"github.com/medwatch/claimscan/internal/model"
)

// Learner turns overturned findings into exclusion entries. It is the
// feedback loop: whenever a reviewer or the escalation verifier decides a
// would-be violation is not one, the matched phrase is recorded so the same
// false positive is suppressed on future runs.
type Learner struct {
	store *Store
}

// NewLearner creates a learner writing to the given store
func NewLearner(store *Store) *Learner {
	return &Learner{store: store}
}

// RecordOverturn appends an exclusion for an overturned candidate.
// The menu_text reason is computed from the document's region flag, not
// taken on faith from the caller.
func (l *Learner) RecordOverturn(candidate model.MatchCandidate, doc model.Document, source, note string) error {
	reason := model.ReasonContextNegative
	if doc.IsMenuRegion {
		reason = model.ReasonMenuText
	}

	return l.store.Append(model.ExclusionEntry{
		Phrase: candidate.Matched,
		Reason: reason,
		RuleID: candidate.RuleID,
		Domain: domainOf(doc.SourceLabel),
		Source: source,
		Note:   note,
	})
}

// RecordManual appends a reviewer-supplied exclusion with an explicit reason
func (l *Learner) RecordManual(phrase, ruleID, domain string, reason model.ExclusionReason, note string) error {
	return l.store.Append(model.ExclusionEntry{
		Phrase: phrase,
		Reason: reason,
		RuleID: ruleID,
		Domain: domain,
		Source: "reviewer",
		Note:   note,
	})
}

// domainOf extracts the host from a source label when it is a URL
func domainOf(sourceLabel string) string {
	if !strings.Contains(sourceLabel, "://") {
		return sourceLabel
	}
	parsed, err := url.Parse(sourceLabel)
	if err != nil || parsed.Host == "" {
		return sourceLabel
	}
	return parsed.Host
}
