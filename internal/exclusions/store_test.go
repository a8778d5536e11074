package exclusions

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/medwatch/claimscan/internal/model"
)

func openTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exclusions.jsonl")
	store, err := Open(model.ExclusionsConfig{Path: path, PromoteAfter: 3})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return store, path
}

func TestStore_AppendAndLookup(t *testing.T) {
	store, _ := openTempStore(t)

	err := store.Append(model.ExclusionEntry{
		Phrase: "Pain-Free Dentistry",
		Reason: model.ReasonContextNegative,
		RuleID: "cure-guarantee",
		Domain: "clinic.example.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	snap := store.Snapshot()

	// Lookup normalizes, so case and whitespace variants all hit
	for _, phrase := range []string{"pain-free dentistry", "Pain-Free Dentistry", "  PAIN-FREE DENTISTRY  "} {
		reason, ok := snap.Lookup("cure-guarantee", phrase)
		if !ok {
			t.Errorf("expected %q to be excluded", phrase)
			continue
		}
		if reason != model.ReasonContextNegative {
			t.Errorf("expected context_negative, got %s", reason)
		}
	}

	// Per-rule entries do not leak to other rules
	if _, ok := snap.Lookup("price-inducement", "pain-free dentistry"); ok {
		t.Error("per-rule exclusion must not apply to other rules")
	}
}

func TestStore_EmptyPhraseRejected(t *testing.T) {
	store, _ := openTempStore(t)
	if err := store.Append(model.ExclusionEntry{Phrase: "   ", Reason: model.ReasonMenuText, RuleID: "r"}); err == nil {
		t.Fatal("expected error for empty phrase")
	}
}

func TestStore_MenuTextScoping(t *testing.T) {
	store, _ := openTempStore(t)

	err := store.Append(model.ExclusionEntry{
		Phrase: "cancer treatment",
		Reason: model.ReasonMenuText,
		RuleID: "cure-guarantee",
		Domain: "hospital.example.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	snap := store.Snapshot()
	reason, ok := snap.Lookup("cure-guarantee", "cancer treatment")
	if !ok || reason != model.ReasonMenuText {
		t.Errorf("expected menu_text hit, got %v %v", reason, ok)
	}
	if _, ok := snap.Lookup("side-effect-denial", "cancer treatment"); ok {
		t.Error("menu text learned for one rule must not apply to another")
	}
}

func TestStore_GlobalAppliesToEveryRule(t *testing.T) {
	store, _ := openTempStore(t)

	err := store.Append(model.ExclusionEntry{
		Phrase: "contact us",
		Reason: model.ReasonGlobalExclusion,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	snap := store.Snapshot()
	for _, ruleID := range []string{"cure-guarantee", "price-inducement", "anything"} {
		reason, ok := snap.Lookup(ruleID, "contact us")
		if !ok || reason != model.ReasonGlobalExclusion {
			t.Errorf("rule %s: expected global hit, got %v %v", ruleID, reason, ok)
		}
	}
}

func TestStore_PromotionAfterDistinctContexts(t *testing.T) {
	store, _ := openTempStore(t)

	// Same phrase overturned under three distinct rule/domain pairs
	contexts := []struct{ rule, domain string }{
		{"cure-guarantee", "a.example.com"},
		{"side-effect-denial", "a.example.com"},
		{"cure-guarantee", "b.example.com"},
	}
	for _, c := range contexts {
		err := store.Append(model.ExclusionEntry{
			Phrase: "best care",
			Reason: model.ReasonContextNegative,
			RuleID: c.rule,
			Domain: c.domain,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	snap := store.Snapshot()
	reason, ok := snap.Lookup("never-seen-rule", "best care")
	if !ok {
		t.Fatal("expected promotion to global after 3 distinct rule/domain contexts")
	}
	if reason != model.ReasonGlobalExclusion {
		t.Errorf("expected global_exclusion, got %s", reason)
	}

	// The promotion entry itself lands in the append log
	var promoted bool
	for _, e := range store.Entries() {
		if e.Reason == model.ReasonGlobalExclusion && e.Phrase == "best care" {
			promoted = true
			if e.Source != "promotion" {
				t.Errorf("expected promotion source, got %q", e.Source)
			}
		}
	}
	if !promoted {
		t.Error("expected a global_exclusion entry in the log")
	}
}

func TestStore_NoPromotionOnRepeatedSameContext(t *testing.T) {
	store, _ := openTempStore(t)

	for i := 0; i < 5; i++ {
		err := store.Append(model.ExclusionEntry{
			Phrase: "our services",
			Reason: model.ReasonContextNegative,
			RuleID: "cure-guarantee",
			Domain: "same.example.com",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	snap := store.Snapshot()
	if _, ok := snap.Lookup("other-rule", "our services"); ok {
		t.Error("repeats of the same rule/domain pair must not promote")
	}
}

func TestStore_AppendOnlyLog(t *testing.T) {
	store, path := openTempStore(t)

	entries := []model.ExclusionEntry{
		{Phrase: "one", Reason: model.ReasonContextNegative, RuleID: "r1", Domain: "d1"},
		{Phrase: "two", Reason: model.ReasonMenuText, RuleID: "r2", Domain: "d2"},
		{Phrase: "one", Reason: model.ReasonInfoOnly, RuleID: "r3", Domain: "d3"},
	}
	for _, e := range entries {
		if err := store.Append(e); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	// The log grows monotonically: one line per append, none rewritten
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	if lines != 3 {
		t.Errorf("expected 3 log lines, got %d", lines)
	}

	got := store.Entries()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, e := range entries {
		if got[i].Phrase != e.Phrase || got[i].Reason != e.Reason {
			t.Errorf("entry %d: expected %s/%s, got %s/%s", i, e.Phrase, e.Reason, got[i].Phrase, got[i].Reason)
		}
	}
}

func TestStore_PersistAcrossReopen(t *testing.T) {
	store, path := openTempStore(t)

	err := store.Append(model.ExclusionEntry{
		Phrase: "gentle care",
		Reason: model.ReasonMenuText,
		RuleID: "cure-guarantee",
		Domain: "clinic.example.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	reopened, err := Open(model.ExclusionsConfig{Path: path, PromoteAfter: 3})
	if err != nil {
		t.Fatalf("expected no error on reopen, got %v", err)
	}
	snap := reopened.Snapshot()
	if _, ok := snap.Lookup("cure-guarantee", "gentle care"); !ok {
		t.Error("expected learned phrase to survive a reopen")
	}
}

func TestStore_CorruptLineSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclusions.jsonl")
	content := `{"phrase":"good entry","reason":"context_negative","rule_id":"r1"}
this is not json
{"phrase":"another good one","reason":"context_negative","rule_id":"r1"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := Open(model.ExclusionsConfig{Path: path})
	if err != nil {
		t.Fatalf("a corrupt line must not fail the open, got %v", err)
	}
	snap := store.Snapshot()
	if _, ok := snap.Lookup("r1", "good entry"); !ok {
		t.Error("entries before the corrupt line must load")
	}
	if _, ok := snap.Lookup("r1", "another good one"); !ok {
		t.Error("entries after the corrupt line must load")
	}
	if len(store.Entries()) != 2 {
		t.Errorf("expected 2 entries, got %d", len(store.Entries()))
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	store, _ := openTempStore(t)

	snap := store.Snapshot()

	err := store.Append(model.ExclusionEntry{
		Phrase: "appended later",
		Reason: model.ReasonContextNegative,
		RuleID: "r1",
		Domain: "d1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// The pre-append snapshot must not see the new entry
	if _, ok := snap.Lookup("r1", "appended later"); ok {
		t.Error("snapshot taken before an append must not observe it")
	}
	if _, ok := store.Snapshot().Lookup("r1", "appended later"); !ok {
		t.Error("a fresh snapshot must observe the append")
	}
}

func TestStore_Stats(t *testing.T) {
	store, _ := openTempStore(t)

	seed := []model.ExclusionEntry{
		{Phrase: "a", Reason: model.ReasonMenuText, RuleID: "r1", Domain: "d1"},
		{Phrase: "b", Reason: model.ReasonMenuText, RuleID: "r1", Domain: "d2"},
		{Phrase: "c", Reason: model.ReasonContextNegative, RuleID: "r2", Domain: "d1"},
		{Phrase: "d", Reason: model.ReasonGlobalExclusion},
	}
	for _, e := range seed {
		if err := store.Append(e); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	stats := store.Stats()
	if stats.Total != 4 {
		t.Errorf("expected total 4, got %d", stats.Total)
	}
	if stats.ByReason[model.ReasonMenuText] != 2 {
		t.Errorf("expected 2 menu_text, got %d", stats.ByReason[model.ReasonMenuText])
	}
	if stats.ByRule["r1"] != 2 {
		t.Errorf("expected 2 for r1, got %d", stats.ByRule["r1"])
	}
	if stats.Global != 1 {
		t.Errorf("expected 1 global, got %d", stats.Global)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Hello World  ": "hello world",
		"ALREADY":         "already",
		"":                "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLearner_RecordOverturn(t *testing.T) {
	store, _ := openTempStore(t)
	learner := NewLearner(store)

	candidate := model.MatchCandidate{RuleID: "cure-guarantee", Matched: "Guaranteed Results"}

	// Body region overturn learns as context_negative
	doc := model.Document{SourceLabel: "https://clinic.example.com/services", IsMenuRegion: false}
	if err := learner.RecordOverturn(candidate, doc, "ai_verifier", "informational"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Menu region overturn learns as menu_text
	menuDoc := model.Document{SourceLabel: "https://clinic.example.com/services", IsMenuRegion: true}
	menuCandidate := model.MatchCandidate{RuleID: "cure-guarantee", Matched: "Laser Therapy"}
	if err := learner.RecordOverturn(menuCandidate, menuDoc, "ai_verifier", ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Reason != model.ReasonContextNegative {
		t.Errorf("body overturn: expected context_negative, got %s", entries[0].Reason)
	}
	if entries[1].Reason != model.ReasonMenuText {
		t.Errorf("menu overturn: expected menu_text, got %s", entries[1].Reason)
	}
	if entries[0].Domain != "clinic.example.com" {
		t.Errorf("expected domain clinic.example.com, got %q", entries[0].Domain)
	}
	if entries[0].Source != "ai_verifier" {
		t.Errorf("expected source ai_verifier, got %q", entries[0].Source)
	}
}
