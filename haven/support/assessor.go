// haven/support/assessor.go
package support

import (
	"fmt"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
)

// RiskResult is the outcome of assessing a single message.
type RiskResult struct {
	Level    RiskLevel `json:"level"`
	Triggers []string  `json:"triggers"`
}

type tier struct {
	level    RiskLevel
	keywords []string
	matcher  *goahocorasick.Machine
}

// Assessor classifies message text by scanning keyword tiers from the most
// severe down.
type Assessor struct {
	tiers []tier
}

func NewAssessor(table KeywordTable) (*Assessor, error) {
	a := &Assessor{}
	for _, t := range []struct {
		level    RiskLevel
		keywords []string
	}{
		{RiskImmediateDanger, table.ImmediateDanger},
		{RiskHigh, table.High},
		{RiskModerate, table.Moderate},
	} {
		built, err := buildTier(t.level, t.keywords)
		if err != nil {
			return nil, err
		}
		a.tiers = append(a.tiers, built)
	}
	return a, nil
}

func buildTier(level RiskLevel, keywords []string) (tier, error) {
	t := tier{level: level}
	seen := make(map[string]bool, len(keywords))
	patterns := make([][]rune, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		t.keywords = append(t.keywords, kw)
		patterns = append(patterns, []rune(kw))
	}
	if len(patterns) == 0 {
		return t, nil
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return tier{}, fmt.Errorf("build %s keywords: %w", level, err)
	}
	t.matcher = m
	return t, nil
}

// matches reports the tier keywords found in text, in table order.
func (t tier) matches(text []rune) []string {
	if t.matcher == nil || len(text) == 0 {
		return nil
	}
	terms := t.matcher.MultiPatternSearch(text, false)
	if len(terms) == 0 {
		return nil
	}
	found := make(map[string]bool, len(terms))
	for _, term := range terms {
		found[string(term.Word)] = true
	}
	var out []string
	for _, kw := range t.keywords {
		if found[kw] {
			out = append(out, kw)
		}
	}
	return out
}

// Assess never returns RiskUnknown: text without any trigger is low risk.
// An immediate danger match stops the scan, so lower tiers add no triggers.
func (a *Assessor) Assess(text string) RiskResult {
	lowered := []rune(strings.ToLower(text))
	result := RiskResult{Level: RiskLow, Triggers: []string{}}
	for _, t := range a.tiers {
		found := t.matches(lowered)
		if len(found) == 0 {
			continue
		}
		result.Triggers = append(result.Triggers, found...)
		if t.level == RiskImmediateDanger {
			result.Level = RiskImmediateDanger
			break
		}
		result.Level = MergeRiskLevels(result.Level, t.level)
	}
	return result
}
