// haven/support/risk.go
package support

// RiskLevel is the ordinal severity attached to messages and conversations.
type RiskLevel string

const (
	RiskUnknown         RiskLevel = "unknown"
	RiskLow             RiskLevel = "low"
	RiskModerate        RiskLevel = "moderate"
	RiskHigh            RiskLevel = "high"
	RiskImmediateDanger RiskLevel = "immediate_danger"
)

// riskOrder lists the levels from least to most severe.
var riskOrder = []RiskLevel{
	RiskUnknown,
	RiskLow,
	RiskModerate,
	RiskHigh,
	RiskImmediateDanger,
}

// Rank returns the position of the level in the severity order.
// Values outside the enumeration rank as unknown.
func (l RiskLevel) Rank() int {
	for i, level := range riskOrder {
		if level == l {
			return i
		}
	}
	return 0
}

func (l RiskLevel) Valid() bool {
	for _, level := range riskOrder {
		if level == l {
			return true
		}
	}
	return false
}

func (l RiskLevel) String() string {
	return string(l)
}

// MergeRiskLevels keeps the most severe of the two levels.
func MergeRiskLevels(current, incoming RiskLevel) RiskLevel {
	return riskOrder[max(current.Rank(), incoming.Rank())]
}

// FoldRiskLevels merges every level into unknown, in order.
func FoldRiskLevels(levels ...RiskLevel) RiskLevel {
	result := RiskUnknown
	for _, level := range levels {
		result = MergeRiskLevels(result, level)
	}
	return result
}
