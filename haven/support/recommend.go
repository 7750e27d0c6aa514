// haven/support/recommend.go
package support

import "github.com/samber/lo"

// Recommend picks the resources suited to a risk level, keeping catalog order.
func Recommend(level RiskLevel, resources []Resource) []Resource {
	switch level {
	case RiskHigh, RiskImmediateDanger:
		return lo.Filter(resources, func(r Resource, _ int) bool {
			return r.Category == CategoryEmergency
		})
	case RiskModerate:
		return lo.Filter(resources, func(r Resource, _ int) bool {
			return r.Category == CategorySupport || r.Category == CategoryFinancial
		})
	default:
		out := make([]Resource, len(resources))
		copy(out, resources)
		return out
	}
}
