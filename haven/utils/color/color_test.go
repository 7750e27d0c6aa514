package color

import (
	"testing"

	"haven/haven/support"

	"github.com/fatih/color"
)

func TestColorRisk_NoColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	for _, level := range []support.RiskLevel{support.RiskLow, support.RiskImmediateDanger, support.RiskLevel("other")} {
		if got := ColorRisk(level); got != string(level) {
			t.Errorf("ColorRisk(%q) = %q", level, got)
		}
	}
}
