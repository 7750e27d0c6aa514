// haven/utils/color/color.go
package color

import (
	"haven/haven/support"

	"github.com/fatih/color"
)

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	infoColor    = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	botRespColor = color.New(color.FgHiYellow)

	riskColors = map[support.RiskLevel]*color.Color{
		support.RiskLow:             color.New(color.FgGreen),
		support.RiskModerate:        color.New(color.FgYellow, color.Bold),
		support.RiskHigh:            color.New(color.FgHiRed, color.Bold),
		support.RiskImmediateDanger: color.New(color.FgWhite, color.BgRed, color.Bold),
	}
)

func ColorPrompt(s string) string {
	return promptColor.Sprint(s)
}

func ColorInfo(s string) string {
	return infoColor.Sprint(s)
}

func ColorError(s string) string {
	return errorColor.Sprint(s)
}

func ColorBotResponse(s string) string {
	return botRespColor.Sprint(s)
}

// ColorRisk renders a risk level; unknown levels are left uncoloured.
func ColorRisk(level support.RiskLevel) string {
	c, ok := riskColors[level]
	if !ok {
		return level.String()
	}
	return c.Sprint(level.String())
}
