// haven/support/compose.go
package support

const (
	openingText = "I'm really sorry that you're going through this. " +
		"Your safety and well-being are the most important things right now."

	immediateDangerGuidance = " If you are in immediate danger, please contact emergency services (such as 911) " +
		"or a trusted person nearby as soon as possible."
	highGuidance = " I hear how serious this situation is. Reaching out to a crisis hotline or advocate " +
		"can help you create a safety plan tailored to what you're facing."
	moderateGuidance = " It may help to document what is happening and connect with a local advocate who " +
		"can support you."
	defaultGuidance = " Thank you for sharing this with me. If you're comfortable, consider connecting " +
		"with a support organization that can listen and help you explore options."

	safetyReminder = " If you need to quickly close this page, remember to clear your browser history or use " +
		"a safe device whenever possible."
)

// ComposeResponse builds the bot reply for an assessed message.
func ComposeResponse(risk RiskResult) string {
	var guidance string
	switch risk.Level {
	case RiskImmediateDanger:
		guidance = immediateDangerGuidance
	case RiskHigh:
		guidance = highGuidance
	case RiskModerate:
		guidance = moderateGuidance
	default:
		guidance = defaultGuidance
	}
	return openingText + guidance + safetyReminder
}
