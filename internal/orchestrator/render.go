package orchestrator

import (
	"fmt"
	"strings"

	"miniquest/internal/chat"
	"miniquest/internal/quest"
)

// RenderOutcome turns an outcome into the assistant message text. The
// transcript stores exactly what gets displayed, so a reloaded
// conversation reads the same as the live one did.
func RenderOutcome(outcome quest.Outcome) string {
	switch outcome.Kind {
	case quest.OutcomeSuccess:
		return renderSuccess(outcome.Success)
	case quest.OutcomeClarification:
		return outcome.Clarification.Message
	case quest.OutcomeOutOfScope:
		return renderOutOfScope(outcome.OutOfScope)
	case quest.OutcomeUnrelated:
		msg := outcome.Unrelated.Message
		if msg == "" {
			msg = "I plan local adventures - day trips, food crawls, museum runs. That one's outside my wheelhouse."
		}
		return msg
	default:
		return fmt.Sprintf("Sorry, something went wrong: %s", outcome.Failure.Reason)
	}
}

func renderSuccess(success *quest.SuccessOutcome) string {
	var sb strings.Builder

	count := len(success.Adventures)
	if count == 1 {
		sb.WriteString("Here's an adventure for you:\n")
	} else {
		sb.WriteString(fmt.Sprintf("Here are %d adventures for you:\n", count))
	}

	for i, adv := range success.Adventures {
		sb.WriteString(fmt.Sprintf("\n## %d. %s\n", i+1, adv.Title))
		if adv.Tagline != "" {
			sb.WriteString(fmt.Sprintf("*%s*\n", adv.Tagline))
		}
		if adv.Description != "" {
			sb.WriteString(adv.Description + "\n")
		}
		var facts []string
		if adv.Duration > 0 {
			facts = append(facts, formatMinutes(adv.Duration))
		}
		if adv.Cost > 0 {
			facts = append(facts, fmt.Sprintf("~$%.0f", adv.Cost))
		}
		if len(facts) > 0 {
			sb.WriteString(strings.Join(facts, " · ") + "\n")
		}
		for _, venue := range adv.Locations {
			sb.WriteString(fmt.Sprintf("- **%s**", venue.Name))
			if venue.Address != "" {
				sb.WriteString(" · " + venue.Address)
			}
			sb.WriteString("\n")
		}
	}

	if success.InsightsTotal > 0 {
		sb.WriteString(fmt.Sprintf("\nBacked by %d research insights (%.0f%% confidence).\n",
			success.InsightsTotal, success.AvgConfidence*100))
	}
	return sb.String()
}

func renderOutOfScope(oos *quest.OutOfScopeOutcome) string {
	msg := oos.Message
	if msg == "" {
		msg = "I can't help with that one - it falls outside local adventure planning."
	}

	var sb strings.Builder
	sb.WriteString(msg)

	if len(oos.RecommendedServices) > 0 {
		sb.WriteString("\n\nThese might serve you better:\n")
		for _, svc := range oos.RecommendedServices {
			sb.WriteString(fmt.Sprintf("- [%s](%s)", svc.Name, svc.URL))
			if svc.Description != "" {
				sb.WriteString(": " + svc.Description)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatMinutes(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

// Preview returns a short label for a transcript: the first user
// message, truncated.
func Preview(messages []chat.Message) string {
	for _, msg := range messages {
		if msg.Role == chat.RoleUser {
			if len(msg.Content) > 60 {
				return msg.Content[:57] + "..."
			}
			return msg.Content
		}
	}
	return ""
}
