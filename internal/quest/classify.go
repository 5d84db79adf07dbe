package quest

import "miniquest/internal/chat"

// Default copy for variants the backend left unannotated.
const (
	defaultScopeIssue     = "out_of_scope"
	defaultFailureReason  = "Adventure generation failed. Please try again."
	defaultClarifyMessage = "Could you tell me a bit more about what you'd like to do?"
)

// Classify selects exactly one outcome variant from the raw response.
// The backend can in principle set several routing flags at once, so the
// priority order here is the tie-break: unrelated beats out-of-scope
// beats clarification beats success. Anything left is a failure.
func Classify(env Envelope) Outcome {
	md := env.Metadata

	if md.UnrelatedQuery {
		return Outcome{
			QueryID: md.QueryID,
			Kind:    OutcomeUnrelated,
			Unrelated: &UnrelatedOutcome{
				Message:     firstNonEmpty(md.Message, md.ClarificationMessage, env.Message),
				Suggestions: md.Suggestions,
			},
		}
	}

	if md.OutOfScope {
		issue := md.ScopeIssue
		if issue == "" {
			issue = defaultScopeIssue
		}
		return Outcome{
			QueryID: md.QueryID,
			Kind:    OutcomeOutOfScope,
			OutOfScope: &OutOfScopeOutcome{
				Issue:               issue,
				Message:             firstNonEmpty(md.Message, md.ClarificationMessage, env.Message),
				Suggestions:         md.Suggestions,
				RecommendedServices: md.RecommendedServices,
			},
		}
	}

	if md.ClarificationNeeded {
		msg := md.ClarificationMessage
		if msg == "" {
			msg = defaultClarifyMessage
		}
		return Outcome{
			QueryID: md.QueryID,
			Kind:    OutcomeClarification,
			Clarification: &ClarificationOutcome{
				Message:     msg,
				Suggestions: md.Suggestions,
			},
		}
	}

	if env.Success && len(env.Adventures) > 0 {
		insights, confidence := aggregateResearch(env.Adventures)
		return Outcome{
			QueryID: md.QueryID,
			Kind:    OutcomeSuccess,
			Success: &SuccessOutcome{
				Adventures:    env.Adventures,
				InsightsTotal: insights,
				AvgConfidence: confidence,
			},
		}
	}

	reason := firstNonEmpty(md.Error, env.Message)
	if reason == "" {
		reason = defaultFailureReason
	}
	return Outcome{
		QueryID: md.QueryID,
		Kind:    OutcomeFailure,
		Failure: &FailureOutcome{Reason: reason},
	}
}

// aggregateResearch sums insight counts and averages research confidence
// across all researched venues. The average is 0 when no venue carries
// research.
func aggregateResearch(adventures []chat.Adventure) (int, float64) {
	insights := 0
	confidenceSum := 0.0
	researched := 0

	for _, adv := range adventures {
		for _, venue := range adv.Locations {
			if !venue.Researched() {
				continue
			}
			insights += venue.TotalInsights
			confidenceSum += venue.ResearchConfidence
			researched++
		}
	}

	if researched == 0 {
		return insights, 0
	}
	return insights, confidenceSum / float64(researched)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
