package quest

import "miniquest/internal/chat"

// GenerateRequest is the body sent to the generation endpoint.
type GenerateRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

// RecommendedService points the user at a better-suited service when a
// request falls outside what MiniQuest plans.
type RecommendedService struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Metadata carries the routing flags the classifier reads plus
// pass-through display data.
type Metadata struct {
	UnrelatedQuery       bool                 `json:"unrelated_query,omitempty"`
	OutOfScope           bool                 `json:"out_of_scope,omitempty"`
	ScopeIssue           string               `json:"scope_issue,omitempty"`
	ClarificationNeeded  bool                 `json:"clarification_needed,omitempty"`
	ClarificationMessage string               `json:"clarification_message,omitempty"`
	Message              string               `json:"message,omitempty"`
	Suggestions          []string             `json:"suggestions,omitempty"`
	RecommendedServices  []RecommendedService `json:"recommended_services,omitempty"`
	Error                string               `json:"error,omitempty"`
	TargetLocation       string               `json:"target_location,omitempty"`
	TotalAdventures      int                  `json:"total_adventures,omitempty"`
	QueryID              string               `json:"query_id,omitempty"`
}

// Envelope is the raw generation response.
type Envelope struct {
	Success    bool             `json:"success"`
	Adventures []chat.Adventure `json:"adventures"`
	Metadata   Metadata         `json:"metadata"`
	Message    string           `json:"message,omitempty"`
}

// Progress statuses.
const (
	StatusInProgress          = "in_progress"
	StatusComplete            = "complete"
	StatusError               = "error"
	StatusClarificationNeeded = "clarification_needed"
)

// ProgressUpdate is one record of the live progress channel.
type ProgressUpdate struct {
	Step     string         `json:"step"`
	Agent    string         `json:"agent"`
	Status   string         `json:"status"`
	Message  string         `json:"message"`
	Progress float64        `json:"progress"`
	Details  map[string]any `json:"details,omitempty"`
}

// streamLine is one NDJSON line of a streamed generation call: zero or
// more progress records followed by exactly one result.
type streamLine struct {
	Type     string          `json:"type"`
	Progress *ProgressUpdate `json:"progress,omitempty"`
	Result   *Envelope       `json:"result,omitempty"`
}

// OutcomeKind tags the variant of an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeClarification
	OutcomeOutOfScope
	OutcomeUnrelated
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeClarification:
		return "clarification"
	case OutcomeOutOfScope:
		return "out_of_scope"
	case OutcomeUnrelated:
		return "unrelated"
	default:
		return "failure"
	}
}

// Outcome is the classified result of one generation request. Exactly
// one payload field is populated, matching Kind.
type Outcome struct {
	// QueryID links the outcome to the backend's stored query record,
	// when the backend assigned one.
	QueryID       string
	Kind          OutcomeKind
	Success       *SuccessOutcome
	Clarification *ClarificationOutcome
	OutOfScope    *OutOfScopeOutcome
	Unrelated     *UnrelatedOutcome
	Failure       *FailureOutcome
}

// SuccessOutcome carries the generated itineraries and the aggregated
// venue research statistics.
type SuccessOutcome struct {
	Adventures    []chat.Adventure
	InsightsTotal int
	AvgConfidence float64
}

// ClarificationOutcome asks the user to narrow down a vague query.
type ClarificationOutcome struct {
	Message     string
	Suggestions []string
}

// OutOfScopeOutcome reports a request MiniQuest understands but does not
// serve, with alternatives.
type OutOfScopeOutcome struct {
	Issue               string
	Message             string
	Suggestions         []string
	RecommendedServices []RecommendedService
}

// UnrelatedOutcome reports a query outside the adventure-planning domain.
type UnrelatedOutcome struct {
	Message     string
	Suggestions []string
}

// FailureOutcome reports a transport or backend failure.
type FailureOutcome struct {
	Reason string
}

// Suggestions returns the follow-up suggestions of whichever variant
// carries them, or nil.
func (o Outcome) Suggestions() []string {
	switch o.Kind {
	case OutcomeClarification:
		return o.Clarification.Suggestions
	case OutcomeOutOfScope:
		return o.OutOfScope.Suggestions
	case OutcomeUnrelated:
		return o.Unrelated.Suggestions
	default:
		return nil
	}
}
