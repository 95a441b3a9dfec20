package http

import (
	"github.com/GriffinCanCode/evalguard/internal/evalguard"
	"github.com/GriffinCanCode/evalguard/internal/sandbox"
)

// ValidateRequest is the body of POST /v1/validate
type ValidateRequest struct {
	Snippet               string               `json:"snippet"`
	AllowDangerous        bool                 `json:"allow_dangerous"`
	SkipSyntaxCheck       bool                 `json:"skip_syntax_check"`
	CustomBlockedPatterns []evalguard.RuleSpec `json:"custom_blocked_patterns"`
}

// ValidateResponse is the verdict plus the request ID
type ValidateResponse struct {
	evalguard.Result
	RequestID string `json:"request_id"`
}

// EvaluateRequest is the body of POST /v1/evaluate
type EvaluateRequest struct {
	ValidateRequest
	Page *sandbox.Page `json:"page"`
}

// EvaluateResponse wraps a sandbox result
type EvaluateResponse struct {
	*sandbox.Result
	RequestID string `json:"request_id"`
}

// BlockedResponse is returned with 422 when validation rejects a snippet
type BlockedResponse struct {
	Error          string             `json:"error"`
	Name           string             `json:"name"`
	Reason         string             `json:"reason"`
	BlockedPattern string             `json:"blocked_pattern,omitempty"`
	Category       evalguard.Category `json:"category,omitempty"`
	RequestID      string             `json:"request_id"`
}

// RuleView is the listing form of a rule
type RuleView struct {
	Pattern     string             `json:"pattern"`
	Description string             `json:"description"`
	Category    evalguard.Category `json:"category"`
}

func ruleViews(rules []evalguard.Rule) []RuleView {
	views := make([]RuleView, len(rules))
	for i, r := range rules {
		views[i] = RuleView{
			Pattern:     r.Source(),
			Description: r.Description,
			Category:    r.Category,
		}
	}
	return views
}
