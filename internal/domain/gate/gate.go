package gate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/evalguard/internal/evalguard"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/logging"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/evalguard/internal/sandbox"
	"github.com/GriffinCanCode/evalguard/internal/shared/utils"
)

var (
	ErrSnippetTooLarge   = errors.New("snippet exceeds maximum size")
	ErrEvaluatorDisabled = errors.New("sandbox evaluation is disabled")
)

// Config holds deployment-wide validation policy
type Config struct {
	CustomRules     []evalguard.Rule // Initial rules appended after the defaults; see SetCustomRules
	SkipSyntaxCheck bool
	TrustRequests   bool
	MaxSnippetBytes int // 0 disables the limit
}

// Request carries per-call options
type Request struct {
	RequestID       string
	AllowDangerous  bool
	SkipSyntaxCheck bool
	CustomRules     []evalguard.Rule
}

// Evaluator runs accepted snippets
type Evaluator interface {
	Evaluate(ctx context.Context, snippet string, page *sandbox.Page) (*sandbox.Result, error)
}

// Gate validates snippets under a deployment policy.
// It is safe for concurrent use; only the custom rule list changes after
// construction and it is swapped atomically.
type Gate struct {
	validator *evalguard.Validator
	config    Config
	custom    atomic.Pointer[[]evalguard.Rule]
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	evaluator Evaluator
}

// New creates a gate. A nil validator uses evalguard.New().
func New(validator *evalguard.Validator, cfg Config, logger *logging.Logger) *Gate {
	if validator == nil {
		validator = evalguard.New()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	g := &Gate{
		validator: validator,
		config:    cfg,
		logger:    logger.Named("gate"),
	}
	g.SetCustomRules(cfg.CustomRules)
	return g
}

// SetCustomRules replaces the deployment custom rules. Checks already in
// flight keep the list they started with.
func (g *Gate) SetCustomRules(rules []evalguard.Rule) {
	cp := append([]evalguard.Rule(nil), rules...)
	g.custom.Store(&cp)
}

func (g *Gate) customRules() []evalguard.Rule {
	return *g.custom.Load()
}

// WithMetrics adds metrics tracking to the gate
func (g *Gate) WithMetrics(metrics *monitoring.Metrics) *Gate {
	g.metrics = metrics
	return g
}

// WithEvaluator enables Evaluate
func (g *Gate) WithEvaluator(evaluator Evaluator) *Gate {
	g.evaluator = evaluator
	return g
}

// Rules returns the effective catalog: defaults, then configured custom rules
func (g *Gate) Rules() []evalguard.Rule {
	rules := g.validator.Rules()
	return append(rules, g.customRules()...)
}

// CanEvaluate reports whether a sandbox evaluator is configured
func (g *Gate) CanEvaluate() bool {
	return g.evaluator != nil
}

// Options resolves the evalguard options for a request
func (g *Gate) Options(req Request) evalguard.Options {
	base := g.customRules()
	custom := make([]evalguard.Rule, 0, len(base)+len(req.CustomRules))
	custom = append(custom, base...)
	custom = append(custom, req.CustomRules...)

	allow := false
	if req.AllowDangerous {
		if g.config.TrustRequests {
			allow = true
			g.logger.Info("Validation bypassed by trusted request",
				zap.String("request_id", req.RequestID))
		} else {
			g.logger.Warn("Ignoring allow_dangerous from untrusted request",
				zap.String("request_id", req.RequestID))
		}
	}

	return evalguard.Options{
		AllowDangerous:        allow,
		CustomBlockedPatterns: custom,
		SkipSyntaxCheck:       g.config.SkipSyntaxCheck || req.SkipSyntaxCheck,
	}
}

// Check validates snippet. The error is non-nil only for input the gate
// refuses to inspect; unsafe snippets are reported in the Result.
func (g *Gate) Check(snippet string, req Request) (evalguard.Result, error) {
	if g.config.MaxSnippetBytes > 0 && len(snippet) > g.config.MaxSnippetBytes {
		g.logger.Warn("Snippet too large",
			zap.String("request_id", req.RequestID),
			zap.Int("snippet_bytes", len(snippet)),
			zap.Int("max_bytes", g.config.MaxSnippetBytes),
		)
		return evalguard.Result{}, fmt.Errorf("%w: %d > %d bytes", ErrSnippetTooLarge, len(snippet), g.config.MaxSnippetBytes)
	}

	timer := monitoring.NewTimer()
	result := g.validator.Validate(snippet, g.Options(req))
	elapsed := timer.Elapsed()

	if g.metrics != nil {
		category := string(result.Category)
		if !result.Safe && category == "" {
			category = "syntax"
		}
		g.metrics.RecordValidation(result.Safe, category, len(snippet), elapsed)
	}

	if !result.Safe {
		// The snippet itself is never logged
		g.logger.Warn("Snippet blocked",
			zap.String("request_id", req.RequestID),
			zap.String("reason", result.Reason),
			zap.String("blocked_pattern", result.BlockedPattern),
			zap.String("category", string(result.Category)),
			zap.String("fingerprint", utils.Fingerprint(snippet)),
			zap.Int("snippet_bytes", len(snippet)),
		)
	} else {
		g.logger.Debug("Snippet accepted",
			zap.String("request_id", req.RequestID),
			zap.Int("snippet_bytes", len(snippet)),
			zap.Duration("elapsed", elapsed),
		)
	}

	return result, nil
}

// Enforce returns a *evalguard.SecurityError for unsafe snippets
func (g *Gate) Enforce(snippet string, req Request) error {
	result, err := g.Check(snippet, req)
	if err != nil {
		return err
	}
	if !result.Safe {
		return evalguard.ToError(result)
	}
	return nil
}

// Evaluate validates snippet and, if it is safe, runs it in the sandbox
func (g *Gate) Evaluate(ctx context.Context, snippet string, page *sandbox.Page, req Request) (*sandbox.Result, error) {
	if g.evaluator == nil {
		return nil, ErrEvaluatorDisabled
	}
	if err := g.Enforce(snippet, req); err != nil {
		return nil, err
	}

	timer := monitoring.NewTimer()
	result, err := g.evaluator.Evaluate(ctx, snippet, page)
	elapsed := timer.Elapsed()

	status := "ok"
	if err != nil {
		status = "error"
	}
	if g.metrics != nil {
		g.metrics.RecordEvaluation(status, elapsed)
	}

	if err != nil {
		g.logger.Info("Sandbox evaluation failed",
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
		return result, fmt.Errorf("sandbox evaluation failed: %w", err)
	}
	return result, nil
}
