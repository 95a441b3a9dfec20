package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/evalguard/internal/api/middleware"
	"github.com/GriffinCanCode/evalguard/internal/domain/gate"
	"github.com/GriffinCanCode/evalguard/internal/evalguard"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/logging"
	"github.com/GriffinCanCode/evalguard/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/evalguard/internal/sandbox"
)

// MaxCustomPatterns bounds the custom rules a single request may carry
const MaxCustomPatterns = 64

// PoolStatter reports sandbox pool occupancy
type PoolStatter interface {
	Stats() sandbox.PoolStats
}

// Handlers contains all HTTP handlers
type Handlers struct {
	gate    *gate.Gate
	pool    PoolStatter
	logger  *logging.Logger
	version string
}

// NewHandlers creates a new handler set. pool may be nil when the sandbox
// is disabled.
func NewHandlers(g *gate.Gate, pool PoolStatter, logger *logging.Logger, version string) *Handlers {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handlers{
		gate:    g,
		pool:    pool,
		logger:  logger.Named("http"),
		version: version,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "evalguard",
		"version": h.version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	sandboxInfo := gin.H{"enabled": h.gate.CanEvaluate()}
	if h.pool != nil {
		sandboxInfo["pool"] = h.pool.Stats()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"rules":   len(h.gate.Rules()),
		"sandbox": sandboxInfo,
	})
}

// ListRules lists the effective rule catalog in evaluation order
func (h *Handlers) ListRules(c *gin.Context) {
	rules := ruleViews(h.gate.Rules())
	c.JSON(http.StatusOK, gin.H{
		"rules": rules,
		"count": len(rules),
	})
}

// Validate returns the verdict for a snippet
func (h *Handlers) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	gateReq, err := h.gateRequest(c, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.gate.Check(req.Snippet, gateReq)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Result:    result,
		RequestID: gateReq.RequestID,
	})
}

// Evaluate validates a snippet and runs it in the sandbox
func (h *Handlers) Evaluate(c *gin.Context) {
	if !h.gate.CanEvaluate() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": gate.ErrEvaluatorDisabled.Error()})
		return
	}

	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	gateReq, err := h.gateRequest(c, req.ValidateRequest)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.gate.Evaluate(c.Request.Context(), req.Snippet, req.Page, gateReq)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, EvaluateResponse{
		Result:    result,
		RequestID: gateReq.RequestID,
	})
}

func (h *Handlers) gateRequest(c *gin.Context, req ValidateRequest) (gate.Request, error) {
	if len(req.CustomBlockedPatterns) > MaxCustomPatterns {
		return gate.Request{}, fmt.Errorf("too many custom_blocked_patterns: %d > %d", len(req.CustomBlockedPatterns), MaxCustomPatterns)
	}
	custom, err := evalguard.CompileRules(req.CustomBlockedPatterns)
	if err != nil {
		return gate.Request{}, fmt.Errorf("invalid custom_blocked_patterns: %w", err)
	}
	return gate.Request{
		RequestID:       middleware.GetRequestID(c),
		AllowDangerous:  req.AllowDangerous,
		SkipSyntaxCheck: req.SkipSyntaxCheck,
		CustomRules:     custom,
	}, nil
}

// writeError maps gate and sandbox errors to status codes
func (h *Handlers) writeError(c *gin.Context, err error) {
	reqID := middleware.GetRequestID(c)

	var secErr *evalguard.SecurityError
	switch {
	case errors.As(err, &secErr):
		c.JSON(http.StatusUnprocessableEntity, BlockedResponse{
			Error:          secErr.Error(),
			Name:           secErr.Name(),
			Reason:         secErr.Result.Reason,
			BlockedPattern: secErr.Result.BlockedPattern,
			Category:       secErr.Result.Category,
			RequestID:      reqID,
		})
	case errors.Is(err, gate.ErrSnippetTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error(), "request_id": reqID})
	case errors.Is(err, gate.ErrEvaluatorDisabled),
		errors.Is(err, sandbox.ErrPoolClosed),
		errors.Is(err, sandbox.ErrAcquireTimeout),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrTooManyRequests):
		h.logger.Warn("Sandbox unavailable", zap.String("request_id", reqID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "request_id": reqID})
	default:
		// Script errors and timeouts are the caller's problem
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": reqID})
	}
}
