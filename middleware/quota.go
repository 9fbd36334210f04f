package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recallio/quotakit/errcode"
	"github.com/recallio/quotakit/quota"
)

// Quota response headers. Reset is a unix timestamp in seconds.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// Default gin context keys the quota middlewares read. An auth middleware
// upstream is expected to populate them.
const (
	IdentityKeyDefault = "user_id"
	PlanKeyDefault     = "plan"
)

// QuotaConfig configures the quota middlewares
type QuotaConfig struct {
	// Engine admission-control engine (required)
	Engine *quota.Engine

	// IdentityKey gin context key holding the caller's identity
	// (default "user_id")
	IdentityKey string

	// PlanKey gin context key holding the caller's plan
	// (default "plan"; absent or unknown values resolve as free)
	PlanKey string

	// SkipPaths paths exempt from this middleware (optional)
	SkipPaths []string
}

// DefaultQuotaConfig returns the default middleware configuration
func DefaultQuotaConfig(engine *quota.Engine) QuotaConfig {
	return QuotaConfig{
		Engine:      engine,
		IdentityKey: IdentityKeyDefault,
		PlanKey:     PlanKeyDefault,
	}
}

func (cfg *QuotaConfig) applyDefaults() map[string]bool {
	if cfg.Engine == nil {
		panic("QuotaConfig.Engine cannot be nil")
	}
	if cfg.IdentityKey == "" {
		cfg.IdentityKey = IdentityKeyDefault
	}
	if cfg.PlanKey == "" {
		cfg.PlanKey = PlanKeyDefault
	}

	skipPathsMap := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipPathsMap[path] = true
	}
	return skipPathsMap
}

// QuotaPerIP limits requests per client IP using the engine's configured
// per-IP ceiling
//
// Usage:
//
//	engine.Use(middleware.QuotaPerIP(quotaEngine))
func QuotaPerIP(engine *quota.Engine) gin.HandlerFunc {
	return QuotaPerIPWithConfig(DefaultQuotaConfig(engine))
}

// QuotaPerIPWithConfig creates the per-IP quota middleware with custom
// configuration
func QuotaPerIPWithConfig(cfg QuotaConfig) gin.HandlerFunc {
	skipPaths := cfg.applyDefaults()

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		key, err := quota.Key(quota.ScopeIP, c.ClientIP())
		if err != nil {
			// no usable client address; nothing to count against
			c.Next()
			return
		}

		engineCfg := cfg.Engine.Config()
		verdict := cfg.Engine.Evaluate(c.Request.Context(), key, engineCfg.IPRule())
		writeQuotaHeaders(c, verdict)

		if !verdict.Allowed {
			rejectQuota(c, verdict, errcode.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// QuotaPerUser limits requests per authenticated user using the engine's
// configured per-user ceiling. Anonymous requests pass through; the IP
// scope covers them.
func QuotaPerUser(engine *quota.Engine) gin.HandlerFunc {
	return QuotaPerUserWithConfig(DefaultQuotaConfig(engine))
}

// QuotaPerUserWithConfig creates the per-user quota middleware with
// custom configuration
func QuotaPerUserWithConfig(cfg QuotaConfig) gin.HandlerFunc {
	skipPaths := cfg.applyDefaults()

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		identity := contextString(c, cfg.IdentityKey)
		if identity == "" {
			c.Next()
			return
		}

		key, err := quota.Key(quota.ScopeUser, identity)
		if err != nil {
			c.Next()
			return
		}

		engineCfg := cfg.Engine.Config()
		verdict := cfg.Engine.Evaluate(c.Request.Context(), key, engineCfg.UserRule())
		writeQuotaHeaders(c, verdict)

		if !verdict.Allowed {
			rejectQuota(c, verdict, errcode.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// QuotaAction meters one domain action per user per calendar day, with
// the ceiling resolved from the caller's plan on every request. Guard the
// routes that trigger the action:
//
//	api.POST("/chat", middleware.QuotaAction(quotaEngine, profiles, quota.ActionChatMessage), chatHandler)
func QuotaAction(engine *quota.Engine, profiles quota.Profiles, action quota.Action) gin.HandlerFunc {
	return QuotaActionWithConfig(DefaultQuotaConfig(engine), profiles, action)
}

// QuotaActionWithConfig creates the action quota middleware with custom
// configuration
func QuotaActionWithConfig(cfg QuotaConfig, profiles quota.Profiles, action quota.Action) gin.HandlerFunc {
	skipPaths := cfg.applyDefaults()
	if profiles == nil {
		panic("QuotaAction requires a profile table")
	}

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		identity := contextString(c, cfg.IdentityKey)
		if identity == "" {
			c.Next()
			return
		}

		plan := quota.Plan(contextString(c, cfg.PlanKey))
		rule, err := profiles.Resolve(action, plan)
		if err != nil {
			// unreachable for a validated profile table; do not block
			// traffic on a wiring bug
			c.Next()
			return
		}

		verdict, err := cfg.Engine.EvaluateAction(c.Request.Context(), action, identity, rule)
		if err != nil {
			c.Next()
			return
		}
		writeQuotaHeaders(c, verdict)

		if !verdict.Allowed {
			apiErr := errcode.ErrRateLimitExceeded.
				WithDetail("action", string(action)).
				WithDetail("limit", verdict.Limit)
			rejectQuota(c, verdict, apiErr)
			return
		}
		c.Next()
	}
}

// contextString reads a string value set by an upstream middleware
func contextString(c *gin.Context, key string) string {
	value, exists := c.Get(key)
	if !exists {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}

// writeQuotaHeaders exposes the verdict on the response. Unlimited and
// fail-open verdicts carry no meaningful counter state, so no headers.
func writeQuotaHeaders(c *gin.Context, v *quota.Verdict) {
	if v.Unlimited || v.FailOpen {
		return
	}
	c.Header(HeaderRateLimitLimit, strconv.FormatInt(v.Limit, 10))
	c.Header(HeaderRateLimitRemaining, strconv.FormatInt(v.Remaining, 10))
	c.Header(HeaderRateLimitReset, strconv.FormatInt(v.ResetAt.Unix(), 10))
}

// rejectQuota aborts the request with 429, Retry-After and the JSON
// error envelope
func rejectQuota(c *gin.Context, v *quota.Verdict, apiErr *errcode.APIError) {
	retryAfter := retryAfterSeconds(v.RetryAfter)
	c.Header(HeaderRetryAfter, strconv.FormatInt(retryAfter, 10))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, apiErr.ToEnvelope(retryAfter))
}

// retryAfterSeconds rounds up so clients never retry before the window
// actually turns over
func retryAfterSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
