package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recallio/quotakit/middleware"
	"github.com/recallio/quotakit/quota"
)

// Gateway headers carrying the authenticated caller. The API gateway in
// front of this service validates the session and forwards identity and
// plan; this service trusts them as-is.
const (
	HeaderUserID = "X-User-ID"
	HeaderPlan   = "X-User-Plan"
)

// callerFromGateway lifts the gateway headers into the gin context keys
// the quota middlewares read
func callerFromGateway() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := c.GetHeader(HeaderUserID); user != "" {
			c.Set(middleware.IdentityKeyDefault, user)
		}
		if plan := c.GetHeader(HeaderPlan); plan != "" {
			c.Set(middleware.PlanKeyDefault, plan)
		}
		c.Next()
	}
}

// actionRoute binds one metered action to its API path
type actionRoute struct {
	path   string
	action quota.Action
}

var actionRoutes = []actionRoute{
	{"/api/chat/messages", quota.ActionChatMessage},
	{"/api/decks/generate", quota.ActionDeckGenerate},
	{"/api/cards/explain", quota.ActionCardExplain},
	{"/api/audio/transcriptions", quota.ActionAudioTranscribe},
}

// NewRouter assembles the full middleware chain and routes.
// IP and user scopes guard everything under /api; each metered action
// additionally carries its own daily guard.
func NewRouter(cfg Config, engine *quota.Engine, profiles quota.Profiles) *gin.Engine {
	gin.SetMode(cfg.Mode)

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.TraceID(middleware.DefaultTraceConfig()),
		middleware.RequestLogWithConfig(middleware.RequestLogConfig{
			SkipPaths: []string{"/health"},
		}),
	)

	router.GET("/health", healthHandler(engine))
	router.GET("/quota/metrics", metricsHandler(engine))

	api := router.Group("/api")
	api.Use(
		callerFromGateway(),
		middleware.QuotaPerIP(engine),
		middleware.QuotaPerUser(engine),
	)

	for _, r := range actionRoutes {
		api.POST(trimAPIPrefix(r.path), middleware.QuotaAction(engine, profiles, r.action), admitHandler(r.action))
	}

	return router
}

func trimAPIPrefix(path string) string {
	return path[len("/api"):]
}

// admitHandler is the terminal handler of a guarded route: reaching it
// means every quota scope admitted the request
func admitHandler(action quota.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "admitted",
			"action": string(action),
		})
	}
}

func healthHandler(engine *quota.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"enabled": engine.IsEnabled(),
		})
	}
}

// metricsHandler exposes the per-scope in-process counters
func metricsHandler(engine *quota.Engine) gin.HandlerFunc {
	scopes := []quota.Scope{quota.ScopeIP, quota.ScopeUser, quota.ScopeAction}

	return func(c *gin.Context) {
		out := make(map[string]interface{}, len(scopes))
		for _, scope := range scopes {
			snapshot := engine.Metrics().Snapshot(scope)
			out[string(scope)] = gin.H{
				"total":       snapshot.TotalRequests,
				"allowed":     snapshot.Allowed,
				"rejected":    snapshot.Rejected,
				"fail_open":   snapshot.FailOpen,
				"reject_rate": snapshot.RejectRate,
			}
		}
		c.JSON(http.StatusOK, out)
	}
}
