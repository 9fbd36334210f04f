package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallio/quotakit/middleware"
	"github.com/recallio/quotakit/quota"
)

func setupRouter(t *testing.T, mutate func(*quota.Config)) (*quota.Engine, http.Handler) {
	t.Helper()

	cfg := quota.DefaultConfig()
	cfg.Enabled = true
	cfg.StoreType = string(quota.StoreTypeMemory)
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := quota.NewEngine(cfg, quota.NewMemoryStore(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = engine.Close()
	})

	profiles, err := quota.ProfilesFromConfig(&cfg)
	require.NoError(t, err)

	serverCfg := DefaultConfig()
	serverCfg.Mode = "test"
	return engine, NewRouter(serverCfg, engine, profiles)
}

func doRequest(router http.Handler, method, path, user, plan string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "203.0.113.7:1234"
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	if plan != "" {
		req.Header.Set(HeaderPlan, plan)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRouter_Health(t *testing.T) {
	_, router := setupRouter(t, nil)

	resp := doRequest(router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"enabled":true`)
}

func TestRouter_GuardedActionRoute(t *testing.T) {
	_, router := setupRouter(t, func(cfg *quota.Config) {
		cfg.Limits.Actions["chat_message"] = quota.ActionLimits{FreeDaily: 2, PremiumDaily: 100}
	})

	for i := 0; i < 2; i++ {
		resp := doRequest(router, http.MethodPost, "/api/chat/messages", "42", "free")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "admitted")
	}

	resp := doRequest(router, http.MethodPost, "/api/chat/messages", "42", "free")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))
	assert.Contains(t, resp.Body.String(), "RATE_LIMIT_EXCEEDED")

	// other actions keep their own budget
	resp = doRequest(router, http.MethodPost, "/api/decks/generate", "42", "free")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRouter_IPScopeCoversAnonymous(t *testing.T) {
	_, router := setupRouter(t, func(cfg *quota.Config) {
		cfg.Limits.IPPerMinute = 2
	})

	for i := 0; i < 2; i++ {
		resp := doRequest(router, http.MethodPost, "/api/chat/messages", "", "")
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := doRequest(router, http.MethodPost, "/api/chat/messages", "", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	// health stays reachable even for a limited address
	resp = doRequest(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	_, router := setupRouter(t, func(cfg *quota.Config) {
		cfg.Limits.IPPerMinute = 1
	})

	doRequest(router, http.MethodPost, "/api/chat/messages", "", "")
	doRequest(router, http.MethodPost, "/api/chat/messages", "", "")

	resp := doRequest(router, http.MethodGet, "/quota/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	ip := body["ip"]
	require.NotNil(t, ip)
	assert.Equal(t, float64(1), ip["allowed"])
	assert.Equal(t, float64(1), ip["rejected"])
}

func TestRouter_ResponseCarriesTraceID(t *testing.T) {
	_, router := setupRouter(t, nil)

	resp := doRequest(router, http.MethodPost, "/api/chat/messages", "42", "premium")
	assert.NotEmpty(t, resp.Header().Get(middleware.TraceIDHeaderDefault))
}
