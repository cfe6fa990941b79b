package pkg

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAuthedEngine(store Store) *gin.Engine {
	engine := gin.New()
	authed := engine.Group("/", TenantAuth(store))
	authed.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant_id": CurrentTenant(c).Id})
	})
	return engine
}

func TestTenantAuth(t *testing.T) {
	store := NewMemoryStore()
	tenant := seedTenant(t, store, "acme")
	engine := newAuthedEngine(store)

	tests := []struct {
		name       string
		header     string
		value      string
		statusCode int
	}{
		{"api key header", headerAPIKey, tenant.ApiKey, http.StatusOK},
		{"bearer token", "Authorization", "Bearer " + tenant.ApiKey, http.StatusOK},
		{"missing key", "", "", http.StatusUnauthorized},
		{"invalid key", headerAPIKey, "wrong", http.StatusUnauthorized},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if test.header != "" {
				req.Header.Set(test.header, test.value)
			}

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			require.Equal(t, test.statusCode, w.Code)

			if test.statusCode == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, tenant.Id, body["tenant_id"])
			}
		})
	}
}

func TestTenantAuthInactiveTenant(t *testing.T) {
	store := NewMemoryStore()
	tenant := seedTenant(t, store, "acme")
	tenant.IsActive = false
	inactive := *tenant
	store.tenants[tenant.Id] = &inactive

	engine := newAuthedEngine(store)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(headerAPIKey, tenant.ApiKey)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyCronSecret(t *testing.T) {
	tests := []struct {
		name       string
		cronSecret string
		appSecret  string
		provided   string
		expected   bool
	}{
		{"matches cron secret", "cron", "app", "cron", true},
		{"app secret rejected while cron secret set", "cron", "app", "app", false},
		{"falls back to app secret", "", "app", "app", true},
		{"wrong value", "cron", "app", "wrong", false},
		{"empty provided", "cron", "app", "", false},
		{"no secrets configured", "", "", "", false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			config := &Config{AppSecret: test.appSecret, CronSecret: test.cronSecret}
			require.Equal(t, test.expected, VerifyCronSecret(config, test.provided))
		})
	}
}
