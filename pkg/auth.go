package pkg

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"postforge/pkg/models"
)

const (
	headerAPIKey     = "X-API-Key"
	headerCronSecret = "X-Cron-Secret"

	ginContextKeyTenant = "pfTenant"
)

// TenantAuth resolves the calling tenant from the X-API-Key header (or
// an Authorization bearer token) and stores it on the context. Routes
// behind it can rely on CurrentTenant.
func TenantAuth(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(headerAPIKey)
		if apiKey == "" {
			if bearer := c.GetHeader("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
				apiKey = strings.TrimPrefix(bearer, "Bearer ")
			}
		}

		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Missing API key"})
			return
		}

		tenant, err := store.TenantByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid API key"})
				return
			}
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}

		c.Set(ginContextKeyTenant, tenant)
		c.Next()
	}
}

// CurrentTenant returns the tenant resolved by TenantAuth.
func CurrentTenant(c *gin.Context) *models.Tenant {
	tenant, _ := c.MustGet(ginContextKeyTenant).(*models.Tenant)
	return tenant
}

// VerifyCronSecret compares the provided header value against the
// configured cron secret (falling back to the application secret) in
// constant time.
func VerifyCronSecret(config *Config, provided string) bool {
	expected := config.CronSecret
	if expected == "" {
		expected = config.AppSecret
	}
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
