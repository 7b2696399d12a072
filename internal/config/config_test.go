package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PRICING_CONFIG", "")
	t.Setenv("AI_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "openai", cfg.AIProvider)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 20, cfg.Pricing.MaxRefreshPerRun)
	assert.Equal(t, 0.70, cfg.Pricing.DefaultMultiplier)
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingCredential))
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PRICING_CONFIG", "")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestRequireCredentials(t *testing.T) {
	cfg := &Config{AIProvider: "openai"}
	assert.True(t, eris.Is(cfg.RequireCompletion(), ErrMissingCredential))
	assert.True(t, eris.Is(cfg.RequireSearch(), ErrMissingCredential))
	assert.True(t, eris.Is(cfg.RequireStore(), ErrMissingCredential))

	cfg.OpenAIAPIKey = "sk-test"
	cfg.PerplexityAPIKey = "pplx-test"
	cfg.DatabaseURL = "root@tcp(localhost:3306)/pazaryeri"
	assert.NoError(t, cfg.RequireCompletion())
	assert.NoError(t, cfg.RequireSearch())
	assert.NoError(t, cfg.RequireStore())

	cfg.AIProvider = "gemini"
	assert.True(t, eris.Is(cfg.RequireCompletion(), ErrMissingCredential))
}

func TestPricing_LoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
condition_factors:
  Hasarlı: 0.30
category_ttl_days:
  Elektronik: 3
max_refresh_per_run: 5
refresh_domains:
  - sahibinden.com
`), 0o600))

	p := DefaultPricing()
	require.NoError(t, p.LoadFile(path))

	assert.Equal(t, 0.30, p.ConditionFactors["Hasarlı"])
	assert.Equal(t, 0.85, p.ConditionFactors["Az Kullanılmış"])
	assert.Equal(t, 3, p.CategoryTTLDays["Elektronik"])
	assert.Equal(t, 30, p.CategoryTTLDays["Emlak"])
	assert.Equal(t, 5, p.MaxRefreshPerRun)
	assert.Equal(t, []string{"sahibinden.com"}, p.RefreshDomains)
	assert.Equal(t, 50, p.StaleScanLimit)
}

func TestPricing_MergeRejectsBadWeights(t *testing.T) {
	p := DefaultPricing()
	err := p.Merge([]byte("ai_weight: 0.9\nsite_weight: 0.4\n"))
	require.Error(t, err)
	assert.Equal(t, 0.6, p.AIWeight)
}
