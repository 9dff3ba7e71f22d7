package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDotEnv_LoadsValuesAndIgnoresNoise(t *testing.T) {
	t.Setenv("A", "")
	t.Setenv("B", "")
	t.Setenv("C", "")

	path := writeDotEnv(t, `
# comment

A=one
export B=two
C="three"
`)

	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "one", os.Getenv("A"))
	assert.Equal(t, "two", os.Getenv("B"))
	assert.Equal(t, "three", os.Getenv("C"))
}

func TestLoadDotEnv_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("KEEP", "already")

	require.NoError(t, loadDotEnv(writeDotEnv(t, "KEEP=fromfile\n")))

	assert.Equal(t, "already", os.Getenv("KEEP"))
}

func TestLoadDotEnv_StripsSingleQuotes(t *testing.T) {
	t.Setenv("Q", "")

	require.NoError(t, loadDotEnv(writeDotEnv(t, "Q='hello world'\n")))

	assert.Equal(t, "hello world", os.Getenv("Q"))
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"APP_ENV", "DB_PATH", "PORT", "SUGGEST_DEBOUNCE", "LOOKUP_TIMEOUT", "SESSION_IDLE_TIMEOUT", "OSRM_BASE_URL", "NOMINATIM_BASE_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultDBPath, cfg.DBPath)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, 300*time.Millisecond, cfg.SuggestDebounce)
	assert.Equal(t, 10*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, "https://router.project-osrm.org", cfg.OSRMBaseURL)
	assert.True(t, cfg.IsDev())
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUGGEST_DEBOUNCE", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "SUGGEST_DEBOUNCE")
}

func TestLoad_RequiresSecretInProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestIsDev(t *testing.T) {
	assert.True(t, Config{AppEnv: "dev"}.IsDev())
	assert.True(t, Config{AppEnv: "staging"}.IsDev())
	assert.False(t, Config{AppEnv: "Production"}.IsDev())
	assert.False(t, Config{AppEnv: "prod"}.IsDev())
}
