package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into a scratch directory so no stray pastrypath.yaml or .env
// is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "quiet", cfg.Log.Mode)
	assert.Equal(t, 80.0, cfg.Unlock.AdvancedMinScore)
	assert.Equal(t, 60, cfg.Unlock.LongModuleMinutes)
	assert.Equal(t, 0.5, cfg.Unlock.LongModuleTimeFraction)
	assert.Equal(t, 1, cfg.Unlock.QuizMinAttempts)
	assert.Equal(t, 10000, cfg.Recommend.PopularityCeiling)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := chdir(t)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
storage:
  backend: memory
unlock:
  advanced_min_score: 70
  quiz_min_attempts: 2
`), 0o644))
	t.Setenv("PASTRYPATH_UNLOCK_QUIZ_MIN_ATTEMPTS", "3")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 70.0, cfg.Unlock.AdvancedMinScore)
	assert.Equal(t, 3, cfg.Unlock.QuizMinAttempts)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PASTRYPATH_DB=/tmp/from-dotenv.db\n"), 0o644))
	t.Setenv("PASTRYPATH_DB", "")
	os.Unsetenv("PASTRYPATH_DB")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.DB)
	os.Unsetenv("PASTRYPATH_DB")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t)
	t.Setenv("PASTRYPATH_STORAGE_BACKEND", "postgres")
	_, err := Load("")
	assert.ErrorContains(t, err, "unknown backend")
}
