package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastrypath/pastrypath/internal/engine"
	"github.com/pastrypath/pastrypath/internal/progress"
)

// run executes the root command against a throwaway memory backend.
func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("PASTRYPATH_LOG_MODE", "nop")
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--backend", "memory", "--json"}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestPathsCommand_JSON(t *testing.T) {
	var overviews []engine.PathOverview
	require.NoError(t, json.Unmarshal([]byte(run(t, "paths")), &overviews))
	require.NotEmpty(t, overviews)
	assert.Equal(t, "pastry-foundations", overviews[0].Path.PathID)
	assert.Equal(t, progress.StatusNotStarted, overviews[0].Path.Status)
}

func TestModuleCompleteCommand_JSON(t *testing.T) {
	var out engine.Outcome
	require.NoError(t, json.Unmarshal([]byte(run(t, "module", "complete", "pastry-foundations", "kitchen-safety", "--score", "92")), &out))
	assert.Equal(t, progress.StatusCompleted, out.Module.Status)
	require.NotNil(t, out.Module.Score)
	assert.Equal(t, 92.0, *out.Module.Score)
	assert.NotEmpty(t, out.Events)
}
