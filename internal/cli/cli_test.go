package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositionalPath(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, shouldExit, err := Parse([]string{"workflows/demo.json"}, out)

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "workflows/demo.json", cfg.WorkflowPath)
	assert.Equal(t, "modules", cfg.ModulesPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestParseFlagOverridesPositional(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, _, err := Parse([]string{"--workflow", "a.json", "b.json"}, out)

	require.NoError(t, err)
	assert.Equal(t, "a.json", cfg.WorkflowPath)
}

func TestParseNoPathPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseValidation(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"bad log format", []string{"--log-format", "xml", "wf.json"}, "invalid log-format"},
		{"bad log level", []string{"--log-level", "verbose", "wf.json"}, "invalid log-level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}

			_, _, err := Parse(tc.args, out)

			require.Error(t, err)
			exitErr, ok := err.(*ExitError)
			require.True(t, ok)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}

func TestParseEventsURL(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, _, err := Parse([]string{"--events-url", "ws://localhost:3001/events", "wf.json"}, out)

	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:3001/events", cfg.EventsURL)
}
