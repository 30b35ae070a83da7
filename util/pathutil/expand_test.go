package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHomePrefix(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := Expand("~/transcripts/chat.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "transcripts", "chat.log"), got)
}

func TestExpandEnvironmentVariables(t *testing.T) {
	t.Setenv("REPLYWATCH_TEST_DIR", "/tmp/rw-test")

	got, err := Expand("$REPLYWATCH_TEST_DIR/state.json")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/rw-test/state.json", got)
}

func TestExpandRelativeBecomesAbsolute(t *testing.T) {
	got, err := Expand("data/state.json")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "data", "state.json"), got)
}

func TestExpandAbsoluteUnchanged(t *testing.T) {
	got, err := Expand("/var/lib/replywatch/state.json")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/replywatch/state.json", got)
}
