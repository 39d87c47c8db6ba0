package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/moneynote/internal/logging"
)

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.log")

	logger, closeFn, err := logging.New(logging.Options{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	logger.Debug("snapshot received", "records", 3)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"snapshot received"`)
	assert.Contains(t, string(data), `"records":3`)
}

func TestNew_Invalid(t *testing.T) {
	_, _, err := logging.New(logging.Options{Level: "loud"})
	assert.Error(t, err)

	_, _, err = logging.New(logging.Options{Format: "xml"})
	assert.Error(t, err)
}
