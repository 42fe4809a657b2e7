package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false, false)

	logger.Info("processing notification", "thread", "101")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "processing notification", entry["msg"])
	assert.Equal(t, "101", entry["thread"])
}

func TestNew_DebugFiltered(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false, true).Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, true, true).Debug("shown")
	assert.True(t, strings.Contains(buf.String(), "shown"))
}
