package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponentAddsFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "test"})

	l := WithComponent("store")
	l.Debug().Str("key", "price").Msg("set")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "test", entry["service"])
	assert.Equal(t, "price", entry["key"])
	assert.Equal(t, "set", entry["message"])
}

func TestLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "error", Output: &buf})

	l := Base()
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Error().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestEnvLevel(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	var buf bytes.Buffer
	Configure(Config{Output: &buf})

	l := Base()
	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
