package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/KirkDiggler/ronda/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "debug"}, &buf)
	logger.Debug().Str("room_id", "room-1").Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "room-1", entry["room_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "chatty"}, &buf)
	logger.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())

	logger.Info().Msg("kept")
	assert.NotZero(t, buf.Len())
}
