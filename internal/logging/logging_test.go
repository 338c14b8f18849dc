package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"LeagueSync/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_jsonFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)

	logger.WithField("division", 201).Debug("standings parsed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "standings parsed", entry["msg"])
	assert.Equal(t, float64(201), entry["division"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewLogger_unknownLevel(t *testing.T) {
	logger := newLogger(config.LogConfig{Level: "chatty"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	_, isText := logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}
