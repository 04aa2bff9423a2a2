package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLevel(t *testing.T) {
	t.Setenv("ENV", "production")

	assert.Equal(t, zerolog.InfoLevel, New(false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New(true).GetLevel())
}

func TestNewProduction(t *testing.T) {
	var b bytes.Buffer

	log := NewProduction(&b)
	log.Info().Str("sheet", "Transactions December").Msg("renamed")

	assert.Contains(t, b.String(), `"level":"info"`)
	assert.Contains(t, b.String(), `"sheet":"Transactions December"`)
	assert.Contains(t, b.String(), `"message":"renamed"`)
}

func TestNewDevelopment(t *testing.T) {
	var b bytes.Buffer

	log := NewDevelopment(&b)
	log.Warn().Msg("token file is not writable")

	assert.Contains(t, b.String(), "WARN")
	assert.Contains(t, b.String(), "token file is not writable")
}

func TestLevelLabels(t *testing.T) {
	tests := map[string]string{
		"debug": "DEBUG",
		"info":  "INFO ",
		"error": "ERROR",
		"trace": "TRACE",
	}

	for l, expected := range tests {
		assert.True(t, strings.Contains(level(l), expected), "level %q: expected %q, got %q", l, expected, level(l))
	}
}
