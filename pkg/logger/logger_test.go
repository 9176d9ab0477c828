package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_WritesStructuredOutput(t *testing.T) {
	logger := New(Config{Level: "info", Pretty: false})

	var buf bytes.Buffer
	logger = logger.Output(&buf)
	logger.Info().Str("module", "assessment").Msg("test message")

	out := buf.String()
	assert.Contains(t, out, "test message")
	assert.Contains(t, out, `"module":"assessment"`)
}

func TestNew_TagsEveryLineWithAppName(t *testing.T) {
	logger := New(Config{Level: "info"})

	var buf bytes.Buffer
	logger = logger.Output(&buf)
	logger.Info().Msg("one")

	assert.Contains(t, buf.String(), `"app":"stresswatch"`)
}

func TestNew_LogLevels(t *testing.T) {
	testCases := []struct {
		level         string
		expectedLevel zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		name := tc.level
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			New(Config{Level: tc.level})
			assert.Equal(t, tc.expectedLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNew_DebugSuppressedAtInfoLevel(t *testing.T) {
	logger := New(Config{Level: "info"})

	var buf bytes.Buffer
	logger = logger.Output(&buf)
	logger.Debug().Msg("should not appear")

	assert.Empty(t, buf.String())
}
