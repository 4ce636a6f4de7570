package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"ERROR", LogLevelError},
		{"warn", LogLevelWarn},
		{"", LogLevelInfo},
		{"DEBUG", LogLevelDebug},
		{" trace ", LogLevelTrace},
		{"bogus", LogLevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLogLevel(tt.in), tt.in)
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelWarn, &buf)

	logger.Info("[Loader] hidden %d", 1)
	assert.Empty(t, buf.String())

	logger.Warn("[Loader] shown %d", 2)
	assert.Contains(t, buf.String(), "[Loader] shown 2")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
