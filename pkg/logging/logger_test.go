package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerDebugGating(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(false, &buf)

	logger.Debugf("ceremony started: flow=%s", "abc123")
	assert.Empty(t, buf.String())

	logger.Warnf("failed to close response body: %v", "closed twice")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "closed twice")
}

func TestLoggerDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(true, &buf)

	logger.Debugf("ceremony started: flow=%s", "abc123")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "flow=abc123")

	logger.Errorf("request registration options: %v", "connection refused")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "connection refused")
}
