package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugEnabled(t *testing.T) {
	t.Setenv("TT_DEBUG", "")
	assert.False(t, DebugEnabled(), "DebugEnabled() should return false when TT_DEBUG is empty")

	t.Setenv("TT_DEBUG", "1")
	assert.True(t, DebugEnabled(), "DebugEnabled() should return true when TT_DEBUG is set")

	t.Setenv("TT_DEBUG", "true")
	assert.True(t, DebugEnabled())
}

func TestDebugf(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(Options{Level: "debug", Writer: &buf}))
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("TT_DEBUG", "")
	Debugf("hidden %s", "message")
	assert.NotContains(t, buf.String(), "hidden message")

	t.Setenv("TT_DEBUG", "1")
	Debugf("shown %s", "message")
	assert.Contains(t, buf.String(), "shown message")
}
