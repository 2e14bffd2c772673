package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedLogger(buf *bytes.Buffer, level Level, colorize bool) *Logger {
	l := New(buf, level, colorize)
	l.now = func() time.Time { return time.Date(2020, 3, 4, 5, 6, 7, 0, time.UTC) }
	return l
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, INFO, false)

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Warnf("careful")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"2020-03-04 05:06:07,000 - INFO - shown 2",
		"2020-03-04 05:06:07,000 - WARNING - careful",
	}, lines)

	buf.Reset()
	l.SetLevel(DEBUG)
	l.Debugf("now visible")
	assert.Contains(t, buf.String(), "DEBUG - now visible")
}

func TestLoggerColorize(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, DEBUG, true)
	l.Errorf("boom\n")

	out := buf.String()
	assert.Contains(t, out, ansiColors[ERROR]+"ERROR"+ansiReset)
	assert.True(t, strings.HasSuffix(out, "boom\n"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("Warning"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestOrDiscard(t *testing.T) {
	assert.Equal(t, Discard, OrDiscard(nil))
	l := New(&bytes.Buffer{}, INFO, false)
	assert.Equal(t, Sink(l), OrDiscard(l))
}
