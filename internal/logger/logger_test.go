package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug", false).GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("warn", false).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("nonsense", false).GetLevel(),
		"unknown levels fall back to info")
}

func TestNewLoggerFormatter(t *testing.T) {
	_, isJSON := NewLogger("info", true).Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON, "production logs JSON")

	_, isText := NewLogger("info", false).Formatter.(*logrus.TextFormatter)
	assert.True(t, isText, "development logs text")
}
