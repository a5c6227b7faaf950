package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	got := redact([]interface{}{"user_id", "u-1", "OPENAI_API_KEY", "sk-123", "primary_email", "a@b.c", "dangling"})

	assert.Equal(t, []interface{}{"user_id", "u-1", "OPENAI_API_KEY", "[REDACTED]", "primary_email", "[REDACTED]", "dangling"}, got)
}

func TestNop(t *testing.T) {
	l := Nop().With("component", "test")
	assert.NotPanics(t, func() {
		l.Info("hello", "k", "v")
		l.Sync()
	})
}
