package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextLogger_AttachesRequestAndSubject(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cl := NewContextLogger(zap.New(core))

	ctx := WithSubjectID(WithRequestID(context.Background(), "req-1"), 42)
	cl.LogRequest(ctx, "GET", "/api/v1/shows", 200, 3)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, int64(42), fields["subject_id"])
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, int64(200), fields["status_code"])
	}
}

func TestContextLogger_NoFieldsReturnsBaseLogger(t *testing.T) {
	base := zap.NewNop()
	cl := NewContextLogger(base)
	assert.Same(t, base, cl.WithContext(context.Background()))
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestNew_FallsBackOnUnknownLevel(t *testing.T) {
	l := New("chatty", "json")
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	dev := New("debug", "console")
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}
