package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/regdesk/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestEmail(t *testing.T) {
	attr := logger.Email("ada@example.com")
	require.Equal(t, "email", attr.Key)
	assert.Equal(t, "a**@example.com", attr.Value.String())

	empty := logger.Email("")
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestTableAndPosition(t *testing.T) {
	attr := logger.Table("Registrations")
	require.Equal(t, "table", attr.Key)
	assert.Equal(t, "Registrations", attr.Value.String())

	pos := logger.Position(7)
	require.Equal(t, "position", pos.Key)
	assert.Equal(t, int64(7), pos.Value.Int64())
}

func TestSource(t *testing.T) {
	attr := logger.Source("remember_token")
	require.Equal(t, "source", attr.Key)
	assert.Equal(t, "remember_token", attr.Value.String())
}

func TestDuration(t *testing.T) {
	attr := logger.Duration(1500 * time.Millisecond)
	require.Equal(t, "duration", attr.Key)
	assert.Equal(t, 1500*time.Millisecond, attr.Value.Duration())
}

func TestRequestID(t *testing.T) {
	attr := logger.RequestID("abc")
	require.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.Any())
}
