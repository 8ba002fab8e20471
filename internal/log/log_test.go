package log

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLoggerWithWriter(Config{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeConfigValidation))
}

func TestJSONLoggerEmitsErrorAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewLoggerWithWriter(Config{Level: LevelDebug, Format: FormatJSON}, buf)
	require.NoError(t, err)

	cause := stderrors.New("api said no")
	logger.WithFields(map[string]any{"resource_kind": "placement_group"}).
		Errorf(context.Background(), apperrors.Wrap(cause, apperrors.CodePlatformAPIError, "create failed"), "reconcile %s", "pg-1")

	var entry map[string]any
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "reconcile pg-1", entry["msg"])
	assert.Equal(t, "PLATFORM_API_ERROR", entry["error_code"])
	assert.Equal(t, "api said no", entry["error_wrapped"])
	assert.Equal(t, "placement_group", entry["resource_kind"])
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewLoggerWithWriter(Config{Level: LevelWarn}, buf)
	require.NoError(t, err)

	logger.Infof(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	logger.Warnf(context.Background(), "shown %d", 1)
	assert.Contains(t, buf.String(), "shown 1")
}
