package logging_test

import (
	"bytes"
	"testing"

	"github.com/kestrelcrawl/intentcrawl/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToInfoOnBadLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("not-a-level", false, &buf)
	logger.Debug().Msg("should not appear")
	require.Empty(t, buf.String())

	logger.Info().Msg("should appear")
	require.Contains(t, buf.String(), "should appear")
}

func TestComponentAndRunTagging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("debug", false, &buf)
	logger = logging.WithRun(logger, "run-123")
	logger = logging.Component(logger, "frontier")

	logger.Info().Msg("hi")

	out := buf.String()
	require.Contains(t, out, `"run_id":"run-123"`)
	require.Contains(t, out, `"component":"frontier"`)
}
