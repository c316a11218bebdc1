package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	assert.False(t, Enabled())

	t.Setenv("OTEL_ENABLED", "true")
	assert.True(t, Enabled())
}

func TestSetupOTelSDK(t *testing.T) {
	// exporters connect lazily, so no collector is needed
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318")

	ctx := context.Background()
	shutdown, err := SetupOTelSDK(ctx, "skew-entropy-test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithTimeout(ctx, 0)
	defer cancel()
	_ = shutdown(ctx)
}
