package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cohort-analytics-api/pkg/config"
)

func TestInitDisabledReturnsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	cfg := &config.Config{Tracing: config.TracingConfig{Enabled: true, Exporter: "zipkin"}}

	shutdown, err := Init(context.Background(), cfg)
	assert.Error(t, err)
	assert.NotNil(t, shutdown)
}

func TestInitStdout(t *testing.T) {
	cfg := &config.Config{Tracing: config.TracingConfig{Enabled: true, Exporter: ExporterStdout, ServiceName: "test"}}

	shutdown, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
