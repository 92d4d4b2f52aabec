package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), "booking", "test", Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_RejectsBadSampleRate(t *testing.T) {
	_, err := Init(context.Background(), "booking", "test", Config{Enabled: true, SampleRate: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample rate")
}

func TestInit_Enabled(t *testing.T) {
	shutdown, err := Init(context.Background(), "review", "test", Config{
		Enabled:    true,
		Endpoint:   "localhost:4318",
		SampleRate: 0.5,
	})
	require.NoError(t, err)

	_, span := Tracer("review-test").Start(context.Background(), "recompute")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}
