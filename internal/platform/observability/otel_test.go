package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		" error ": slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseLevel(raw), "LOG_LEVEL=%q", raw)
	}
}

func TestInstrumentsFallbacks(t *testing.T) {
	var instruments *Instruments
	assert.NotNil(t, instruments.Tracer("test"))
	assert.NotNil(t, instruments.Meter("test"))
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 1.0, SampleRatio(""))
	assert.Equal(t, 0.25, SampleRatio("0.25"))
	assert.Equal(t, 0.0, SampleRatio("0"))
	assert.Equal(t, 1.0, SampleRatio("1.5"))
	assert.Equal(t, 1.0, SampleRatio("half"))
}

func TestInit_SDKDisabledInstallsNoopProviders(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")

	instruments, shutdown, err := Init(context.Background(), "sales-test")
	require.NoError(t, err)
	require.NotNil(t, instruments.Logger)
	_, span := instruments.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}
