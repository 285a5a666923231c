package telemetry

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{ServerAddress: "http://localhost:4040", ApplicationName: "stockledger"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresTarget(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProfilerConfig
		wantErr string
	}{
		{"missing server address", ProfilerConfig{Enabled: true, ApplicationName: "stockledger"}, "server address is required"},
		{"missing application name", ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, "application name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfiler(tt.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProfiler_ProfileTypes(t *testing.T) {
	plain := (&Profiler{}).profileTypes()
	assert.Contains(t, plain, pyroscope.ProfileCPU)
	assert.Contains(t, plain, pyroscope.ProfileInuseSpace)
	assert.NotContains(t, plain, pyroscope.ProfileMutexDuration)

	contended := (&Profiler{config: ProfilerConfig{ContentionRate: 5}}).profileTypes()
	assert.Contains(t, contended, pyroscope.ProfileMutexDuration)
	assert.Contains(t, contended, pyroscope.ProfileBlockCount)
	assert.Len(t, contended, len(plain)+4)
}

func TestWithSpanProfiles(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	t.Run("labels root spans", func(t *testing.T) {
		ctx, span := withSpanProfiles(tp, true).Tracer("ledger").Start(context.Background(), "receive")
		defer span.End()
		spanID, ok := pprof.Label(ctx, "span_id")
		require.True(t, ok)
		assert.NotEmpty(t, spanID)
	})

	t.Run("disabled leaves the provider alone", func(t *testing.T) {
		assert.Same(t, tp, withSpanProfiles(tp, false))
		ctx, span := withSpanProfiles(tp, false).Tracer("ledger").Start(context.Background(), "receive")
		defer span.End()
		_, ok := pprof.Label(ctx, "span_id")
		assert.False(t, ok)
	})
}

func TestPyroscopeLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := newPyroscopeLogger(zap.New(core))

	l.Infof("uploaded %d profiles", 3)
	l.Errorf("upload failed: %s", "timeout")

	require.Equal(t, 2, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, "pyroscope", entry.LoggerName)
	assert.Equal(t, "uploaded 3 profiles", entry.Message)
	assert.Equal(t, zapcore.ErrorLevel, recorded.All()[1].Level)
}
