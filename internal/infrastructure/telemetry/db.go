package telemetry

import (
	"context"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing options
type DBTracingConfig struct {
	Enabled bool
	DBName  string
	// IncludeVariables puts bound query values into spans. Development only.
	IncludeVariables bool
	TracerProvider   trace.TracerProvider
}

// InstrumentDB registers the otelgorm plugin so each query becomes a child
// span of the request that issued it
func InstrumentDB(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.IncludeVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm: %w", err)
	}

	logger.Info("Database tracing enabled", zap.String("db_name", cfg.DBName))
	return nil
}

// RegisterPoolMetrics exports connection pool statistics as observable
// gauges read at collection time
func RegisterPoolMetrics(db *gorm.DB, meter metric.Meter) (metric.Registration, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	open, err := meter.Int64ObservableGauge("stockledger.db.pool.connections",
		metric.WithDescription("Open connections by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("stockledger.db.pool.waits",
		metric.WithDescription("Connections waited for"), metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(open, int64(stats.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, waits)
}
