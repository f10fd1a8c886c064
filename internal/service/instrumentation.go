package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

const tracerName = "github.com/noah-isme/cohort-analytics-api/internal/service"

// Component names used for spans, query metrics and storage errors.
const (
	componentCohort         = "cohort"
	componentSessions       = "sessions"
	componentCompletion     = "completion"
	componentHourly         = "hourly"
	componentFAQ            = "faq"
	componentMisconceptions = "misconceptions"
	componentMastery        = "mastery"
	componentStruggling     = "struggling"
)

// instrumentation is shared by the component services to time, trace and
// classify storage reads.
type instrumentation struct {
	metrics *MetricsService
	logger  *zap.Logger
	tracer  trace.Tracer
}

func newInstrumentation(metrics *MetricsService, logger *zap.Logger) instrumentation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return instrumentation{metrics: metrics, logger: logger, tracer: otel.Tracer(tracerName)}
}

// read runs fn inside a component span. Failures are logged with the
// component name and returned as typed application errors.
func (in instrumentation) read(ctx context.Context, component string, fn func(context.Context) error) error {
	ctx, span := in.tracer.Start(ctx, "analytics."+component, trace.WithAttributes(attribute.String("analytics.component", component)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	in.metrics.ObserveDBQuery(component, time.Since(start))
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	in.metrics.RecordComponentFailure(component)
	in.logger.Error("analytics component failed", zap.String("component", component), zap.Error(err))

	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, component+" query timed out")
	}
	return appErrors.Storage(component, err)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
