package eventservices

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jiaming2012/skew-entropy/src/data"
	"github.com/jiaming2012/skew-entropy/src/eventmodels"
	"github.com/jiaming2012/skew-entropy/src/indicators"
)

const instrumentationName = "github.com/jiaming2012/skew-entropy/src/eventservices"

type EntropyPipelineResult struct {
	Run      *eventmodels.EntropyRun
	Skewness eventmodels.SkewnessResult
	// QuoteCount is the number of quotes that reached the skewness stage.
	QuoteCount int
}

// EntropyPipeline turns stored option quotes into an entropy series: quotes,
// then one skewness premium per date, then one ApEn value per window.
type EntropyPipeline struct {
	source    data.OptionQuoteSource
	extractor *indicators.SkewnessExtractor
	opts      indicators.ApEnOptions
	tracer    trace.Tracer

	runCounter     metric.Int64Counter
	skippedCounter metric.Int64Counter
	duration       metric.Float64Histogram
}

func NewEntropyPipeline(source data.OptionQuoteSource, cfg *eventmodels.PipelineConfigYAML) (*EntropyPipeline, error) {
	if cfg == nil {
		cfg = eventmodels.NewDefaultPipelineConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewEntropyPipeline: %w", err)
	}

	meter := otel.Meter(instrumentationName)

	runCounter, err := meter.Int64Counter("entropy_pipeline.runs", metric.WithDescription("Number of pipeline runs"))
	if err != nil {
		return nil, fmt.Errorf("NewEntropyPipeline: failed to create run counter: %w", err)
	}

	skippedCounter, err := meter.Int64Counter("entropy_pipeline.skipped_dates", metric.WithDescription("Quote dates without a skewness premium"))
	if err != nil {
		return nil, fmt.Errorf("NewEntropyPipeline: failed to create skipped counter: %w", err)
	}

	duration, err := meter.Float64Histogram("entropy_pipeline.duration", metric.WithUnit("s"), metric.WithDescription("Pipeline run duration"))
	if err != nil {
		return nil, fmt.Errorf("NewEntropyPipeline: failed to create duration histogram: %w", err)
	}

	return &EntropyPipeline{
		source:         source,
		extractor:      indicators.NewSkewnessExtractor(cfg.Skewness.MinDte, cfg.Skewness.MaxDte),
		opts:           indicators.NewApEnOptionsFromConfig(cfg.Entropy),
		tracer:         otel.Tracer(instrumentationName),
		runCounter:     runCounter,
		skippedCounter: skippedCounter,
		duration:       duration,
	}, nil
}

func (p *EntropyPipeline) Run(ctx context.Context, startDate, endDate time.Time) (result *EntropyPipelineResult, err error) {
	ctx, span := p.tracer.Start(ctx, "EntropyPipeline.Run", trace.WithAttributes(
		attribute.String("start_date", startDate.Format(eventmodels.DateLayout)),
		attribute.String("end_date", endDate.Format(eventmodels.DateLayout)),
	))
	defer span.End()

	totalStart := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		attrs := metric.WithAttributes(attribute.String("status", status))
		p.runCounter.Add(ctx, 1, attrs)
		p.duration.Record(ctx, time.Since(totalStart).Seconds(), attrs)
	}()

	quotes, err := p.load(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	quotes = p.clean(ctx, quotes)

	skewness := p.skewness(ctx, quotes)

	run, err := p.entropy(ctx, skewness)
	if err != nil {
		return nil, err
	}

	run.StartDate = startDate
	run.EndDate = endDate
	if endDate.IsZero() {
		run.EndDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	log.Infof("Total pipeline took %v", time.Since(totalStart))

	return &EntropyPipelineResult{
		Run:        run,
		Skewness:   skewness,
		QuoteCount: len(quotes),
	}, nil
}

func (p *EntropyPipeline) load(ctx context.Context, startDate, endDate time.Time) ([]*eventmodels.OptionQuote, error) {
	ctx, span := p.tracer.Start(ctx, "EntropyPipeline.load")
	defer span.End()

	start := time.Now()

	quotes, err := p.source.FetchOptionQuotes(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("EntropyPipeline.Run: failed to load option quotes: %w", err)
	}

	span.SetAttributes(attribute.Int("quotes", len(quotes)))
	log.Infof("Loading data took %v (%d quotes)", time.Since(start), len(quotes))

	return quotes, nil
}

func (p *EntropyPipeline) clean(ctx context.Context, quotes []*eventmodels.OptionQuote) []*eventmodels.OptionQuote {
	_, span := p.tracer.Start(ctx, "EntropyPipeline.clean")
	defer span.End()

	start := time.Now()

	cleaned := make([]*eventmodels.OptionQuote, 0, len(quotes))
	for _, q := range quotes {
		if q.HasRequiredFields() && q.DTE > 0 {
			cleaned = append(cleaned, q)
		}
	}

	span.SetAttributes(attribute.Int("dropped", len(quotes)-len(cleaned)))
	log.Infof("Data cleaning took %v (%d of %d quotes kept)", time.Since(start), len(cleaned), len(quotes))

	return cleaned
}

func (p *EntropyPipeline) skewness(ctx context.Context, quotes []*eventmodels.OptionQuote) eventmodels.SkewnessResult {
	ctx, span := p.tracer.Start(ctx, "EntropyPipeline.skewness")
	defer span.End()

	start := time.Now()

	result := p.extractor.Extract(quotes)

	span.SetAttributes(
		attribute.Int("dates", len(result.Points)),
		attribute.Int("skipped", len(result.Skipped)),
	)

	if len(result.Skipped) > 0 {
		p.skippedCounter.Add(ctx, int64(len(result.Skipped)))
	}

	log.Infof("Skewness calculation took %v (%d dates, %d skipped)", time.Since(start), len(result.Points), len(result.Skipped))

	return result
}

func (p *EntropyPipeline) entropy(ctx context.Context, skewness eventmodels.SkewnessResult) (*eventmodels.EntropyRun, error) {
	_, span := p.tracer.Start(ctx, "EntropyPipeline.entropy")
	defer span.End()

	start := time.Now()
	series := skewness.Values()

	opts := p.opts
	if opts.Tolerance == nil && len(series) > 0 {
		r, err := indicators.DefaultTolerance(series)
		if err != nil {
			return nil, fmt.Errorf("EntropyPipeline.Run: %w", err)
		}
		opts.Tolerance = &r
	}

	points, err := indicators.ComputeApEn(series, skewness.Dates(), opts)
	if err != nil {
		return nil, fmt.Errorf("EntropyPipeline.Run: failed to compute approximate entropy: %w", err)
	}

	run := eventmodels.NewEntropyRun(time.Time{}, time.Time{}, p.extractor.MinDte, p.extractor.MaxDte)
	run.WindowWidth = opts.WindowWidth
	run.SlidingStep = opts.SlidingStep
	run.EmbeddingDim = opts.EmbeddingDim
	run.Tolerance = *opts.Tolerance
	run.Points = points

	span.SetAttributes(attribute.Int("windows", len(points)), attribute.Float64("tolerance", run.Tolerance))
	log.Infof("Entropy calculation took %v (%d windows)", time.Since(start), len(points))

	return run, nil
}

// RunSkewness stops after the skewness stage. The returned result has no Run.
func (p *EntropyPipeline) RunSkewness(ctx context.Context, startDate, endDate time.Time) (*EntropyPipelineResult, error) {
	ctx, span := p.tracer.Start(ctx, "EntropyPipeline.RunSkewness")
	defer span.End()

	quotes, err := p.load(ctx, startDate, endDate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	quotes = p.clean(ctx, quotes)

	return &EntropyPipelineResult{
		Skewness:   p.skewness(ctx, quotes),
		QuoteCount: len(quotes),
	}, nil
}
