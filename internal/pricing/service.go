package pricing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harlowprint/backoffice-backend/internal/images"
	"github.com/harlowprint/backoffice-backend/internal/metafields"
	"github.com/harlowprint/backoffice-backend/internal/products"
	"github.com/harlowprint/backoffice-backend/pkg/config"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

// LogSink receives the human-readable run log, line by line, as it is
// produced. HTTP callers stream it over SSE; the CLI prints it.
type LogSink func(line string)

func (s LogSink) emit(format string, args ...any) {
	if s != nil {
		s(fmt.Sprintf(format, args...))
	}
}

// Platform is the full platform surface the pricing run needs.
type Platform interface {
	ListProducts(ctx context.Context) ([]shopify.Product, error)
	GetProduct(ctx context.Context, productID int64) (*shopify.Product, error)
	metafields.Platform
}

// Locker serializes runs per product. Acquire fails when another run
// holds the product.
type Locker interface {
	AcquireProductLock(ctx context.Context, productID int64, ttl time.Duration) (release func(), err error)
}

// RunRecorder persists run history rows.
type RunRecorder interface {
	StartRun(ctx context.Context, runID, scope string) error
	FinishRun(ctx context.Context, runID string, successful, failed, skipped int, status string) error
}

// Metrics records per-product outcomes and durations.
type Metrics interface {
	RecordProduct(outcome string, duration time.Duration)
}

// BatchOptions selects which products a batch run covers. IDs win over
// the text filter; both empty means every product. RunID lets the
// caller pick the run identifier up front so a log stream can be
// attached before the run starts; left empty, one is generated.
type BatchOptions struct {
	ProductIDs []int64
	Filter     string
	RunID      string
}

// ServiceParams groups dependencies for the pricing service.
type ServiceParams struct {
	Platform   Platform
	Reconciler *Reconciler
	Writer     *metafields.Writer
	Binder     *images.Binder
	Locker     Locker
	Runs       RunRecorder
	Metrics    Metrics
	Logger     *logger.Logger
	Cfg        config.PricingConfig
}

// Service runs the pricing pipeline over one product or a batch.
type Service interface {
	RunForProduct(ctx context.Context, productID int64, sink LogSink) (*ProductRunResult, error)
	RunBatch(ctx context.Context, opts BatchOptions, sink LogSink) (*BatchRunSummary, error)
}

type service struct {
	platform   Platform
	reconciler *Reconciler
	writer     *metafields.Writer
	binder     *images.Binder
	locker     Locker
	runs       RunRecorder
	metrics    Metrics
	log        *logger.Logger
	cfg        config.PricingConfig
	sleep      func(time.Duration)
}

func NewService(params ServiceParams) (Service, error) {
	if params.Platform == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform client is required")
	}
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reconciler is required")
	}
	if params.Writer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "metafield writer is required")
	}
	if params.Binder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image binder is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		platform:   params.Platform,
		reconciler: params.Reconciler,
		writer:     params.Writer,
		binder:     params.Binder,
		locker:     params.Locker,
		runs:       params.Runs,
		metrics:    params.Metrics,
		log:        params.Logger,
		cfg:        params.Cfg,
		sleep:      time.Sleep,
	}, nil
}

// RunForProduct runs the full pipeline for a single product.
func (s *service) RunForProduct(ctx context.Context, productID int64, sink LogSink) (*ProductRunResult, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.platform.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.processProduct(ctx, *product, sink)
}

// RunBatch runs the pipeline over the selected products, one at a time
// with a fixed delay between them. A failing product never stops the
// batch; it is counted and the run moves on.
func (s *service) RunBatch(ctx context.Context, opts BatchOptions, sink LogSink) (*BatchRunSummary, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = s.log.WithRunID(ctx, runID)

	all, err := s.platform.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	selected := products.Filter(all, opts.ProductIDs, opts.Filter)
	if len(selected) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no products match the given selection")
	}

	s.recordStart(ctx, runID, opts)
	sink.emit("run %s: processing %d products", runID, len(selected))

	summary := &BatchRunSummary{RunID: runID, Total: len(selected)}
	for i, product := range selected {
		sink.emit("[%d/%d] %s (id %d)", i+1, len(selected), product.Title, product.ID)
		started := time.Now()

		result, err := s.processProduct(ctx, product, sink)
		switch {
		case err != nil:
			summary.Failed++
			s.recordProduct("failed", started)
			sink.emit("[%d/%d] failed: %v", i+1, len(selected), err)
			s.log.Error(s.log.WithProductID(ctx, product.ID), "pricing run failed for product", err)
		case result.Skipped:
			summary.Skipped++
			s.recordProduct("skipped", started)
			sink.emit("[%d/%d] skipped: %s", i+1, len(selected), result.Reason)
		default:
			summary.Successful++
			s.recordProduct("successful", started)
			sink.emit("[%d/%d] done: %d variants", i+1, len(selected), result.VariantCount)
		}

		if i < len(selected)-1 {
			s.sleep(s.cfg.InterProductDelay)
		}
	}

	status := "completed"
	if summary.Successful == 0 && summary.Failed > 0 {
		status = "failed"
	}
	s.recordFinish(ctx, runID, summary, status)
	sink.emit("run %s finished: %d successful, %d failed, %d skipped",
		runID, summary.Successful, summary.Failed, summary.Skipped)
	return summary, nil
}

// processProduct is the fixed step order for one product: fetch inputs,
// synthesize, reconcile, enrich, persist, bind images. Any error before
// the enrichment writes leaves the pricing metafields untouched.
func (s *service) processProduct(ctx context.Context, product shopify.Product, sink LogSink) (*ProductRunResult, error) {
	ctx = s.log.WithProductID(ctx, product.ID)
	result := &ProductRunResult{ProductID: product.ID, Title: product.Title}

	if strings.Contains(strings.ToLower(product.Title), "origination") {
		result.Skipped = true
		result.Reason = "origination product"
		return result, nil
	}

	if s.locker != nil {
		release, err := s.locker.AcquireProductLock(ctx, product.ID, s.cfg.RunLockTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err,
				fmt.Sprintf("product %d is locked by another run", product.ID))
		}
		defer release()
	}

	refs, err := metafields.FetchByKeys(ctx, s.platform, product.ID,
		KeyTradeBands, KeyEndBands, KeyTradeEnriched, KeyEndEnriched,
		KeyUnitWeight, KeySKU, KeyColours)
	if err != nil {
		return nil, err
	}

	sku := refs[KeySKU].Value
	unitWeight := s.parseUnitWeight(ctx, refs[KeyUnitWeight].Value)
	var colours []string
	colourCodes := map[string]string{}
	if raw := refs[KeyColours].Value; raw != "" {
		colours, colourCodes = ParseColourOptions(raw)
	}

	tradeRef, hasTrade := refs[KeyTradeBands]
	endRef, hasEnd := refs[KeyEndBands]
	if !hasTrade || !hasEnd {
		result.Skipped = true
		result.Reason = "missing pricing band metafields"
		return result, nil
	}

	trade := s.parseBandsLogged(ctx, KeyTradeBands, tradeRef.Value, sink)
	endc := s.parseBandsLogged(ctx, KeyEndBands, endRef.Value, sink)
	if len(trade) == 0 && len(endc) == 0 {
		result.Skipped = true
		result.Reason = "no valid pricing bands"
		return result, nil
	}

	candidates := BuildVariants(trade, endc, sku, unitWeight, colours, colourCodes)
	sink.emit("  synthesized %d variants (sku %q, weight %dg, %d colours)",
		len(candidates), sku, unitWeight, len(colours))

	confirmed, err := s.reconciler.Reconcile(ctx, product.ID, candidates, len(colours) > 0)
	if err != nil {
		return nil, err
	}
	result.VariantCount = len(confirmed)
	sink.emit("  platform confirmed %d variants", len(confirmed))

	enrichedTrade := s.reconciler.EnrichBands(ctx, trade, confirmed, CustomerTrade)
	enrichedEnd := s.reconciler.EnrichBands(ctx, endc, confirmed, CustomerEnd)
	if err := s.writer.SetOrUpdate(ctx, refs, product.ID, KeyTradeEnriched, enrichedTrade); err != nil {
		return nil, err
	}
	if err := s.writer.SetOrUpdate(ctx, refs, product.ID, KeyEndEnriched, enrichedEnd); err != nil {
		return nil, err
	}

	if err := s.binder.BindMainImage(ctx, product.ID, colours, nil); err != nil {
		// Image binding is best effort; pricing data is already correct.
		s.log.Warn(s.log.WithField(ctx, "error", err.Error()), "image binding failed")
		sink.emit("  image binding failed: %v", err)
	}
	return result, nil
}

func (s *service) parseUnitWeight(ctx context.Context, raw string) int {
	if raw == "" {
		return 0
	}
	weight, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		s.log.Warn(ctx, "unit weight metafield is not an integer, using 0")
		return 0
	}
	return weight
}

func (s *service) parseBandsLogged(ctx context.Context, key, raw string, sink LogSink) []PriceBand {
	bands, err := ParseBands(raw)
	if err != nil {
		s.log.Warn(s.log.WithField(ctx, "key", key), "could not parse price bands")
		sink.emit("  %s: %v", key, err)
		return nil
	}
	return bands
}

func (s *service) recordStart(ctx context.Context, runID string, opts BatchOptions) {
	if s.runs == nil {
		return
	}
	scope := "all"
	if len(opts.ProductIDs) > 0 {
		scope = fmt.Sprintf("ids:%d", len(opts.ProductIDs))
	} else if opts.Filter != "" {
		scope = "filter:" + opts.Filter
	}
	if err := s.runs.StartRun(ctx, runID, scope); err != nil {
		s.log.Warn(ctx, "could not record run start")
	}
}

func (s *service) recordFinish(ctx context.Context, runID string, summary *BatchRunSummary, status string) {
	if s.runs == nil {
		return
	}
	if err := s.runs.FinishRun(ctx, runID, summary.Successful, summary.Failed, summary.Skipped, status); err != nil {
		s.log.Warn(ctx, "could not record run finish")
	}
}

func (s *service) recordProduct(outcome string, started time.Time) {
	if s.metrics != nil {
		s.metrics.RecordProduct(outcome, time.Since(started))
	}
}
