// Package federation implements the DataFederationExecutor (spec §4.6): it
// walks an ExecutionPlan's dependency DAG, invoking each stage's endpoint
// (with fallback, retry, circuit-breaking, and rate-limiting) under bounded
// concurrency, ingesting successful records into the entity graph as they
// arrive and streaming progress events throughout.
//
// The scheduler is grounded on the teacher's SubAgentRunner
// (pkg/agent/orchestrator/runner.go): one goroutine per unit of work
// (here, per stage) that blocks on a bounded reservation before doing real
// work, and reports its outcome through a channel rather than a shared
// callback.
package federation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cidadaoai/sentinela/pkg/apiclient"
	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/models"
	"github.com/cidadaoai/sentinela/pkg/progress"
	"github.com/cidadaoai/sentinela/pkg/registry"
	"github.com/cidadaoai/sentinela/pkg/resilience"
)

// Config bounds the executor's concurrency and timeouts (spec §6.5).
type Config struct {
	MaxInFlightStages      int
	MaxInFlightPerEndpoint int
	DefaultStageTimeout    time.Duration
	Retry                  resilience.RetryConfig
}

// DefaultConfig matches the spec's stated defaults (spec §4.6/§6.5).
func DefaultConfig() Config {
	return Config{
		MaxInFlightStages:      8,
		MaxInFlightPerEndpoint: 4,
		DefaultStageTimeout:    30 * time.Second,
		Retry:                  resilience.DefaultRetryConfig,
	}
}

// Executor runs one ExecutionPlan at a time against a Registry and an
// APIClient, wrapped in the resilience layer.
type Executor struct {
	cfg      Config
	reg      *registry.Registry
	client   apiclient.APIClient
	breakers *resilience.BreakerRegistry
	limiters *resilience.LimiterRegistry

	endpointSemMu sync.Mutex
	endpointSems  map[string]chan struct{}
}

// New builds an Executor. breakers/limiters are shared across investigations
// so breaker state and rate-limit buckets persist per endpoint (spec §4.2).
func New(cfg Config, reg *registry.Registry, client apiclient.APIClient, breakers *resilience.BreakerRegistry, limiters *resilience.LimiterRegistry) *Executor {
	return &Executor{
		cfg:          cfg,
		reg:          reg,
		client:       client,
		breakers:     breakers,
		limiters:     limiters,
		endpointSems: make(map[string]chan struct{}),
	}
}

func (e *Executor) endpointSem(endpointID string) chan struct{} {
	e.endpointSemMu.Lock()
	defer e.endpointSemMu.Unlock()
	sem, ok := e.endpointSems[endpointID]
	if !ok {
		sem = make(chan struct{}, e.cfg.MaxInFlightPerEndpoint)
		e.endpointSems[endpointID] = sem
	}
	return sem
}

// Execute runs every stage of plan to completion or cancellation, ingesting
// successful records into g and streaming events to sink (spec §4.6). The
// returned slice is ordered by each stage's StartedAt (spec §4.6 ordering
// guarantee); a stage whose dependencies never run (parent ctx cancelled
// before it became eligible) may be entirely absent from the result, per
// the cancellation contract: "remaining stages are not started."
func (e *Executor) Execute(ctx context.Context, investigationID string, plan models.ExecutionPlan, g *graph.Graph, sink progress.Sink) []models.StageResult {
	if sink == nil {
		sink = progress.NoopSink{}
	}
	doneCh := make(map[string]chan struct{}, len(plan.Stages))
	for _, s := range plan.Stages {
		doneCh[s.ID] = make(chan struct{})
	}

	var stateMu sync.Mutex
	stageStatus := make(map[string]models.StageStatus, len(plan.Stages))

	var resultsMu sync.Mutex
	var results []models.StageResult
	record := func(r models.StageResult) {
		stateMu.Lock()
		stageStatus[r.StageID] = r.Status
		stateMu.Unlock()
		resultsMu.Lock()
		results = append(results, r)
		resultsMu.Unlock()
	}

	stageSem := make(chan struct{}, e.cfg.MaxInFlightStages)

	var wg sync.WaitGroup
	for _, stage := range plan.Stages {
		wg.Add(1)
		go func(stage models.ExecutionStage) {
			defer wg.Done()
			defer close(doneCh[stage.ID])

			startedAt := time.Now()
			for _, dep := range stage.Dependencies {
				select {
				case <-doneCh[dep]:
				case <-ctx.Done():
					record(cancelledResult(stage, startedAt))
					return
				}
			}

			if !e.eligible(stage, &stateMu, stageStatus) {
				r := models.StageResult{StageID: stage.ID, Status: models.StageStatusSkipped, StartedAt: startedAt}
				record(r)
				sink.Send(ctx, progress.Event{Kind: progress.EventStageCompleted, InvestigationID: investigationID, StageID: stage.ID, Status: r.Status})
				return
			}

			select {
			case stageSem <- struct{}{}:
			case <-ctx.Done():
				record(cancelledResult(stage, startedAt))
				return
			}
			defer func() { <-stageSem }()

			r := e.runStage(ctx, investigationID, stage, startedAt, g, sink)
			record(r)
		}(stage)
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool { return results[i].StartedAt.Before(results[j].StartedAt) })
	return results
}

func cancelledResult(stage models.ExecutionStage, startedAt time.Time) models.StageResult {
	return models.StageResult{
		StageID:   stage.ID,
		Status:    models.StageStatusFailed,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Errors:    []models.ErrorRecord{{Kind: models.ErrorKindCancelled, Message: "investigation cancelled before stage ran"}},
	}
}

// eligible reports whether stage may run: every dependency completed or
// partial, or the stage is marked independent (spec §4.6).
func (e *Executor) eligible(stage models.ExecutionStage, mu *sync.Mutex, status map[string]models.StageStatus) bool {
	if stage.Independent {
		return true
	}
	mu.Lock()
	defer mu.Unlock()
	for _, dep := range stage.Dependencies {
		switch status[dep] {
		case models.StageStatusCompleted, models.StageStatusPartial:
		default:
			return false
		}
	}
	return true
}

// runStage invokes the stage's primary endpoint, falling back through
// registry.FallbacksFor on fallback-eligible failures (spec §4.6), under a
// per-stage deadline.
func (e *Executor) runStage(ctx context.Context, investigationID string, stage models.ExecutionStage, startedAt time.Time, g *graph.Graph, sink progress.Sink) models.StageResult {
	timeout := stage.TimeoutOverride
	if timeout <= 0 {
		timeout = e.cfg.DefaultStageTimeout
	}
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	candidates := e.reg.ByCapability(stage.Capability)
	endpointIDs := make([]string, len(candidates))
	for i, ep := range candidates {
		endpointIDs[i] = ep.ID
	}
	sink.Send(ctx, progress.Event{Kind: progress.EventStageStarted, InvestigationID: investigationID, StageID: stage.ID, Endpoints: endpointIDs})

	if len(candidates) == 0 {
		return e.finish(ctx, investigationID, stage, startedAt, g, sink, nil,
			[]models.ErrorRecord{{Kind: models.ErrorKindNotFound, Message: fmt.Sprintf("no endpoint advertises capability %q", stage.Capability)}},
			nil, 0)
	}

	primary := candidates[0]
	record, attemptErr, attempts := e.invoke(stageCtx, primary, stage)
	if attemptErr == nil {
		return e.finish(ctx, investigationID, stage, startedAt, g, sink,
			[]models.RawResult{record}, nil, []string{primary.ID}, attempts)
	}

	primaryErrKind := classifyErr(attemptErr)
	errs := []models.ErrorRecord{{EndpointID: primary.ID, Kind: primaryErrKind, Message: attemptErr.Error()}}
	if stageCtx.Err() != nil {
		errs = append(errs, models.ErrorRecord{Kind: models.ErrorKindTimeout, Message: "stage deadline exceeded"})
		return e.finish(ctx, investigationID, stage, startedAt, g, sink, nil, errs, []string{primary.ID}, attempts)
	}
	if !primaryErrKind.FallbackEligible() {
		return e.finish(ctx, investigationID, stage, startedAt, g, sink, nil, errs, []string{primary.ID}, attempts)
	}

	tried := []string{primary.ID}
	for _, fb := range e.reg.FallbacksFor(primary.ID) {
		tried = append(tried, fb.ID)
		fbRecord, fbErr, fbAttempts := e.invoke(stageCtx, fb, stage)
		attempts += fbAttempts
		if fbErr == nil {
			return e.finish(ctx, investigationID, stage, startedAt, g, sink, []models.RawResult{fbRecord}, errs, tried, attempts)
		}
		errs = append(errs, models.ErrorRecord{EndpointID: fb.ID, Kind: classifyErr(fbErr), Message: fbErr.Error()})
		if stageCtx.Err() != nil {
			errs = append(errs, models.ErrorRecord{Kind: models.ErrorKindTimeout, Message: "stage deadline exceeded"})
			break
		}
	}
	return e.finish(ctx, investigationID, stage, startedAt, g, sink, nil, errs, tried, attempts)
}

// finish ingests any successful records into g, emits StageRecord/StageCompleted
// events, and assembles the terminal StageResult (spec §4.6 partial-success rule).
func (e *Executor) finish(ctx context.Context, investigationID string, stage models.ExecutionStage, startedAt time.Time, g *graph.Graph, sink progress.Sink, recs []models.RawResult, errs []models.ErrorRecord, endpointsInvoked []string, attempts int) models.StageResult {
	status := models.StageStatusFailed
	if len(recs) > 0 {
		if len(errs) == 0 {
			status = models.StageStatusCompleted
		} else {
			status = models.StageStatusPartial
		}
	}

	for _, r := range recs {
		if g != nil {
			if err := g.Ingest(stage.Capability, r); err != nil {
				errs = append(errs, models.ErrorRecord{EndpointID: r.SourceEndpointID, Kind: models.ErrorKindInternalError, Message: err.Error()})
			}
		}
		sink.Send(ctx, progress.Event{
			Kind:            progress.EventStageRecord,
			InvestigationID: investigationID,
			StageID:         stage.ID,
			Record:          &progress.RecordDigest{ID: r.SourceEndpointID, Type: string(stage.Capability), Label: fmt.Sprintf("%s record from %s", stage.Capability, r.SourceEndpointID)},
		})
	}

	duration := time.Since(startedAt)
	sink.Send(ctx, progress.Event{Kind: progress.EventStageCompleted, InvestigationID: investigationID, StageID: stage.ID, Status: status, Duration: duration})

	return models.StageResult{
		StageID:          stage.ID,
		Status:           status,
		StartedAt:        startedAt,
		Duration:         duration,
		Attempts:         attempts,
		EndpointsInvoked: endpointsInvoked,
		Records:          recs,
		Errors:           errs,
	}
}

// invoke runs one endpoint call through the rate limiter, circuit breaker,
// and retry loop (spec §4.2), bounded by the endpoint's own concurrency
// semaphore.
func (e *Executor) invoke(ctx context.Context, ep models.APIEndpoint, stage models.ExecutionStage) (models.RawResult, error, int) {
	sem := e.endpointSem(ep.ID)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return models.RawResult{}, models.NewClassifiedError(models.ErrorKindCancelled, "", ctx.Err()), 0
	}
	defer func() { <-sem }()

	retryCfg := e.cfg.Retry
	if stage.RetryPolicy != nil {
		if stage.RetryPolicy.MaxAttempts > 0 {
			retryCfg.MaxAttempts = stage.RetryPolicy.MaxAttempts
		}
		if stage.RetryPolicy.BaseBackoff > 0 {
			retryCfg.BaseBackoff = stage.RetryPolicy.BaseBackoff
		}
		if stage.RetryPolicy.MaxBackoff > 0 {
			retryCfg.MaxBackoff = stage.RetryPolicy.MaxBackoff
		}
	}

	result, err, attempts := resilience.Do(ctx, retryCfg, func(int) (any, error) {
		if waitErr := e.limiters.Wait(ctx, ep.ID, ep.RatePerMinute); waitErr != nil {
			return nil, models.NewClassifiedError(models.ErrorKindCancelled, "", waitErr)
		}
		return e.breakers.Execute(ep.ID, func() (any, error) {
			return e.client.Invoke(ctx, ep, stage.Capability, stage.Params)
		})
	})
	if err != nil {
		return models.RawResult{}, wrapBreakerErr(err), attempts
	}
	raw, ok := result.(models.RawResult)
	if !ok {
		return models.RawResult{}, models.NewClassifiedError(models.ErrorKindInternalError, "endpoint returned unexpected result type", nil), attempts
	}
	return raw, nil, attempts
}

// wrapBreakerErr maps gobreaker's own open-circuit sentinel (surfaced as an
// unclassified error when Execute short-circuits) onto ErrorKindCircuitOpen;
// any already-classified error passes through unchanged.
func wrapBreakerErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := asClassified(err); ok {
		return err
	}
	return models.NewClassifiedError(models.ErrorKindCircuitOpen, "", err)
}

func asClassified(err error) (*models.ClassifiedError, bool) {
	ce, ok := err.(*models.ClassifiedError)
	return ce, ok
}

func classifyErr(err error) models.ErrorKind {
	if ce, ok := asClassified(err); ok {
		return ce.Kind
	}
	return models.ErrorKindInternalError
}
