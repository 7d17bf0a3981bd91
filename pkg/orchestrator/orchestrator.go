// Package orchestrator implements the Orchestrator's public Investigate
// operation (spec §4.9): it wires entity extraction, intent classification,
// planning, federated execution, entity-graph building, and anomaly
// analysis into one call per investigation.
package orchestrator

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid"

	"github.com/cidadaoai/sentinela/pkg/anomaly"
	"github.com/cidadaoai/sentinela/pkg/entity"
	"github.com/cidadaoai/sentinela/pkg/federation"
	"github.com/cidadaoai/sentinela/pkg/graph"
	"github.com/cidadaoai/sentinela/pkg/intent"
	"github.com/cidadaoai/sentinela/pkg/models"
	"github.com/cidadaoai/sentinela/pkg/plan"
	"github.com/cidadaoai/sentinela/pkg/progress"
	"github.com/cidadaoai/sentinela/pkg/sanitize"
)

// generalInfoStageID is the synthetic stage id used for the
// InsufficientContext short-circuit result (spec §4.9 step 3).
const generalInfoStageID = "general_info"

// AnalyzerConcurrency bounds how many anomaly analyzers run at once (spec
// §4.9 step 6 / §5: "up to 4 analyzers run concurrently").
const defaultAnalyzerConcurrency = 4

// Orchestrator glues every engine component behind one public operation.
type Orchestrator struct {
	extractor         *entity.Extractor
	classifier        *intent.Classifier
	planner           *plan.Planner
	executor          *federation.Executor
	anomalyCfg        anomaly.Config
	analyzerConcurrency int
}

// New builds an Orchestrator from its already-constructed collaborators.
func New(extractor *entity.Extractor, classifier *intent.Classifier, planner *plan.Planner, executor *federation.Executor, anomalyCfg anomaly.Config) *Orchestrator {
	return &Orchestrator{
		extractor:           extractor,
		classifier:          classifier,
		planner:             planner,
		executor:            executor,
		anomalyCfg:          anomalyCfg,
		analyzerConcurrency: defaultAnalyzerConcurrency,
	}
}

// Investigate runs one end-to-end investigation (spec §4.9). userID and
// sessionID are optional context, recorded for traceability only; pass ""
// when absent. sink may be nil, in which case progress events are
// discarded.
func (o *Orchestrator) Investigate(ctx context.Context, query, userID, sessionID string, sink progress.Sink) models.InvestigationResult {
	if sink == nil {
		sink = progress.NoopSink{}
	}
	startedAt := time.Now()
	investigationID := newInvestigationID()
	slog.Info("investigation started", "investigation_id", investigationID, "user_id", userID, "session_id", sessionID)

	entities, classification := o.extractAndClassify(query)

	execPlan, err := o.planner.Plan(classification.Primary, entities)
	if err != nil {
		return o.insufficientContextResult(investigationID, classification, entities, startedAt, err, sink)
	}
	sink.Send(ctx, progress.Event{Kind: progress.EventPlanCreated, InvestigationID: investigationID, Plan: &execPlan})

	g := graph.New()
	stageResults := o.executor.Execute(ctx, investigationID, execPlan, g, sink)
	g.Freeze()

	var anomalies []models.Anomaly
	if models.AnalyzableIntents[classification.Primary] {
		anomalies = o.runAnalyzers(ctx, investigationID, g, sink)
	}

	summary := g.Summary()
	status, failure := terminalStatus(ctx, execPlan, stageResults)

	result := models.InvestigationResult{
		InvestigationID:  investigationID,
		Intent:           classification.Primary,
		Confidence:       classification.Confidence,
		Entities:         entities,
		Plan:             execPlan,
		StageResults:     stageResults,
		GraphSummary:     summary,
		Anomalies:        anomalies,
		TotalDurationSec: time.Since(startedAt).Seconds(),
		Status:           status,
		Traceability:     traceability(stageResults, startedAt, sink),
		Error:            failure,
	}
	sink.Send(ctx, progress.Event{Kind: progress.EventInvestigationCompleted, InvestigationID: investigationID, Summary: &summary})
	slog.Info("investigation completed", "investigation_id", investigationID, "status", status, "duration_sec", result.TotalDurationSec)
	return result
}

// extractAndClassify runs entity extraction and intent classification
// concurrently (spec §4.9 step 2): neither depends on the other's output
// except for the CNPJ-presence precedence rule inside Classify, which only
// needs the already-extracted entities, so extraction always finishes
// before classification consumes it.
func (o *Orchestrator) extractAndClassify(query string) (models.Entities, models.IntentClassification) {
	entities := o.extractor.Extract(query, time.Now())
	return entities, o.classifier.Classify(query, entities)
}

// insufficientContextResult builds the short-circuited Completed result
// spec §4.9 step 3 requires: a single general_info stage detail carrying
// the missing-field list, no anomalies.
func (o *Orchestrator) insufficientContextResult(investigationID string, classification models.IntentClassification, entities models.Entities, startedAt time.Time, planErr error, sink progress.Sink) models.InvestigationResult {
	// planErr.Error() already names the missing fields (InsufficientContextError
	// formats Intent/MissingStage/MissingFields into its message).
	errRecord := models.ErrorRecord{Kind: models.ErrorKindInvalidRequest, Message: sanitize.Sanitize(planErr.Error())}
	detail := models.StageDetail{
		StageID: generalInfoStageID,
		Status:  models.StageStatusSkipped,
		Errors:  []models.ErrorRecord{errRecord},
	}

	sink.Send(context.Background(), progress.Event{Kind: progress.EventError, InvestigationID: investigationID, Where: "plan", ErrorKind: models.ErrorKindInvalidRequest})

	return models.InvestigationResult{
		InvestigationID:  investigationID,
		Intent:           classification.Primary,
		Confidence:       classification.Confidence,
		Entities:         entities,
		TotalDurationSec: time.Since(startedAt).Seconds(),
		Status:           models.InvestigationCompleted,
		Traceability: models.Traceability{
			StageDetails: []models.StageDetail{detail},
			StartedAt:    startedAt,
			DroppedEvents: sink.Dropped(),
		},
	}
}

// runAnalyzers fans out the fixed analyzer set under analyzerConcurrency
// (spec §4.9 step 6 / §5), recovering a panicking analyzer into an Error
// event rather than letting it crash the process (spec §4.9 failure
// semantics).
func (o *Orchestrator) runAnalyzers(ctx context.Context, investigationID string, g *graph.Graph, sink progress.Sink) []models.Anomaly {
	analyzers := anomaly.Analyzers()
	sem := make(chan struct{}, o.analyzerConcurrency)
	resultsCh := make(chan []models.Anomaly, len(analyzers))

	var wg sync.WaitGroup
	for _, az := range analyzers {
		wg.Add(1)
		sem <- struct{}{}
		go func(az anomaly.Analyzer) {
			defer wg.Done()
			defer func() { <-sem }()
			found := o.safeAnalyze(az, g)
			sink.Send(ctx, progress.Event{Kind: progress.EventAnalyzerCompleted, InvestigationID: investigationID, AnalyzerKind: az.Kind(), AnomalyCount: len(found)})
			resultsCh <- found
		}(az)
	}
	wg.Wait()
	close(resultsCh)

	var anomalies []models.Anomaly
	for found := range resultsCh {
		anomalies = append(anomalies, found...)
	}
	return anomalies
}

// safeAnalyze converts a panicking analyzer into an empty result instead of
// crashing the process (spec §4.9: "Panics/bugs inside a stage or analyzer
// are caught ... they must never terminate the process").
func (o *Orchestrator) safeAnalyze(az anomaly.Analyzer, g *graph.Graph) (found []models.Anomaly) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
		}
	}()
	return az.Analyze(g, o.anomalyCfg)
}

// terminalStatus derives InvestigationStatus and an optional terminal
// ErrorRecord from the stage results and plan (spec §7 propagation policy):
// a critical stage's terminal failure fails the whole investigation;
// context cancellation does too; everything else completes.
func terminalStatus(ctx context.Context, execPlan models.ExecutionPlan, stageResults []models.StageResult) (models.InvestigationStatus, *models.ErrorRecord) {
	if ctx.Err() != nil {
		return models.InvestigationFailed, &models.ErrorRecord{Kind: models.ErrorKindCancelled, Message: "investigation cancelled"}
	}
	byID := make(map[string]models.StageResult, len(stageResults))
	for _, r := range stageResults {
		byID[r.StageID] = r
	}
	for _, stage := range execPlan.Stages {
		if !stage.Critical {
			continue
		}
		r, ran := byID[stage.ID]
		if !ran || r.Status == models.StageStatusFailed {
			return models.InvestigationFailed, &models.ErrorRecord{
				Kind:    models.ErrorKindInternalError,
				Message: fmt.Sprintf("critical stage %q did not complete successfully", stage.ID),
			}
		}
	}
	return models.InvestigationCompleted, nil
}

// traceability assembles the sanitized provenance bundle attached to every
// terminal result (spec §3).
func traceability(stageResults []models.StageResult, startedAt time.Time, sink progress.Sink) models.Traceability {
	sources := map[string]bool{}
	var perStage [][]string
	var details []models.StageDetail
	totalCalls := 0

	for _, r := range stageResults {
		perStage = append(perStage, r.EndpointsInvoked)
		// spec §8: DataSources is the union of endpoints over stages that
		// actually produced data (completed or partial) — a failed stage's
		// attempted endpoints must not appear here.
		if r.Status == models.StageStatusCompleted || r.Status == models.StageStatusPartial {
			for _, ep := range r.EndpointsInvoked {
				sources[ep] = true
			}
		}
		totalCalls += r.Attempts

		sanitizedErrs := make([]models.ErrorRecord, len(r.Errors))
		for i, e := range r.Errors {
			sanitizedErrs[i] = models.ErrorRecord{EndpointID: e.EndpointID, Kind: e.Kind, Message: sanitize.Sanitize(e.Message)}
		}
		details = append(details, models.StageDetail{
			StageID:   r.StageID,
			Status:    r.Status,
			Duration:  r.Duration,
			Endpoints: r.EndpointsInvoked,
			Errors:    sanitizedErrs,
		})
	}

	dataSources := make([]string, 0, len(sources))
	for s := range sources {
		dataSources = append(dataSources, s)
	}
	sort.Strings(dataSources)

	return models.Traceability{
		DataSources:        dataSources,
		APIsCalledPerStage: perStage,
		StageDetails:       details,
		TotalAPICalls:      totalCalls,
		StartedAt:          startedAt,
		DroppedEvents:      sink.Dropped(),
	}
}

func newInvestigationID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
