package synthesis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-synthesis-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const logModule = "SYNTHESIS"

// State is a step of a single synthesis run
type State string

const (
	StateReceived          State = "RECEIVED"
	StateClassified        State = "CLASSIFIED"
	StateWeighted          State = "WEIGHTED"
	StateDispatching       State = "DISPATCHING"
	StateJoined            State = "JOINED"
	StateSynthesized       State = "SYNTHESIZED"
	StateAssessed          State = "ASSESSED"
	StateCompleted         State = "COMPLETED"
	StateFallbackCompleted State = "FALLBACK_COMPLETED"
)

// Event is emitted once per finished synthesis
type Event struct {
	SynthesisID          string
	Category             ContextCategory
	Elapsed              time.Duration
	Metrics              QualityMetrics
	IsFallback           bool
	ContributingChannels []Channel
	FailedChannels       []Channel
	CompletedAt          time.Time
}

// Observer receives completion events. Calls happen off the response path.
type Observer interface {
	OnSynthesisCompleted(evt Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(evt Event)

func (f ObserverFunc) OnSynthesisCompleted(evt Event) { f(evt) }

// Option configures an Orchestrator
type Option func(*Orchestrator)

func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(o *Orchestrator) { o.ids = g }
}

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

func WithLogger(l logger.ILogger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// Orchestrator is the public entry point of the engine
type Orchestrator struct {
	tuning *Tuning

	classifier  *classifier
	weights     *weightCalculator
	dispatcher  *dispatcher
	synthesizer *synthesizer
	assessor    *assessor

	clock    Clock
	ids      IDGenerator
	observer Observer
	logger   logger.ILogger
	tracer   trace.Tracer
}

// NewOrchestrator validates the tuning and wires the components.
// A *ConfigurationError here is meant to abort startup.
func NewOrchestrator(tuning *Tuning, backends map[Channel]Backend, opts ...Option) (*Orchestrator, error) {
	if tuning == nil {
		return nil, &ConfigurationError{Field: "tuning", Reason: "missing"}
	}
	if err := tuning.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		tuning: tuning,
		clock:  SystemClock(),
		ids:    UUIDGenerator(),
		logger: logger.NewNopLogger(),
		tracer: otel.Tracer("ai-synthesis-be/synthesis"),
	}
	for _, opt := range opts {
		opt(o)
	}

	// private copy so later changes to the caller's map cannot race with dispatch
	owned := make(map[Channel]Backend, len(backends))
	for ch, b := range backends {
		owned[ch] = b
	}

	o.classifier = newClassifier(tuning.Keywords)
	o.weights = newWeightCalculator(tuning)
	o.dispatcher = newDispatcher(owned, o.tracer)
	o.synthesizer = newSynthesizer(tuning)
	o.assessor = newAssessor(tuning)
	return o, nil
}

// run carries per-request state; nothing here is shared between requests
type run struct {
	id       string
	started  time.Time
	state    State
	category ContextCategory
	weights  WeightVector
	results  map[Channel]ChannelResult
}

// Synthesize never fails: every terminal state yields a response, fallback ones are flagged
func (o *Orchestrator) Synthesize(ctx context.Context, req Request) (resp *SynthesizedResponse) {
	r := &run{
		id:       o.ids.NewID(),
		started:  o.clock.Now(),
		state:    StateReceived,
		category: CategoryBalanced,
	}

	ctx, span := o.tracer.Start(ctx, "synthesis.synthesize",
		trace.WithAttributes(attribute.String("synthesis.id", r.id)))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("synthesis panicked in state %s: %v", r.state, rec)
			span.RecordError(err)
			resp = o.fallback(r, err)
		}
		span.SetAttributes(
			attribute.String("synthesis.category", string(resp.Category)),
			attribute.Bool("synthesis.fallback", resp.IsFallback),
		)
		if resp.IsFallback {
			span.SetStatus(codes.Error, "fallback synthesis")
		}
		o.emit(r, resp)
	}()

	req = cloneRequest(req)

	r.category = o.classifier.classify(req.Text)
	o.transition(r, StateClassified)

	r.weights = o.weights.computeWeights(r.category, req.AuxSignals)
	o.transition(r, StateWeighted)

	o.transition(r, StateDispatching)
	r.results = o.dispatcher.dispatch(ctx, req, o.tuning.DispatchTimeout, AllChannels)
	o.transition(r, StateJoined)
	o.logFailures(r)

	contributing := contributingChannels(r.results)
	if len(contributing) == 0 {
		return o.fallback(r, errors.New("all channels failed"))
	}

	doc, err := o.synthesizer.compose(r.results, r.weights, req.Text)
	if err != nil {
		return o.fallback(r, err)
	}
	content := doc.text
	o.transition(r, StateSynthesized)

	metrics := o.assessor.assessDocument(doc, r.results, r.weights)
	o.transition(r, StateAssessed)

	resp = &SynthesizedResponse{
		Content:              content,
		ContributingChannels: contributing,
		Weights:              r.weights,
		QualityMetrics:       metrics,
		SynthesisID:          r.id,
		CreatedAt:            r.started,
		Category:             r.category,
		Results:              orderedResults(r.results),
	}
	o.transition(r, StateCompleted)

	o.logger.Info(logModule, "Synthesis completed", map[string]interface{}{
		"synthesis_id":      r.id,
		"category":          r.category,
		"channels":          contributing,
		"synthesis_quality": metrics.SynthesisQuality,
		"coherence":         metrics.Coherence,
		"harmony":           metrics.Harmony,
	})
	return resp
}

// fallback builds the FallbackCompleted response with baseline metrics
func (o *Orchestrator) fallback(r *run, cause error) *SynthesizedResponse {
	o.transition(r, StateFallbackCompleted)
	o.logger.Warn(logModule, "Synthesis fell back", map[string]interface{}{
		"synthesis_id": r.id,
		"category":     r.category,
		"error":        cause.Error(),
	})

	weights := r.weights
	if weights == nil {
		weights = normalize(cloneWeights(o.tuning.BaseWeights[CategoryBalanced]))
	}

	return &SynthesizedResponse{
		Content:              o.tuning.FallbackContent,
		ContributingChannels: []Channel{},
		Weights:              weights,
		QualityMetrics:       o.tuning.FallbackMetrics,
		SynthesisID:          r.id,
		CreatedAt:            r.started,
		IsFallback:           true,
		Category:             r.category,
		Results:              orderedResults(r.results),
	}
}

func (o *Orchestrator) transition(r *run, next State) {
	o.logger.Debug(logModule, "State transition", map[string]interface{}{
		"synthesis_id": r.id,
		"from":         r.state,
		"to":           next,
	})
	r.state = next
}

func (o *Orchestrator) logFailures(r *run) {
	for _, ch := range AllChannels {
		res, ok := r.results[ch]
		if !ok || !res.IsFallback {
			continue
		}
		o.logger.Warn(logModule, "Channel failed, using fallback", map[string]interface{}{
			"synthesis_id": r.id,
			"channel":      ch,
			"kind":         res.ErrorKind,
			"error":        res.ErrorMessage,
			"latency_ms":   res.LatencyMs,
		})
	}
}

// emit hands the event to the observer on its own goroutine
func (o *Orchestrator) emit(r *run, resp *SynthesizedResponse) {
	if o.observer == nil {
		return
	}

	completed := o.clock.Now()
	evt := Event{
		SynthesisID:          resp.SynthesisID,
		Category:             resp.Category,
		Elapsed:              completed.Sub(r.started),
		Metrics:              resp.QualityMetrics,
		IsFallback:           resp.IsFallback,
		ContributingChannels: append([]Channel(nil), resp.ContributingChannels...),
		FailedChannels:       failedChannels(r.results),
		CompletedAt:          completed,
	}

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				o.logger.Error(logModule, "Observer panicked", map[string]interface{}{
					"synthesis_id": evt.SynthesisID,
					"error":        fmt.Sprint(rec),
				})
			}
		}()
		o.observer.OnSynthesisCompleted(evt)
	}()
}

func contributingChannels(results map[Channel]ChannelResult) []Channel {
	out := []Channel{}
	for _, ch := range AllChannels {
		if res, ok := results[ch]; ok && !res.IsFallback {
			out = append(out, ch)
		}
	}
	return out
}

func failedChannels(results map[Channel]ChannelResult) []Channel {
	var out []Channel
	for _, ch := range AllChannels {
		if res, ok := results[ch]; ok && res.IsFallback {
			out = append(out, ch)
		}
	}
	return out
}

func orderedResults(results map[Channel]ChannelResult) []ChannelResult {
	out := make([]ChannelResult, 0, len(results))
	for _, ch := range AllChannels {
		if res, ok := results[ch]; ok {
			out = append(out, res)
		}
	}
	return out
}

func cloneRequest(req Request) Request {
	signals := make(map[string]float64, len(req.AuxSignals))
	for k, v := range req.AuxSignals {
		signals[k] = v
	}
	return Request{Text: req.Text, AuxSignals: signals}
}

func cloneWeights(w WeightVector) WeightVector {
	out := make(WeightVector, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
