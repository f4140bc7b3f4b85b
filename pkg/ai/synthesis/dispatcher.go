package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// dispatcher fans a request out to one backend per channel
type dispatcher struct {
	backends map[Channel]Backend
	tracer   trace.Tracer
}

func newDispatcher(backends map[Channel]Backend, tracer trace.Tracer) *dispatcher {
	return &dispatcher{backends: backends, tracer: tracer}
}

// dispatch starts every channel call at once and joins when all have answered or the
// timeout fires. Channels still outstanding at that point get a timeout fallback and their
// late answers are dropped. Backend errors never cancel sibling calls.
func (d *dispatcher) dispatch(ctx context.Context, req Request, timeout time.Duration, channels []Channel) map[Channel]ChannelResult {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pending := make(map[Channel]bool, len(channels))
	for _, ch := range channels {
		pending[ch] = true
	}

	// buffered so abandoned goroutines can always deliver and exit
	outcomes := make(chan ChannelResult, len(pending))
	start := time.Now()
	for ch := range pending {
		go d.call(callCtx, ch, req, start, outcomes)
	}

	results := make(map[Channel]ChannelResult, len(pending))
	accept := func(res ChannelResult) {
		if pending[res.Channel] {
			delete(pending, res.Channel)
			results[res.Channel] = res
		}
	}

	for len(pending) > 0 {
		select {
		case res := <-outcomes:
			accept(res)
		case <-callCtx.Done():
			// take anything that already landed before giving up on the rest
		drain:
			for len(pending) > 0 {
				select {
				case res := <-outcomes:
					accept(res)
				default:
					break drain
				}
			}

			cause := NewBackendError(KindTimeout, fmt.Sprintf("no response within %s", timeout), callCtx.Err())
			if errors.Is(callCtx.Err(), context.Canceled) {
				cause = NewBackendError(KindCancelled, "request cancelled before backend answered", callCtx.Err())
			}
			elapsed := time.Since(start).Milliseconds()
			for ch := range pending {
				results[ch] = fallbackResult(ch, cause, elapsed)
			}
			pending = nil
		}
	}

	return results
}

// call runs a single backend and always delivers exactly one result on out
func (d *dispatcher) call(ctx context.Context, ch Channel, req Request, start time.Time, out chan<- ChannelResult) {
	var res ChannelResult
	defer func() {
		if r := recover(); r != nil {
			res = fallbackResult(ch, NewBackendError(KindPanic, fmt.Sprintf("backend panicked: %v", r), nil), time.Since(start).Milliseconds())
		}
		out <- res
	}()

	backend, ok := d.backends[ch]
	if !ok || backend == nil {
		res = fallbackResult(ch, NewBackendError(KindNotConfigured, "no backend configured for channel", nil), 0)
		return
	}

	spanCtx, span := d.tracer.Start(ctx, "synthesis.channel",
		trace.WithAttributes(attribute.String("synthesis.channel", string(ch))))
	defer span.End()

	gen, err := backend.Generate(spanCtx, req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		be := AsBackendError(err)
		span.RecordError(be)
		span.SetStatus(codes.Error, string(be.Kind))
		res = fallbackResult(ch, be, latency)
		return
	}

	if strings.TrimSpace(gen.Content) == "" {
		be := NewBackendError(KindEmptyContent, "backend returned empty content", nil)
		span.SetStatus(codes.Error, string(be.Kind))
		res = fallbackResult(ch, be, latency)
		return
	}

	var quality *float64
	if gen.Quality != nil {
		q := clamp01(*gen.Quality)
		quality = &q
	}

	res = ChannelResult{
		Channel:   ch,
		Content:   strings.TrimSpace(gen.Content),
		Quality:   quality,
		LatencyMs: latency,
	}
}

func fallbackResult(ch Channel, cause *BackendError, latencyMs int64) ChannelResult {
	return ChannelResult{
		Channel:      ch,
		Content:      fmt.Sprintf("[%s unavailable]", ch.Label()),
		IsFallback:   true,
		ErrorKind:    string(cause.Kind),
		ErrorMessage: cause.Error(),
		LatencyMs:    latencyMs,
	}
}
