package synthesis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace/noop"
)

var testTracer = noop.NewTracerProvider().Tracer("synthesis-test")

// staticBackend answers with fixed content and quality
func staticBackend(content string, quality float64) Backend {
	return BackendFunc(func(ctx context.Context, req Request) (Generation, error) {
		return Generation{Content: content, Quality: QualityScore(quality)}, nil
	})
}

func failingBackend(err error) Backend {
	return BackendFunc(func(ctx context.Context, req Request) (Generation, error) {
		return Generation{}, err
	})
}

func panickingBackend() Backend {
	return BackendFunc(func(ctx context.Context, req Request) (Generation, error) {
		panic("boom")
	})
}

// hangingBackend ignores ctx and blocks until release is closed, then answers late
func hangingBackend(release <-chan struct{}) Backend {
	return BackendFunc(func(ctx context.Context, req Request) (Generation, error) {
		<-release
		return Generation{Content: "late answer"}, nil
	})
}

var errBackendDown = errors.New("backend down")

type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("syn-%d", s.n)
}

// channelObserver forwards events to a buffered channel
type channelObserver chan Event

func (c channelObserver) OnSynthesisCompleted(evt Event) { c <- evt }
