package synthesis

import (
	"context"
)

// Generation is the successful output of a backend call
type Generation struct {
	Content string
	// Quality is the backend's own score in [0,1], nil when it has none
	Quality *float64
}

// Backend produces one channel's partial response.
// Failures must be reported as errors, preferably *BackendError.
type Backend interface {
	Generate(ctx context.Context, req Request) (Generation, error)
}

// BackendFunc adapts a plain function to the Backend interface
type BackendFunc func(ctx context.Context, req Request) (Generation, error)

func (f BackendFunc) Generate(ctx context.Context, req Request) (Generation, error) {
	return f(ctx, req)
}

// QualityScore is a helper for building a Generation with a quality value
func QualityScore(v float64) *float64 {
	return &v
}
