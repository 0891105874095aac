package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/Mhdiwe/Viral/timeline"
)

// Status is the lifecycle state of a render job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRendering Status = "rendering"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// ErrNotFound is returned by Status for unknown job ids.
var ErrNotFound = errors.New("render job not found")

// Result describes a render job. Path is set for local output files, URL for
// hosted output.
type Result struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	URL    string `json:"url,omitempty"`
	Path   string `json:"path,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Renderer turns a RenderSpec into a video.
type Renderer interface {
	Render(ctx context.Context, spec timeline.RenderSpec) (Result, error)
	Status(ctx context.Context, id string) (Result, error)
}

// Wait polls r until job id reaches a terminal status, pacing requests with limiter.
func Wait(ctx context.Context, r Renderer, id string, limiter *rate.Limiter) (Result, error) {
	for {
		if err := limiter.Wait(ctx); err != nil {
			return Result{ID: id}, fmt.Errorf("waiting for render %s: %w", id, err)
		}
		res, err := r.Status(ctx, id)
		if err != nil {
			return res, err
		}
		slog.Debug("render status", "id", id, "status", res.Status)
		if res.Status.Terminal() {
			return res, nil
		}
	}
}
