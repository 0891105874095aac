package processing

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"github.com/Mhdiwe/Viral/assets"
	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/render"
	"github.com/Mhdiwe/Viral/storage"
	"github.com/Mhdiwe/Viral/timeline"
)

// VisualsRequest selects background visuals.
type VisualsRequest struct {
	// Source defaults to stock when URLs are given, otherwise to the configured source.
	Source config.ImageSource `json:"image_source,omitempty"`
	Count  int                `json:"image_count,omitempty"`
	Query  string             `json:"query,omitempty"`
	URLs   []string           `json:"asset_urls,omitempty"`
}

// Visuals fetches the background assets for vo.
func (p *Pipeline) Visuals(ctx context.Context, req VisualsRequest, vo *Voiceover) ([]timeline.VisualAsset, error) {
	src := req.Source
	if src == "" {
		src = p.cfg.ImageSource
		if len(req.URLs) > 0 {
			src = config.ImagesStock
		}
	}
	if err := src.Validate(); err != nil {
		return nil, &Error{Kind: KindInvalidInput, Op: "visuals", Err: err}
	}
	source, ok := p.deps.Sources[src]
	if !ok {
		return nil, invalid("image source %q is not configured", src)
	}

	count := req.Count
	if count <= 0 {
		count = p.cfg.ImageCount
	}
	out, err := source.Fetch(ctx, assets.Request{Script: vo.Script, Query: req.Query, Count: count, URLs: req.URLs})
	if err != nil {
		return nil, classify("fetch visuals", KindUpstream, err)
	}
	slog.Info("visuals ready", "source", src, "assets", len(out))
	return out, nil
}

// Compose lays out vo and visuals. An empty musicURL uses the configured bed.
func (p *Pipeline) Compose(vo *Voiceover, visuals []timeline.VisualAsset, musicURL string) timeline.RenderSpec {
	opts := timeline.DefaultOptions()
	opts.Output = p.cfg.Output
	opts.MusicVolume = p.cfg.MusicVolume
	opts.VoiceURL = vo.AudioURL
	opts.MusicURL = musicURL
	if opts.MusicURL == "" {
		opts.MusicURL = p.cfg.MusicURL
	}
	return timeline.Layout(vo.Segments, vo.Duration, visuals, opts)
}

func (p *Pipeline) renderer(backend config.RenderBackend) (config.RenderBackend, render.Renderer, error) {
	if backend == "" {
		backend = p.cfg.RenderBackend
	}
	r, ok := p.deps.Renderers[backend]
	if !ok {
		return backend, nil, invalid("render backend %q is not configured", backend)
	}
	return backend, r, nil
}

// Render starts spec on backend (the configured one when empty). Local output
// is uploaded to storage and the file removed.
func (p *Pipeline) Render(ctx context.Context, backend config.RenderBackend, spec timeline.RenderSpec) (render.Result, error) {
	backend, r, err := p.renderer(backend)
	if err != nil {
		return render.Result{}, err
	}
	res, err := r.Render(ctx, spec)
	if err != nil {
		return res, classify("render", KindUpstream, err)
	}
	slog.Info("render started", "backend", backend, "id", res.ID, "status", res.Status)
	return p.publish(ctx, res)
}

// RenderStatus polls a job on backend.
func (p *Pipeline) RenderStatus(ctx context.Context, backend config.RenderBackend, id string) (render.Result, error) {
	_, r, err := p.renderer(backend)
	if err != nil {
		return render.Result{}, err
	}
	res, err := r.Status(ctx, id)
	if err != nil {
		return res, classify("render status", KindUpstream, err)
	}
	return p.publish(ctx, res)
}

// WaitRender blocks until job id on backend finishes.
func (p *Pipeline) WaitRender(ctx context.Context, backend config.RenderBackend, id string) (render.Result, error) {
	_, r, err := p.renderer(backend)
	if err != nil {
		return render.Result{}, err
	}
	res, err := render.Wait(ctx, r, id, rate.NewLimiter(rate.Every(p.pollEvery), 1))
	if err != nil {
		return res, classify("wait for render", KindUpstream, err)
	}
	return p.publish(ctx, res)
}

func (p *Pipeline) publish(ctx context.Context, res render.Result) (render.Result, error) {
	if res.Status != render.StatusDone || res.Path == "" || res.URL != "" {
		return res, nil
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		return res, classify("read render output", KindInternal, err)
	}
	obj, err := p.deps.Store.Upload(ctx, storage.ObjectName(p.cfg.Storage.Prefix+"/renders", "video", ".mp4"), "video/mp4", data)
	if err != nil {
		return res, classify("upload render", KindStorage, err)
	}
	if err := os.Remove(res.Path); err != nil {
		slog.Warn("could not remove local render", "path", res.Path, "error", err)
	}
	res.URL = obj.PublicURL
	res.Path = ""
	return res, nil
}

// ProduceRequest runs every stage for one video.
type ProduceRequest struct {
	Voiceover VoiceoverRequest     `json:"voiceover"`
	Visuals   VisualsRequest       `json:"visuals"`
	MusicURL  string               `json:"music_url,omitempty"`
	Backend   config.RenderBackend `json:"render_backend,omitempty"`
	// Wait blocks until an asynchronous render finishes.
	Wait bool `json:"wait,omitempty"`
}

// Production is the outcome of Produce.
type Production struct {
	Voiceover *Voiceover             `json:"voiceover"`
	Visuals   []timeline.VisualAsset `json:"visuals"`
	Spec      timeline.RenderSpec    `json:"render_spec"`
	Render    render.Result          `json:"render"`
}

// Produce runs voiceover, visuals, layout and render in sequence.
func (p *Pipeline) Produce(ctx context.Context, req ProduceRequest) (*Production, error) {
	vo, err := p.Voiceover(ctx, req.Voiceover)
	if err != nil {
		return nil, err
	}
	visuals, err := p.Visuals(ctx, req.Visuals, vo)
	if err != nil {
		return &Production{Voiceover: vo}, err
	}
	prod := &Production{Voiceover: vo, Visuals: visuals, Spec: p.Compose(vo, visuals, req.MusicURL)}

	prod.Render, err = p.Render(ctx, req.Backend, prod.Spec)
	if err != nil {
		return prod, err
	}
	if req.Wait && !prod.Render.Status.Terminal() {
		prod.Render, err = p.WaitRender(ctx, req.Backend, prod.Render.ID)
		if err != nil {
			return prod, err
		}
	}
	if prod.Render.Status == render.StatusFailed {
		return prod, &Error{Kind: KindUpstream, Op: "render", Err: fmt.Errorf("render %s failed: %s", prod.Render.ID, prod.Render.Error)}
	}
	return prod, nil
}
