package processing

import (
	"errors"
	"time"

	"github.com/Mhdiwe/Viral/assets"
	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/render"
	"github.com/Mhdiwe/Viral/speech"
	"github.com/Mhdiwe/Viral/storage"
)

// Deps are the collaborators a Pipeline drives. Prober may be nil, in which
// case durations come from the transcript or the script estimate.
type Deps struct {
	Synthesizer speech.Synthesizer
	Store       storage.Store
	Transcriber speech.Transcriber
	Prober      speech.Prober
	Voices      *speech.VoiceTable
	Sources     map[config.ImageSource]assets.Source
	Renderers   map[config.RenderBackend]render.Renderer
}

// Pipeline turns a script into a rendered video.
type Pipeline struct {
	cfg     *config.Config
	deps    Deps
	backoff []time.Duration
	// pollEvery paces render status checks when a caller waits for completion.
	pollEvery time.Duration
}

// NewPipeline validates deps and fills in defaults.
func NewPipeline(cfg *config.Config, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if deps.Synthesizer == nil || deps.Store == nil || deps.Transcriber == nil {
		return nil, errors.New("pipeline: synthesizer, store and transcriber are required")
	}
	if deps.Voices == nil {
		deps.Voices = speech.DefaultVoiceTable()
	}
	if deps.Sources == nil {
		deps.Sources = map[config.ImageSource]assets.Source{}
	}
	if _, ok := deps.Sources[config.ImagesNone]; !ok {
		deps.Sources[config.ImagesNone] = assets.None{}
	}
	return &Pipeline{
		cfg:       cfg,
		deps:      deps,
		backoff:   defaultBackoff,
		pollEvery: 5 * time.Second,
	}, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() *config.Config { return p.cfg }
