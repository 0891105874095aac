package platform

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Mhdiwe/Viral/assets"
	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/processing"
	"github.com/Mhdiwe/Viral/render"
	"github.com/Mhdiwe/Viral/speech"
	"github.com/Mhdiwe/Viral/storage"
)

// Services is a pipeline with the clients it owns.
type Services struct {
	Pipeline *processing.Pipeline
	Voices   *speech.VoiceTable
	closers  []func() error
}

// Close releases every client.
func (s *Services) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewServices builds the production pipeline from cfg. Image sources and the
// remote renderer are only wired when their credentials are present.
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	voices, err := speech.LoadVoiceTable(cfg.VoicesFile)
	if err != nil {
		return nil, err
	}
	svc := &Services{Voices: voices}

	store, err := storage.NewGCS(ctx, cfg.Storage.Bucket)
	if err != nil {
		return nil, err
	}
	svc.closers = append(svc.closers, store.Close)

	transcriber, err := speech.NewGoogleTranscriber(ctx, cfg.Speech.SampleRateHertz, cfg.Speech.Timeout)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.closers = append(svc.closers, transcriber.Close)

	sources := map[config.ImageSource]assets.Source{
		config.ImagesNone:  assets.None{},
		config.ImagesStock: assets.NewStock(cfg.Pexels.BaseURL, cfg.Pexels.APIKey),
	}
	if cfg.OpenAI.APIKey != "" {
		sources[config.ImagesGenerated] = assets.NewGenerated(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel, cfg.OpenAI.ImageModel)
	} else {
		slog.Warn("OPENAI_API_KEY not set, generated images are disabled")
	}

	renderers := map[config.RenderBackend]render.Renderer{
		config.RenderLocal: render.NewLocal(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.WorkDir),
	}
	if cfg.Shotstack.APIKey != "" {
		renderers[config.RenderRemote] = render.NewRemote(cfg.Shotstack.Endpoint, cfg.Shotstack.APIKey, cfg.Shotstack.CallbackURL)
	} else {
		slog.Warn("SHOTSTACK_API_KEY not set, remote rendering is disabled")
	}

	svc.Pipeline, err = processing.NewPipeline(cfg, processing.Deps{
		Synthesizer: speech.NewFishAudio(cfg.FishAudio.BaseURL, cfg.FishAudio.APIKey, cfg.FishAudio.Timeout),
		Store:       store,
		Transcriber: transcriber,
		Prober:      &speech.FFProbe{WorkDir: cfg.FFmpeg.WorkDir},
		Voices:      voices,
		Sources:     sources,
		Renderers:   renderers,
	})
	if err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}
