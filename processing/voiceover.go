package processing

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/Mhdiwe/Viral/speech"
	"github.com/Mhdiwe/Viral/storage"
	"github.com/Mhdiwe/Viral/subtitles"
)

// VoiceoverRequest asks for narration and captions for a script.
type VoiceoverRequest struct {
	ScriptText string `json:"script_text"`
	// VoiceID is a public voice id; unknown or empty ids use the default voice.
	VoiceID string `json:"voice_id"`
	// APIKey overrides the configured TTS key for this call.
	APIKey       string `json:"fish_audio_api_key,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// Duration sources reported on a Voiceover.
const (
	DurationProbed     = "probe"
	DurationTranscript = "transcript"
	DurationEstimated  = "estimate"
)

// Voiceover is stored narration with its caption lines.
type Voiceover struct {
	Script         string              `json:"script_text"`
	ObjectName     string              `json:"object_name"`
	AudioURI       string              `json:"audio_gcs_uri"`
	AudioURL       string              `json:"audio_public_url"`
	Duration       float64             `json:"audio_duration_seconds"`
	DurationSource string              `json:"duration_source"`
	Transcript     string              `json:"transcript"`
	Segments       []subtitles.Segment `json:"srt_segments"`
	SRT            string              `json:"srt"`
}

// Voiceover synthesizes req.ScriptText, stores the audio and aligns caption
// lines to the recognized words. The stored audio is deleted when recognition
// fails.
func (p *Pipeline) Voiceover(ctx context.Context, req VoiceoverRequest) (*Voiceover, error) {
	script := strings.TrimSpace(req.ScriptText)
	if script == "" {
		return nil, invalid("script_text is required")
	}
	language := strings.TrimSpace(req.LanguageCode)
	if language == "" {
		language = p.cfg.Speech.LanguageCode
	}
	voice := p.deps.Voices.Resolve(req.VoiceID)

	audio, err := retry(ctx, "synthesize", p.backoff, func(ctx context.Context) ([]byte, error) {
		return p.deps.Synthesizer.Synthesize(ctx, script, voice, req.APIKey)
	})
	if errors.Is(err, speech.ErrMissingAPIKey) {
		return nil, &Error{Kind: KindInvalidInput, Op: "synthesize speech", Err: err}
	}
	if err != nil {
		return nil, classify("synthesize speech", KindUpstream, err)
	}
	slog.Info("synthesized voiceover", "bytes", len(audio), "voice", voice)

	obj, err := p.deps.Store.Upload(ctx, storage.VoiceoverName(p.cfg.Storage.Prefix), "audio/mpeg", audio)
	if err != nil {
		return nil, classify("upload audio", KindStorage, err)
	}

	probed := p.probe(ctx, audio)

	results, err := p.deps.Transcriber.Transcribe(ctx, obj.URI, language)
	if err != nil {
		p.discard(ctx, obj.Name)
		return nil, classify("transcribe audio", KindUpstream, err)
	}

	vo := &Voiceover{
		Script:     script,
		ObjectName: obj.Name,
		AudioURI:   obj.URI,
		AudioURL:   obj.PublicURL,
		Transcript: subtitles.Transcript(results),
	}

	switch lastWord := subtitles.LastWordEnd(results); {
	case probed > 0:
		vo.Duration, vo.DurationSource = probed, DurationProbed
	case lastWord > 0:
		vo.Duration, vo.DurationSource = lastWord, DurationTranscript
	default:
		vo.Duration = subtitles.EstimateDuration(script, p.cfg.WordsPerSecond, p.cfg.MinDuration)
		vo.DurationSource = DurationEstimated
	}
	vo.Duration = roundMillis(vo.Duration)

	vo.Segments = subtitles.Split(subtitles.Flatten(results), p.cfg.Subtitles)
	if len(vo.Segments) == 0 {
		vo.Segments = subtitles.Fallback(vo.Transcript, vo.Duration)
	}
	if vo.Segments == nil {
		vo.Segments = []subtitles.Segment{}
	}
	vo.SRT = subtitles.FormatSRT(vo.Segments)

	slog.Info("voiceover ready",
		"uri", vo.AudioURI,
		"duration", vo.Duration,
		"duration_source", vo.DurationSource,
		"segments", len(vo.Segments))
	return vo, nil
}

func (p *Pipeline) probe(ctx context.Context, audio []byte) float64 {
	if p.deps.Prober == nil {
		return 0
	}
	d, err := p.deps.Prober.Duration(ctx, audio)
	if err != nil {
		slog.Warn("could not probe audio duration, falling back", "error", err)
		return 0
	}
	return d
}

// discard removes an uploaded object on a context detached from the
// request so cleanup still runs after a timeout.
func (p *Pipeline) discard(ctx context.Context, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := p.deps.Store.Delete(ctx, name); err != nil {
		slog.Error("failed to delete uploaded audio", "object", name, "error", err)
		return
	}
	slog.Info("deleted uploaded audio after failure", "object", name)
}

func roundMillis(v float64) float64 {
	return math.Round(v*1000) / 1000
}
