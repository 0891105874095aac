package speech

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	speechapi "cloud.google.com/go/speech/apiv1p1beta1"
	"cloud.google.com/go/speech/apiv1p1beta1/speechpb"

	"github.com/Mhdiwe/Viral/subtitles"
)

// Transcriber returns word-timed recognition results for stored audio.
type Transcriber interface {
	Transcribe(ctx context.Context, uri, languageCode string) ([]subtitles.RecognitionResult, error)
}

// GoogleTranscriber runs long-running recognition on Cloud Storage objects.
type GoogleTranscriber struct {
	client          *speechapi.Client
	sampleRateHertz int32
	timeout         time.Duration
}

// NewGoogleTranscriber creates a recognition client using application default credentials.
func NewGoogleTranscriber(ctx context.Context, sampleRateHertz int32, timeout time.Duration) (*GoogleTranscriber, error) {
	client, err := speechapi.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &GoogleTranscriber{client: client, sampleRateHertz: sampleRateHertz, timeout: timeout}, nil
}

// Close releases the underlying connection.
func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}

// Transcribe recognizes the MP3 at uri (gs://bucket/object) with word offsets.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, uri, languageCode string) ([]subtitles.RecognitionResult, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:              speechpb.RecognitionConfig_MP3,
			SampleRateHertz:       g.sampleRateHertz,
			LanguageCode:          languageCode,
			EnableWordTimeOffsets: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: uri},
		},
	}

	slog.Info("sending audio to speech-to-text", "uri", uri, "language", languageCode)
	op, err := g.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("start recognition: %w", err)
	}

	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("wait for recognition: %w", err)
	}
	slog.Info("speech-to-text completed", "results", len(resp.GetResults()))

	return convertResults(resp.GetResults()), nil
}

func convertResults(in []*speechpb.SpeechRecognitionResult) []subtitles.RecognitionResult {
	out := make([]subtitles.RecognitionResult, 0, len(in))
	for _, r := range in {
		var result subtitles.RecognitionResult
		for _, alt := range r.GetAlternatives() {
			a := subtitles.Alternative{
				Transcript: alt.GetTranscript(),
				Confidence: float64(alt.GetConfidence()),
			}
			for _, w := range alt.GetWords() {
				a.Words = append(a.Words, subtitles.TimedWord{
					Text:  w.GetWord(),
					Start: w.GetStartTime().AsDuration().Seconds(),
					End:   w.GetEndTime().AsDuration().Seconds(),
				})
			}
			result.Alternatives = append(result.Alternatives, a)
		}
		out = append(out, result)
	}
	return out
}
