package processing

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/Mhdiwe/Viral/speech"
	"github.com/Mhdiwe/Viral/subtitles"
)

func TestVoiceover_HappyPath(t *testing.T) {
	h := newHarness(fakeProber{d: 2.6})

	vo, err := h.p.Voiceover(context.Background(), VoiceoverRequest{
		ScriptText: "  Hello world. Next sentence  ",
		VoiceID:    "no-such-voice",
		APIKey:     "caller-key",
	})
	if err != nil {
		t.Fatalf("Voiceover: %v", err)
	}

	wantVoice := speech.DefaultVoiceTable().Resolve("")
	if h.synth.voices[0] != wantVoice || h.synth.keys[0] != "caller-key" {
		t.Errorf("synthesize called with voice %q key %q", h.synth.voices[0], h.synth.keys[0])
	}
	if !strings.HasPrefix(vo.AudioURI, "gs://test-bucket/fish-audio-vo/vo_") || !strings.HasSuffix(vo.AudioURI, ".mp3") {
		t.Errorf("AudioURI = %q", vo.AudioURI)
	}
	if vo.AudioURI != h.stt.uri || h.stt.lang != "en-US" {
		t.Errorf("transcriber got %q %q", h.stt.uri, h.stt.lang)
	}
	if vo.Duration != 2.6 || vo.DurationSource != DurationProbed {
		t.Errorf("duration = %v (%s)", vo.Duration, vo.DurationSource)
	}
	want := []subtitles.Segment{
		{Text: "Hello world.", Start: 0.0, End: 1.0, Duration: 1.0},
		{Text: "Next sentence", Start: 1.5, End: 2.4, Duration: 0.9},
	}
	if !reflect.DeepEqual(vo.Segments, want) {
		t.Errorf("Segments = %+v", vo.Segments)
	}
	if vo.SRT != subtitles.FormatSRT(want) {
		t.Errorf("SRT = %q", vo.SRT)
	}
	if vo.Script != "Hello world. Next sentence" {
		t.Errorf("Script = %q", vo.Script)
	}
}

func TestVoiceover_RawReferenceIDPassesThrough(t *testing.T) {
	h := newHarness(fakeProber{d: 2.6})
	raw := "a1b2c3d4e5f60718293a4b5c6d7e8f90"
	if _, err := h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "Hello world.", VoiceID: raw}); err != nil {
		t.Fatalf("Voiceover: %v", err)
	}
	if h.synth.voices[0] != raw {
		t.Errorf("synthesize called with voice %q, want %q", h.synth.voices[0], raw)
	}
}

func TestVoiceover_DurationFallbacks(t *testing.T) {
	h := newHarness(fakeProber{err: errors.New("ffprobe missing")})
	vo, err := h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "Hello world. Next sentence"})
	if err != nil {
		t.Fatalf("Voiceover: %v", err)
	}
	if vo.Duration != 2.4 || vo.DurationSource != DurationTranscript {
		t.Errorf("duration = %v (%s), want last word end", vo.Duration, vo.DurationSource)
	}

	h = newHarness(nil)
	h.stt.results = []subtitles.RecognitionResult{{Alternatives: []subtitles.Alternative{{Transcript: "one two three four five"}}}}
	vo, err = h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "one two three four five"})
	if err != nil {
		t.Fatalf("Voiceover: %v", err)
	}
	if vo.Duration != 3.0 || vo.DurationSource != DurationEstimated {
		t.Errorf("duration = %v (%s), want estimate floor", vo.Duration, vo.DurationSource)
	}
	want := []subtitles.Segment{{Text: "one two three four five", Start: 0, End: 3, Duration: 3}}
	if !reflect.DeepEqual(vo.Segments, want) {
		t.Errorf("fallback segments = %+v", vo.Segments)
	}
}

func TestVoiceover_NoSpeechGivesEmptySegments(t *testing.T) {
	h := newHarness(fakeProber{d: 4})
	h.stt.results = nil
	vo, err := h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "Silence"})
	if err != nil {
		t.Fatalf("Voiceover: %v", err)
	}
	if vo.Segments == nil || len(vo.Segments) != 0 || vo.SRT != "" {
		t.Errorf("expected empty, non-nil segments; got %+v %q", vo.Segments, vo.SRT)
	}
}

func TestVoiceover_InvalidInput(t *testing.T) {
	h := newHarness(nil)
	_, err := h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "   "})
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("kind = %s, err = %v", KindOf(err), err)
	}
	if h.synth.calls != 0 {
		t.Error("synthesizer should not be called")
	}

	h.synth.errs = []error{speech.ErrMissingAPIKey}
	_, err = h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "hi"})
	if KindOf(err) != KindInvalidInput || h.synth.calls != 1 {
		t.Errorf("missing key: kind %s after %d calls", KindOf(err), h.synth.calls)
	}
}

func TestVoiceover_RetriesTransientTTSErrors(t *testing.T) {
	h := newHarness(nil)
	unavailable := &speech.StatusError{Service: "fish.audio", Code: http.StatusServiceUnavailable}
	h.synth.errs = []error{unavailable, unavailable}
	if _, err := h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "hi"}); err != nil {
		t.Fatalf("Voiceover: %v", err)
	}
	if h.synth.calls != 3 {
		t.Errorf("calls = %d, want 3", h.synth.calls)
	}

	h = newHarness(nil)
	h.synth.errs = []error{&speech.StatusError{Service: "fish.audio", Code: http.StatusUnauthorized}}
	_, err := h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "hi"})
	if KindOf(err) != KindUpstream || h.synth.calls != 1 {
		t.Errorf("401: kind %s after %d calls", KindOf(err), h.synth.calls)
	}

	h = newHarness(nil)
	h.synth.errs = []error{unavailable, unavailable, unavailable, unavailable}
	_, err = h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "hi"})
	if KindOf(err) != KindUpstream || h.synth.calls != 4 {
		t.Errorf("exhausted: kind %s after %d calls", KindOf(err), h.synth.calls)
	}
}

func TestVoiceover_StorageFailure(t *testing.T) {
	h := newHarness(nil)
	h.store.uploadErr = errors.New("bucket gone")
	_, err := h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "hi"})
	if KindOf(err) != KindStorage {
		t.Fatalf("kind = %s", KindOf(err))
	}
	if !strings.Contains(err.Error(), "bucket gone") {
		t.Errorf("error should wrap cause: %v", err)
	}
}

func TestVoiceover_TranscriptionFailureDeletesAudio(t *testing.T) {
	h := newHarness(nil)
	h.stt.err = errors.New("recognition quota")
	_, err := h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "hi"})
	if KindOf(err) != KindUpstream {
		t.Fatalf("kind = %s", KindOf(err))
	}
	if len(h.store.deleted) != 1 || len(h.store.uploads) != 0 {
		t.Errorf("deleted %v, remaining %v", h.store.deleted, h.store.uploads)
	}

	h = newHarness(nil)
	h.stt.err = context.DeadlineExceeded
	_, err = h.p.Voiceover(context.Background(), VoiceoverRequest{ScriptText: "hi"})
	if KindOf(err) != KindTimeout || KindOf(err).HTTPStatus() != http.StatusGatewayTimeout {
		t.Errorf("timeout: kind %s", KindOf(err))
	}
	if len(h.store.deleted) != 1 {
		t.Errorf("audio not deleted after timeout")
	}
}
