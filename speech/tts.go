package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnexpectedContent is returned when the provider answers with something
// other than MP3 audio.
var ErrUnexpectedContent = errors.New("tts: unexpected content type")

// ErrMissingAPIKey is returned when neither the call nor the client has a key.
var ErrMissingAPIKey = errors.New("fish.audio: no API key configured")

// StatusError is a non-2xx answer from an upstream API.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Code, e.Body)
}

// Synthesizer turns text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, apiKey string) ([]byte, error)
}

// FishAudio is a client for the Fish.audio text-to-speech API.
type FishAudio struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewFishAudio creates a client. apiKey is used when a call does not supply its own.
func NewFishAudio(baseURL, apiKey string, timeout time.Duration) *FishAudio {
	return &FishAudio{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type fishRequest struct {
	Text        string `json:"text"`
	Format      string `json:"format"`
	ReferenceID string `json:"reference_id"`
}

// Synthesize requests MP3 speech for text spoken by the provider voice.
func (f *FishAudio) Synthesize(ctx context.Context, text, voice, apiKey string) ([]byte, error) {
	if apiKey == "" {
		apiKey = f.APIKey
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(fishRequest{Text: text, Format: "mp3", ReferenceID: voice})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.BaseURL+"/v1/tts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fish.audio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Service: "fish.audio", Code: resp.StatusCode, Body: string(body)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "audio/mpeg") {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("%w %q: %s", ErrUnexpectedContent, contentType, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedContent)
	}
	return audio, nil
}
