package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mhdiwe/Viral/timeline"
)

// Remote submits edits to a Shotstack-compatible render API.
type Remote struct {
	Endpoint    string
	APIKey      string
	CallbackURL string
	HTTP        *http.Client
}

// NewRemote creates a client for endpoint, e.g. https://api.shotstack.io/edit/stage.
func NewRemote(endpoint, apiKey, callbackURL string) *Remote {
	return &Remote{
		Endpoint:    strings.TrimRight(endpoint, "/"),
		APIKey:      apiKey,
		CallbackURL: callbackURL,
		HTTP:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Edit is the render request document.
type Edit struct {
	Timeline EditTimeline `json:"timeline"`
	Output   EditOutput   `json:"output"`
	Callback string       `json:"callback,omitempty"`
}

type EditTimeline struct {
	Background string      `json:"background"`
	Soundtrack *Soundtrack `json:"soundtrack,omitempty"`
	Tracks     []EditTrack `json:"tracks"`
}

type Soundtrack struct {
	Src    string  `json:"src"`
	Effect string  `json:"effect,omitempty"`
	Volume float64 `json:"volume"`
}

type EditTrack struct {
	Clips []EditClip `json:"clips"`
}

type EditClip struct {
	Asset      EditAsset       `json:"asset"`
	Start      float64         `json:"start"`
	Length     float64         `json:"length"`
	Fit        string          `json:"fit,omitempty"`
	Position   string          `json:"position,omitempty"`
	Transition *EditTransition `json:"transition,omitempty"`
}

type EditAsset struct {
	Type       string   `json:"type"`
	Src        string   `json:"src,omitempty"`
	Text       string   `json:"text,omitempty"`
	Style      string   `json:"style,omitempty"`
	Size       string   `json:"size,omitempty"`
	HTML       string   `json:"html,omitempty"`
	Background string   `json:"background,omitempty"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	Volume     *float64 `json:"volume,omitempty"`
}

type EditTransition struct {
	In string `json:"in,omitempty"`
}

type EditOutput struct {
	Format string   `json:"format"`
	FPS    int      `json:"fps"`
	Size   EditSize `json:"size"`
}

type EditSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BuildEdit translates spec. Tracks are ordered top to bottom: captions,
// visuals, voice.
func BuildEdit(spec timeline.RenderSpec, callback string) Edit {
	o := spec.Output
	edit := Edit{
		Timeline: EditTimeline{Background: "#000000"},
		Output: EditOutput{
			Format: o.Format,
			FPS:    o.FPS,
			Size:   EditSize{Width: o.Width, Height: o.Height},
		},
		Callback: callback,
	}

	if spec.Music != nil && len(spec.Music.Clips) > 0 {
		m := spec.Music.Clips[0]
		edit.Timeline.Soundtrack = &Soundtrack{Src: m.Asset.Src, Effect: "fadeOut", Volume: m.Volume}
	}

	if spec.Subtitles != nil && len(spec.Subtitles.Clips) > 0 {
		var track EditTrack
		for _, c := range spec.Subtitles.Clips {
			track.Clips = append(track.Clips, EditClip{
				Asset:    EditAsset{Type: "title", Text: c.Asset.Text, Style: "subtitle", Size: "small"},
				Start:    c.Start,
				Length:   c.Length,
				Position: "bottom",
			})
		}
		edit.Timeline.Tracks = append(edit.Timeline.Tracks, track)
	}

	var visuals EditTrack
	for _, c := range spec.Visual.Clips {
		clip := EditClip{Start: c.Start, Length: c.Length, Fit: "cover"}
		switch c.Asset.Kind {
		case timeline.AssetImage, timeline.AssetVideo:
			clip.Asset = EditAsset{Type: string(c.Asset.Kind), Src: c.Asset.Src}
		default:
			clip.Asset = EditAsset{Type: "html", HTML: "<p></p>", Background: c.Asset.Color, Width: o.Width, Height: o.Height}
		}
		if c.Transition != "" {
			clip.Transition = &EditTransition{In: c.Transition}
		}
		visuals.Clips = append(visuals.Clips, clip)
	}
	edit.Timeline.Tracks = append(edit.Timeline.Tracks, visuals)

	var voice EditTrack
	for _, c := range spec.Voice.Clips {
		vol := c.Volume
		voice.Clips = append(voice.Clips, EditClip{
			Asset:  EditAsset{Type: "audio", Src: c.Asset.Src, Volume: &vol},
			Start:  c.Start,
			Length: c.Length,
		})
	}
	edit.Timeline.Tracks = append(edit.Timeline.Tracks, voice)

	return edit
}

type apiEnvelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		URL     string `json:"url"`
		Error   string `json:"error"`
		Message string `json:"message"`
	} `json:"response"`
}

// Render submits spec and returns the queued job.
func (r *Remote) Render(ctx context.Context, spec timeline.RenderSpec) (Result, error) {
	body, err := json.Marshal(BuildEdit(spec, r.CallbackURL))
	if err != nil {
		return Result{}, fmt.Errorf("encode edit: %w", err)
	}

	env, err := r.do(ctx, http.MethodPost, r.Endpoint+"/render", body)
	if err != nil {
		return Result{}, err
	}
	if env.Response.ID == "" {
		return Result{}, fmt.Errorf("render API returned no job id: %s", env.Message)
	}

	slog.Info("submitted remote render", "id", env.Response.ID, "duration", spec.Duration)
	return Result{ID: env.Response.ID, Status: StatusQueued}, nil
}

// Status fetches the current state of job id.
func (r *Remote) Status(ctx context.Context, id string) (Result, error) {
	env, err := r.do(ctx, http.MethodGet, r.Endpoint+"/render/"+url.PathEscape(id), nil)
	if err != nil {
		return Result{ID: id}, err
	}
	return Result{
		ID:     id,
		Status: ParseStatus(env.Response.Status),
		URL:    env.Response.URL,
		Error:  env.Response.Error,
	}, nil
}

// ParseStatus maps provider states onto Status.
func ParseStatus(s string) Status {
	switch strings.ToLower(s) {
	case "done":
		return StatusDone
	case "failed":
		return StatusFailed
	case "queued", "":
		return StatusQueued
	default:
		return StatusRendering
	}
}

func (r *Remote) do(ctx context.Context, method, target string, body []byte) (*apiEnvelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", r.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read render API response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("render API returned status %d: %s", resp.StatusCode, tail(string(data), 512))
	}

	var env apiEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode render API response: %w", err)
	}
	return &env, nil
}
