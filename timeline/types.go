package timeline

import "fmt"

// AssetKind identifies what a clip plays.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
	AssetAudio AssetKind = "audio"
	AssetColor AssetKind = "color"
	AssetTitle AssetKind = "title"
)

// TransitionFade marks a clip that fades in over the previous one.
const TransitionFade = "fade"

// VisualAsset references an image or video clip. It has no duration of its own.
type VisualAsset struct {
	Kind   AssetKind `json:"kind"`
	URL    string    `json:"url"`
	Prompt string    `json:"prompt,omitempty"`
}

// Asset is what a clip renders.
type Asset struct {
	Kind  AssetKind `json:"kind"`
	Src   string    `json:"src,omitempty"`
	Color string    `json:"color,omitempty"`
	Text  string    `json:"text,omitempty"`
}

// Clip places an asset on a track.
type Clip struct {
	Asset      Asset   `json:"asset"`
	Start      float64 `json:"start"`
	Length     float64 `json:"length"`
	Transition string  `json:"transition,omitempty"`
	Volume     float64 `json:"volume,omitempty"`
}

// End returns Start + Length.
func (c Clip) End() float64 { return c.Start + c.Length }

// Track is an ordered, non-overlapping list of clips.
type Track struct {
	Clips []Clip `json:"clips"`
}

// Output holds the fixed render parameters.
type Output struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	AspectRatio string `json:"aspect_ratio"`
	FPS         int    `json:"fps"`
	Format      string `json:"format"`
}

// Resolution returns the output size as WxH.
func (o Output) Resolution() string {
	return fmt.Sprintf("%dx%d", o.Width, o.Height)
}

// RenderSpec is everything a render backend needs.
type RenderSpec struct {
	Duration  float64 `json:"duration"`
	Visual    Track   `json:"visual"`
	Voice     Track   `json:"voice"`
	Subtitles *Track  `json:"subtitles,omitempty"`
	Music     *Track  `json:"music,omitempty"`
	Output    Output  `json:"output"`
}

// Options configures Layout.
type Options struct {
	VoiceURL string
	// MusicURL is optional; no music track is produced without it.
	MusicURL    string
	MusicVolume float64
	// FillerColor paints the background when there are no visual assets.
	FillerColor string
	Output      Output
}

// DefaultOutput is the portrait 1080x1920 30fps policy.
func DefaultOutput() Output {
	return Output{Width: 1080, Height: 1920, AspectRatio: "9:16", FPS: 30, Format: "mp4"}
}

// DefaultOptions returns Options with the service defaults and no media.
func DefaultOptions() Options {
	return Options{
		MusicVolume: 0.12,
		FillerColor: "#000000",
		Output:      DefaultOutput(),
	}
}
