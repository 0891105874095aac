package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/Mhdiwe/Viral/subtitles"
	"github.com/Mhdiwe/Viral/timeline"
)

const maxFade = 0.5

// Local renders with the ffmpeg binary into OutDir.
type Local struct {
	FFmpegPath string
	OutDir     string
}

// NewLocal creates a renderer writing into outDir (the system temp dir when empty).
func NewLocal(ffmpegPath, outDir string) *Local {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if outDir == "" {
		outDir = os.TempDir()
	}
	return &Local{FFmpegPath: ffmpegPath, OutDir: outDir}
}

func (l *Local) outputPath(id string) string {
	return filepath.Join(l.OutDir, "render_"+id+".mp4")
}

// Render encodes spec synchronously and returns the output file path.
func (l *Local) Render(ctx context.Context, spec timeline.RenderSpec) (Result, error) {
	id := uuid.NewString()
	res := Result{ID: id, Status: StatusFailed}

	if err := os.MkdirAll(l.OutDir, 0o755); err != nil {
		return res, errors.Wrap(err, "create output dir")
	}
	work, err := os.MkdirTemp(l.OutDir, "render_work_")
	if err != nil {
		return res, errors.Wrap(err, "create work dir")
	}
	defer os.RemoveAll(work)

	srtPath := ""
	if spec.Subtitles != nil && len(spec.Subtitles.Clips) > 0 {
		srtPath = filepath.Join(work, "captions.srt")
		if err := os.WriteFile(srtPath, []byte(CaptionsSRT(*spec.Subtitles)), 0o644); err != nil {
			return res, errors.Wrap(err, "write captions")
		}
	}

	out := l.outputPath(id)
	args, err := Args(spec, srtPath, out)
	if err != nil {
		return res, err
	}

	slog.Info("starting local render", "id", id, "duration", spec.Duration, "clips", len(spec.Visual.Clips))
	cmd := exec.CommandContext(ctx, l.FFmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		res.Error = tail(string(output), 800)
		return res, errors.Wrapf(err, "ffmpeg failed: %s", res.Error)
	}

	slog.Info("local render complete", "id", id, "path", out)
	res.Status = StatusDone
	res.Path = out
	return res, nil
}

// Status reports whether a local output exists for id.
func (l *Local) Status(_ context.Context, id string) (Result, error) {
	path := l.outputPath(id)
	if _, err := os.Stat(path); err != nil {
		return Result{ID: id}, ErrNotFound
	}
	return Result{ID: id, Status: StatusDone, Path: path}, nil
}

// Args builds the ffmpeg command line for spec. srtPath may be empty.
func Args(spec timeline.RenderSpec, srtPath, out string) ([]string, error) {
	if spec.Duration <= 0 {
		return nil, fmt.Errorf("render duration must be positive, got %v", spec.Duration)
	}
	if len(spec.Visual.Clips) == 0 {
		return nil, fmt.Errorf("visual track is empty")
	}
	if len(spec.Voice.Clips) == 0 || spec.Voice.Clips[0].Asset.Src == "" {
		return nil, fmt.Errorf("voice track has no source")
	}

	o := spec.Output
	size := fmt.Sprintf("%d:%d", o.Width, o.Height)

	parts := make([]*ffmpeg.Stream, 0, len(spec.Visual.Clips))
	for _, c := range spec.Visual.Clips {
		v := visualInput(c, o).
			Filter("scale", ffmpeg.Args{size}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
			Filter("crop", ffmpeg.Args{size}).
			Filter("setsar", ffmpeg.Args{"1"}).
			Filter("fps", ffmpeg.Args{strconv.Itoa(o.FPS)}).
			Filter("trim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": secs(c.Length)}).
			Filter("setpts", ffmpeg.Args{"PTS-STARTPTS"})
		if c.Transition == timeline.TransitionFade {
			v = v.Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "in", "st": "0", "d": secs(min(maxFade, c.Length/2))})
		}
		parts = append(parts, v)
	}

	video := parts[0]
	if len(parts) > 1 {
		video = ffmpeg.Filter(parts, "concat", ffmpeg.Args{}, ffmpeg.KwArgs{"n": len(parts), "v": 1, "a": 0})
	}
	if srtPath != "" {
		video = video.Filter("subtitles", ffmpeg.Args{srtPath})
	}

	voice := spec.Voice.Clips[0]
	audio := ffmpeg.Input(voice.Asset.Src).Audio().
		Filter("volume", ffmpeg.Args{secs(voice.Volume)})
	if spec.Music != nil && len(spec.Music.Clips) > 0 {
		m := spec.Music.Clips[0]
		music := ffmpeg.Input(m.Asset.Src, ffmpeg.KwArgs{"stream_loop": "-1"}).Audio().
			Filter("volume", ffmpeg.Args{secs(m.Volume)}).
			Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": secs(spec.Duration)})
		audio = ffmpeg.Filter([]*ffmpeg.Stream{audio, music}, "amix", ffmpeg.Args{},
			ffmpeg.KwArgs{"inputs": 2, "duration": "first", "normalize": 0})
	}

	return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, out, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"pix_fmt":  "yuv420p",
		"r":        strconv.Itoa(o.FPS),
		"c:a":      "aac",
		"b:a":      "128k",
		"t":        secs(spec.Duration),
		"movflags": "+faststart",
	}).OverWriteOutput().GetArgs(), nil
}

func visualInput(c timeline.Clip, o timeline.Output) *ffmpeg.Stream {
	switch c.Asset.Kind {
	case timeline.AssetImage:
		return ffmpeg.Input(c.Asset.Src, ffmpeg.KwArgs{"loop": "1", "t": secs(c.Length)}).Video()
	case timeline.AssetVideo:
		return ffmpeg.Input(c.Asset.Src, ffmpeg.KwArgs{"stream_loop": "-1", "t": secs(c.Length)}).Video()
	default:
		color := c.Asset.Color
		if color == "" {
			color = "black"
		}
		src := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s", color, o.Width, o.Height, o.FPS, secs(c.Length))
		return ffmpeg.Input(src, ffmpeg.KwArgs{"f": "lavfi"}).Video()
	}
}

// CaptionsSRT renders a caption track as SRT.
func CaptionsSRT(track timeline.Track) string {
	segments := make([]subtitles.Segment, 0, len(track.Clips))
	for _, c := range track.Clips {
		segments = append(segments, subtitles.Segment{
			Text:     c.Asset.Text,
			Start:    c.Start,
			End:      c.End(),
			Duration: c.Length,
		})
	}
	return subtitles.FormatSRT(segments)
}

func secs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
