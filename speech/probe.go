package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober measures audio duration.
type Prober interface {
	Duration(ctx context.Context, audio []byte) (float64, error)
}

// FFProbe measures duration with ffprobe on a temporary copy of the audio.
type FFProbe struct {
	WorkDir string
	Timeout time.Duration
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration writes audio to a temp file and reads the container duration.
func (p *FFProbe) Duration(ctx context.Context, audio []byte) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path := filepath.Join(p.WorkDir, "temp_vo_"+uuid.NewString()+".mp3")
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return 0, fmt.Errorf("stage audio for probe: %w", err)
	}
	defer os.Remove(path)

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	out, err := ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeDuration([]byte(out))
}

func parseProbeDuration(data []byte) (float64, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("ffprobe JSON parse error: %w", err)
	}
	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", probe.Format.Duration, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ffprobe reported non-positive duration %v", d)
	}
	return d, nil
}
