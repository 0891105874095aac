package timeline

import (
	"math"

	"github.com/Mhdiwe/Viral/subtitles"
)

const (
	// minClipLength is the shortest visual clip kept on the track.
	minClipLength = 0.1
	// minCaptionLength is the visible floor for a caption cut off by the end.
	minCaptionLength = 0.2
)

// Layout places segments, visual assets, voice and music on tracks covering
// [0, total]. Callers must pass total > 0.
func Layout(segments []subtitles.Segment, total float64, assets []VisualAsset, opts Options) RenderSpec {
	spec := RenderSpec{
		Duration: total,
		Visual:   visualTrack(total, assets, opts.FillerColor),
		Voice: Track{Clips: []Clip{{
			Asset:  Asset{Kind: AssetAudio, Src: opts.VoiceURL},
			Start:  0,
			Length: total,
			Volume: 1.0,
		}}},
		Output: opts.Output,
	}

	if len(segments) > 0 {
		captions := captionTrack(segments, total)
		spec.Subtitles = &captions
	}

	if opts.MusicURL != "" {
		spec.Music = &Track{Clips: []Clip{{
			Asset:  Asset{Kind: AssetAudio, Src: opts.MusicURL},
			Start:  0,
			Length: total,
			Volume: opts.MusicVolume,
		}}}
	}

	return spec
}

func visualTrack(total float64, assets []VisualAsset, filler string) Track {
	if len(assets) == 0 {
		if filler == "" {
			filler = "#000000"
		}
		return Track{Clips: []Clip{{
			Asset:  Asset{Kind: AssetColor, Color: filler},
			Start:  0,
			Length: total,
		}}}
	}

	n := len(assets)
	clipLength := round2(total / float64(n))
	var clips []Clip
	start := 0.0
	for i, a := range assets {
		length := clipLength
		last := i == n-1 || round2(start+clipLength) >= total
		if last {
			length = round2(total - start)
		}
		if length <= minClipLength {
			// Too short to show; the previous clip runs to the end instead.
			if len(clips) > 0 {
				prev := &clips[len(clips)-1]
				prev.Length = round2(total - prev.Start)
			}
			break
		}

		clip := Clip{
			Asset:  Asset{Kind: a.Kind, Src: a.URL},
			Start:  start,
			Length: length,
		}
		if i > 0 {
			clip.Transition = TransitionFade
		}
		clips = append(clips, clip)

		if last {
			break
		}
		start = round2(start + clipLength)
	}

	if len(clips) == 0 {
		// Even the first clip rounded away; show it for the whole video.
		clips = append(clips, Clip{
			Asset:  Asset{Kind: assets[0].Kind, Src: assets[0].URL},
			Start:  0,
			Length: total,
		})
	}
	return Track{Clips: clips}
}

func captionTrack(segments []subtitles.Segment, total float64) Track {
	var clips []Clip
	prevEnd := 0.0
	for _, s := range segments {
		if s.Start >= total {
			continue
		}
		start := s.Start
		length := s.End - s.Start
		if start+length > total {
			length = total - start
			if length < minCaptionLength {
				start = math.Max(prevEnd, math.Max(0, total-minCaptionLength))
				length = total - start
			}
		}
		if length <= 0 {
			continue
		}
		// Round the end, not the length, so rounding never pushes a caption
		// past total.
		from := round3(start)
		to := round3(math.Min(start+length, total))
		if to > total {
			to = floor3(total)
		}
		length = round3(to - from)
		for length > 0 && from+length > total {
			length = round3(length - 0.001)
		}
		if length <= 0 {
			continue
		}
		clips = append(clips, Clip{
			Asset:  Asset{Kind: AssetTitle, Text: s.Text},
			Start:  from,
			Length: length,
		})
		prevEnd = from + length
	}
	return Track{Clips: clips}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func floor3(v float64) float64 { return math.Floor(v*1000) / 1000 }
