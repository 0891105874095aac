package timeline

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/Mhdiwe/Viral/subtitles"
)

func images(n int) []VisualAsset {
	assets := make([]VisualAsset, n)
	for i := range assets {
		assets[i] = VisualAsset{Kind: AssetImage, URL: "https://img.example/" + string(rune('a'+i)) + ".png"}
	}
	return assets
}

func TestLayout_EvenVisualClips(t *testing.T) {
	spec := Layout(nil, 10.0, images(3), DefaultOptions())

	clips := spec.Visual.Clips
	if len(clips) != 3 {
		t.Fatalf("expected 3 clips, got %d", len(clips))
	}
	wantStarts := []float64{0, 3.33, 6.66}
	wantLengths := []float64{3.33, 3.33, 3.34}
	wantTransitions := []string{"", TransitionFade, TransitionFade}
	for i, c := range clips {
		if c.Start != wantStarts[i] || c.Length != wantLengths[i] {
			t.Errorf("clip %d = [%v +%v], want [%v +%v]", i, c.Start, c.Length, wantStarts[i], wantLengths[i])
		}
		if c.Transition != wantTransitions[i] {
			t.Errorf("clip %d transition = %q, want %q", i, c.Transition, wantTransitions[i])
		}
	}
	if spec.Subtitles != nil {
		t.Error("expected no subtitle track without segments")
	}
	if spec.Music != nil {
		t.Error("expected no music track without a music URL")
	}
}

func TestLayout_NoAssetsUsesFiller(t *testing.T) {
	spec := Layout(nil, 12.5, nil, DefaultOptions())
	if len(spec.Visual.Clips) != 1 {
		t.Fatalf("expected a single filler clip, got %+v", spec.Visual.Clips)
	}
	c := spec.Visual.Clips[0]
	if c.Asset.Kind != AssetColor || c.Asset.Color != "#000000" {
		t.Errorf("filler asset = %+v", c.Asset)
	}
	if c.Start != 0 || c.Length != 12.5 || c.Transition != "" {
		t.Errorf("filler clip = %+v", c)
	}
}

func TestLayout_VisualTrackCoversDuration(t *testing.T) {
	durations := []float64{0.35, 1, 7.77, 10, 13.01, 29.999, 61.4}
	for _, total := range durations {
		for n := 1; n <= 80; n++ {
			clips := Layout(nil, total, images(n%26+1), DefaultOptions()).Visual.Clips
			if len(clips) == 0 {
				t.Fatalf("total=%v n=%d: no clips", total, n)
			}
			if clips[0].Start != 0 {
				t.Errorf("total=%v n=%d: first clip starts at %v", total, n, clips[0].Start)
			}
			sum := 0.0
			for i, c := range clips {
				sum += c.Length
				if i > 0 && math.Abs(c.Start-clips[i-1].End()) > 0.01 {
					t.Errorf("total=%v n=%d: gap or overlap before clip %d", total, n, i)
				}
			}
			if math.Abs(sum-total) > 0.01 {
				t.Errorf("total=%v n=%d: lengths sum to %v", total, n, sum)
			}
			if math.Abs(clips[len(clips)-1].End()-total) > 0.01 {
				t.Errorf("total=%v n=%d: track ends at %v", total, n, clips[len(clips)-1].End())
			}
		}
	}
}

func TestLayout_VoiceAndMusic(t *testing.T) {
	opts := DefaultOptions()
	opts.VoiceURL = "https://cdn.example/vo.mp3"
	opts.MusicURL = "https://cdn.example/music.mp3"

	spec := Layout(nil, 8, images(2), opts)

	if len(spec.Voice.Clips) != 1 {
		t.Fatalf("expected one voice clip, got %d", len(spec.Voice.Clips))
	}
	voice := spec.Voice.Clips[0]
	if voice.Start != 0 || voice.Length != 8 || voice.Volume != 1.0 || voice.Asset.Src != opts.VoiceURL {
		t.Errorf("voice clip = %+v", voice)
	}

	if spec.Music == nil || len(spec.Music.Clips) != 1 {
		t.Fatalf("expected one music clip, got %+v", spec.Music)
	}
	music := spec.Music.Clips[0]
	if music.Length != 8 || music.Volume != 0.12 || music.Volume >= voice.Volume {
		t.Errorf("music clip = %+v", music)
	}
	if spec.Output.Resolution() != "1080x1920" || spec.Output.AspectRatio != "9:16" || spec.Output.FPS != 30 {
		t.Errorf("output = %+v", spec.Output)
	}
}

func TestLayout_CaptionsClippedToDuration(t *testing.T) {
	segments := []subtitles.Segment{
		{Text: "first", Start: 0, End: 2, Duration: 2},
		{Text: "overhang", Start: 4, End: 6, Duration: 2},
		{Text: "late", Start: 6, End: 7, Duration: 1},
	}
	spec := Layout(segments, 5, nil, DefaultOptions())
	if spec.Subtitles == nil {
		t.Fatal("expected a subtitle track")
	}
	clips := spec.Subtitles.Clips
	if len(clips) != 2 {
		t.Fatalf("expected 2 caption clips, got %+v", clips)
	}
	if clips[0].Asset.Text != "first" || clips[0].Length != 2 {
		t.Errorf("first caption = %+v", clips[0])
	}
	if clips[1].Start != 4 || clips[1].Length != 1 {
		t.Errorf("overhanging caption = %+v, want start 4 length 1", clips[1])
	}
	for _, c := range clips {
		if c.End() > 5+1e-9 {
			t.Errorf("caption %q ends after the video", c.Asset.Text)
		}
	}
}

func TestLayout_CaptionFloor(t *testing.T) {
	segments := []subtitles.Segment{
		{Text: "earlier", Start: 0, End: 4, Duration: 4},
		{Text: "tail", Start: 4.95, End: 6, Duration: 1.05},
	}
	clips := Layout(segments, 5, nil, DefaultOptions()).Subtitles.Clips
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %+v", clips)
	}
	tail := clips[1]
	if tail.Start != 4.8 || tail.Length != 0.2 {
		t.Errorf("tail caption = %+v, want start 4.8 length 0.2", tail)
	}
}

func TestLayout_CaptionEndsWithinNonRoundTotal(t *testing.T) {
	total := 4.0525425675774045
	segments := []subtitles.Segment{{Text: "a a", Start: 0.011, End: 4.06, Duration: 4.049}}
	clips := Layout(segments, total, nil, DefaultOptions()).Subtitles.Clips
	if len(clips) != 1 {
		t.Fatalf("expected 1 clip, got %+v", clips)
	}
	if c := clips[0]; c.Start != 0.011 || c.Length != 4.041 {
		t.Errorf("caption = %+v, want start 0.011 length 4.041", c)
	}
	if clips[0].End() > total {
		t.Errorf("caption ends at %v, past %v", clips[0].End(), total)
	}
}

func TestLayout_CaptionsNeverPassTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		total := 0.5 + rng.Float64()*30
		var segments []subtitles.Segment
		at := rng.Float64() * 0.5
		for at < total+2 {
			length := 0.5 + rng.Float64()*4
			end := math.Round((at+length)*1000) / 1000
			start := math.Round(at*1000) / 1000
			segments = append(segments, subtitles.Segment{Text: "w", Start: start, End: end, Duration: end - start})
			at = end + rng.Float64()*0.3
		}

		track := Layout(segments, total, nil, DefaultOptions()).Subtitles
		if track == nil {
			continue
		}
		prevEnd := 0.0
		for _, c := range track.Clips {
			if c.Start < 0 || c.Length <= 0 || c.End() > total {
				t.Fatalf("total=%v: caption out of range %+v", total, c)
			}
			if c.Start < prevEnd-1e-9 {
				t.Fatalf("total=%v: caption %+v overlaps previous end %v", total, c, prevEnd)
			}
			prevEnd = c.End()
		}
	}
}

func TestLayout_Deterministic(t *testing.T) {
	segments := []subtitles.Segment{{Text: "a b", Start: 0.2, End: 1.4, Duration: 1.2}}
	opts := DefaultOptions()
	opts.MusicURL = "m.mp3"
	a := Layout(segments, 9.1, images(4), opts)
	b := Layout(segments, 9.1, images(4), opts)
	if !reflect.DeepEqual(a, b) {
		t.Error("Layout is not deterministic")
	}
}
