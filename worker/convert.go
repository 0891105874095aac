package worker

import (
	"sort"

	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/models"
	"github.com/Mhdiwe/Viral/processing"
	"github.com/Mhdiwe/Viral/timeline"
)

func voiceoverRequest(v *models.Video) processing.VoiceoverRequest {
	return processing.VoiceoverRequest{
		ScriptText:   v.Script,
		VoiceID:      v.VoiceID,
		LanguageCode: v.LanguageCode,
	}
}

func visualsRequest(v *models.Video) processing.VisualsRequest {
	return processing.VisualsRequest{
		Source: config.ImageSource(v.ImageSource),
		Count:  v.ImageCount,
		Query:  v.Query,
		URLs:   v.AssetURLs,
	}
}

// applyVoiceover copies a voiceover onto the row.
func applyVoiceover(v *models.Video, vo *processing.Voiceover) {
	v.AudioObject = vo.ObjectName
	v.AudioURI = vo.AudioURI
	v.AudioURL = vo.AudioURL
	v.AudioDuration = vo.Duration
	v.DurationSource = vo.DurationSource
	v.Transcript = vo.Transcript
	v.Segments = vo.Segments
	v.SRT = vo.SRT
}

// voiceoverOf rebuilds the voiceover stored on the row.
func voiceoverOf(v *models.Video) *processing.Voiceover {
	return &processing.Voiceover{
		Script:         v.Script,
		ObjectName:     v.AudioObject,
		AudioURI:       v.AudioURI,
		AudioURL:       v.AudioURL,
		Duration:       v.AudioDuration,
		DurationSource: v.DurationSource,
		Transcript:     v.Transcript,
		Segments:       v.Segments,
		SRT:            v.SRT,
	}
}

func assetRows(videoID uint, visuals []timeline.VisualAsset) []models.VideoAsset {
	rows := make([]models.VideoAsset, 0, len(visuals))
	for i, a := range visuals {
		rows = append(rows, models.VideoAsset{
			VideoID:  videoID,
			Position: i,
			Kind:     string(a.Kind),
			URL:      a.URL,
			Prompt:   a.Prompt,
		})
	}
	return rows
}

func visualsOf(rows []models.VideoAsset) []timeline.VisualAsset {
	sorted := append([]models.VideoAsset(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	out := make([]timeline.VisualAsset, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, timeline.VisualAsset{Kind: timeline.AssetKind(r.Kind), URL: r.URL, Prompt: r.Prompt})
	}
	return out
}
