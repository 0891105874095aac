package models

import (
	"fmt"
	"time"

	"github.com/Mhdiwe/Viral/render"
	"github.com/Mhdiwe/Viral/subtitles"
	"gorm.io/gorm"
)

// Video statuses, in pipeline order. Failures are recorded as "failed_<step>".
const (
	StatusPending             = "pending"
	StatusProcessingVoiceover = "processing_voiceover"
	StatusPendingVisuals      = "pending_visuals"
	StatusProcessingVisuals   = "processing_visuals"
	StatusPendingRender       = "pending_render"
	StatusRendering           = "rendering"
	StatusComplete            = "complete"
)

// Failed returns the failure status for step.
func Failed(step string) string {
	return "failed_" + step
}

type Video struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Subject string `gorm:"size:255;index" json:"subject"`

	Script        string   `gorm:"type:text;not null" json:"script_text"`
	VoiceID       string   `gorm:"size:64" json:"voice_id"`
	LanguageCode  string   `gorm:"size:16" json:"language_code,omitempty"`
	ImageSource   string   `gorm:"size:16" json:"image_source,omitempty"`
	ImageCount    int      `json:"image_count,omitempty"`
	Query         string   `gorm:"size:255" json:"query,omitempty"`
	AssetURLs     []string `gorm:"serializer:json" json:"asset_urls,omitempty"`
	MusicURL      string   `gorm:"type:text" json:"music_url,omitempty"`
	RenderBackend string   `gorm:"size:16" json:"render_backend"`

	Status string `gorm:"size:64;default:'pending';index" json:"status"`
	Error  string `gorm:"type:text" json:"error,omitempty"`

	AudioObject    string              `gorm:"type:text" json:"-"`
	AudioURI       string              `gorm:"type:text" json:"audio_gcs_uri,omitempty"`
	AudioURL       string              `gorm:"type:text" json:"audio_public_url,omitempty"`
	AudioDuration  float64             `json:"audio_duration_seconds,omitempty"`
	DurationSource string              `gorm:"size:16" json:"duration_source,omitempty"`
	Transcript     string              `gorm:"type:text" json:"transcript,omitempty"`
	Segments       []subtitles.Segment `gorm:"serializer:json" json:"srt_segments,omitempty"`
	SRT            string              `gorm:"type:text" json:"srt,omitempty"`

	RenderID string `gorm:"size:128;index" json:"render_id,omitempty"`
	VideoURL string `gorm:"type:text" json:"video_url,omitempty"`

	Assets []VideoAsset `gorm:"foreignKey:VideoID" json:"assets,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

// SetStatus updates the status column, recording errMsg when non-empty.
func (v *Video) SetStatus(db *gorm.DB, status, errMsg string) error {
	v.Status, v.Error = status, errMsg
	return db.Model(v).Updates(map[string]interface{}{"status": status, "error": errMsg}).Error
}

// ApplyRender records a render result. Non-terminal results only refresh the
// status of a video that is still rendering.
func ApplyRender(db *gorm.DB, v *Video, res render.Result) error {
	switch res.Status {
	case render.StatusDone:
		if res.URL == "" {
			return v.SetStatus(db, Failed("render"), fmt.Sprintf("render %s finished without an output url", res.ID))
		}
		v.VideoURL = res.URL
		if err := db.Model(v).Update("video_url", res.URL).Error; err != nil {
			return err
		}
		return v.SetStatus(db, StatusComplete, "")
	case render.StatusFailed:
		msg := res.Error
		if msg == "" {
			msg = "render failed"
		}
		return v.SetStatus(db, Failed("render"), msg)
	default:
		return nil
	}
}
