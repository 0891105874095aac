package models

import "time"

// VideoAsset is one background visual of a video, in display order.
type VideoAsset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VideoID   uint      `gorm:"not null;index" json:"video_id"`
	Position  int       `gorm:"not null" json:"position"`
	Kind      string    `gorm:"size:16;not null" json:"kind"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Prompt    string    `gorm:"type:text" json:"prompt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (VideoAsset) TableName() string {
	return "video_assets"
}
