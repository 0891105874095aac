package videos

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Mhdiwe/Viral/auth"
	"github.com/Mhdiwe/Viral/models"
	"github.com/Mhdiwe/Viral/processing"
	"github.com/Mhdiwe/Viral/speech"
	"github.com/Mhdiwe/Viral/tasks"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Voiceoverer runs the synchronous voiceover step.
type Voiceoverer interface {
	Voiceover(ctx context.Context, req processing.VoiceoverRequest) (*processing.Voiceover, error)
}

// Enqueuer hands work to the background workers.
type Enqueuer interface {
	Enqueue(ctx context.Context, queueName string, payload interface{}) error
}

type Handler struct {
	DB             *gorm.DB
	Queue          Enqueuer
	Pipeline       Voiceoverer
	Voices         *speech.VoiceTable
	DefaultBackend string
}

func NewHandler(db *gorm.DB, queue Enqueuer, pipeline Voiceoverer, voices *speech.VoiceTable, defaultBackend string) *Handler {
	return &Handler{DB: db, Queue: queue, Pipeline: pipeline, Voices: voices, DefaultBackend: defaultBackend}
}

// Register mounts the handlers on a protected group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/voiceovers", h.CreateVoiceover)
	g.GET("/voices", h.ListVoices)
	g.POST("/videos", h.CreateVideo)
	g.GET("/videos", h.ListVideos)
	g.GET("/videos/:id", h.GetVideo)
}

type CreateVoiceoverRequest struct {
	ScriptText string `json:"script_text" binding:"required"`
	VoiceID    string `json:"voice_id"`
	// FishAudioVoiceID is accepted as an alias of VoiceID. It may also carry a
	// raw Fish.audio reference id, which bypasses the voice table.
	FishAudioVoiceID string `json:"fish_audio_voice_id"`
	FishAudioAPIKey  string `json:"fish_audio_api_key"`
	LanguageCode     string `json:"language_code"`
}

type VoiceoverResponse struct {
	Success bool `json:"success"`
	*processing.Voiceover
}

func abortWithError(c *gin.Context, err error) {
	kind := processing.KindOf(err)
	c.JSON(kind.HTTPStatus(), gin.H{"success": false, "error": err.Error(), "kind": kind})
}

// CreateVoiceover synthesizes, stores and captions a script in one request.
func (h *Handler) CreateVoiceover(c *gin.Context) {
	var req CreateVoiceoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "kind": processing.KindInvalidInput})
		return
	}

	voice := req.VoiceID
	if voice == "" {
		voice = req.FishAudioVoiceID
	}

	vo, err := h.Pipeline.Voiceover(c.Request.Context(), processing.VoiceoverRequest{
		ScriptText:   req.ScriptText,
		VoiceID:      voice,
		APIKey:       req.FishAudioAPIKey,
		LanguageCode: req.LanguageCode,
	})
	if err != nil {
		slog.Error("voiceover failed", "kind", processing.KindOf(err), "error", err)
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, VoiceoverResponse{Success: true, Voiceover: vo})
}

// ListVoices returns the public voice ids and the default.
func (h *Handler) ListVoices(c *gin.Context) {
	voices := make([]gin.H, 0, len(h.Voices.Voices))
	for _, id := range h.Voices.IDs() {
		voices = append(voices, gin.H{"id": id, "description": h.Voices.Voices[id].Description})
	}
	c.JSON(http.StatusOK, gin.H{"default": h.Voices.Default, "voices": voices})
}

type CreateVideoRequest struct {
	ScriptText    string   `json:"script_text" binding:"required"`
	VoiceID       string   `json:"voice_id"`
	LanguageCode  string   `json:"language_code"`
	ImageSource   string   `json:"image_source" binding:"omitempty,oneof=none generated stock"`
	ImageCount    int      `json:"image_count" binding:"omitempty,min=1,max=10"`
	Query         string   `json:"query"`
	AssetURLs     []string `json:"asset_urls" binding:"omitempty,max=20,dive,url"`
	MusicURL      string   `json:"music_url" binding:"omitempty,url"`
	RenderBackend string   `json:"render_backend" binding:"omitempty,oneof=local remote"`
}

// CreateVideo stores a new video and queues its first step.
func (h *Handler) CreateVideo(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.ScriptText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "script_text is required"})
		return
	}

	backend := req.RenderBackend
	if backend == "" {
		backend = h.DefaultBackend
	}

	video := models.Video{
		Subject:       c.GetString(auth.SubjectKey),
		Script:        strings.TrimSpace(req.ScriptText),
		VoiceID:       req.VoiceID,
		LanguageCode:  req.LanguageCode,
		ImageSource:   req.ImageSource,
		ImageCount:    req.ImageCount,
		Query:         req.Query,
		AssetURLs:     req.AssetURLs,
		MusicURL:      req.MusicURL,
		RenderBackend: backend,
		Status:        models.StatusPending,
	}
	if err := h.DB.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
		return
	}

	if err := h.Queue.Enqueue(c.Request.Context(), tasks.QueueVoiceover, tasks.VideoTaskPayload{VideoID: video.ID}); err != nil {
		slog.Error("could not queue video", "video", video.ID, "error", err)
		video.SetStatus(h.DB, models.Failed("queue_voiceover"), err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue video"})
		return
	}

	slog.Info("queued video", "video", video.ID, "subject", video.Subject)
	c.JSON(http.StatusAccepted, video)
}

// ListVideos returns the caller's most recent videos.
func (h *Handler) ListVideos(c *gin.Context) {
	var videos []models.Video
	err := h.DB.Where("subject = ?", c.GetString(auth.SubjectKey)).
		Order("created_at DESC").
		Limit(50).
		Find(&videos).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve videos"})
		return
	}
	c.JSON(http.StatusOK, videos)
}

// GetVideo returns one of the caller's videos with its assets.
func (h *Handler) GetVideo(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video ID"})
		return
	}

	var video models.Video
	err = h.DB.Preload("Assets", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&video, "id = ? AND subject = ?", id, c.GetString(auth.SubjectKey)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	c.JSON(http.StatusOK, video)
}
