package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/models"
	"github.com/Mhdiwe/Viral/render"
	"github.com/Mhdiwe/Viral/tasks"
	"gorm.io/gorm"
)

func (p *Processor) load(payload string, preload ...string) (*models.Video, error) {
	task, err := tasks.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	q := p.DB
	for _, assoc := range preload {
		q = q.Preload(assoc)
	}
	var video models.Video
	if err := q.First(&video, task.VideoID).Error; err != nil {
		return nil, fmt.Errorf("load video %d: %w", task.VideoID, err)
	}
	return &video, nil
}

// fail records a failed step and returns cause.
func (p *Processor) fail(video *models.Video, step string, cause error) error {
	if err := video.SetStatus(p.DB, models.Failed(step), cause.Error()); err != nil {
		slog.Error("could not record failure", "video", video.ID, "step", step, "error", err)
	}
	return cause
}

// next enqueues the following step and moves the video to status.
func (p *Processor) next(ctx context.Context, video *models.Video, queue, status string) error {
	if err := p.Enqueue(ctx, queue, tasks.VideoTaskPayload{VideoID: video.ID}); err != nil {
		return p.fail(video, "queue_"+strings.TrimPrefix(queue, "q_"), err)
	}
	slog.Info("queued next step", "video", video.ID, "queue", queue)
	return video.SetStatus(p.DB, status, "")
}

// HandleVoiceover processes tasks from QueueVoiceover.
func (p *Processor) HandleVoiceover(ctx context.Context, payload string) error {
	video, err := p.load(payload)
	if err != nil {
		return err
	}
	slog.Info("processing voiceover", "video", video.ID)
	video.SetStatus(p.DB, models.StatusProcessingVoiceover, "")

	vo, err := p.Pipeline.Voiceover(ctx, voiceoverRequest(video))
	if err != nil {
		return p.fail(video, "voiceover", err)
	}

	applyVoiceover(video, vo)
	if err := p.DB.Save(video).Error; err != nil {
		return p.fail(video, "save_voiceover", err)
	}
	slog.Info("saved voiceover", "video", video.ID, "duration", vo.Duration, "segments", len(vo.Segments))

	return p.next(ctx, video, tasks.QueueVisuals, models.StatusPendingVisuals)
}

// HandleVisuals processes tasks from QueueVisuals.
func (p *Processor) HandleVisuals(ctx context.Context, payload string) error {
	video, err := p.load(payload)
	if err != nil {
		return err
	}
	if video.AudioURL == "" {
		return p.fail(video, "visuals_no_voiceover", errors.New("video has no voiceover"))
	}
	slog.Info("processing visuals", "video", video.ID)
	video.SetStatus(p.DB, models.StatusProcessingVisuals, "")

	visuals, err := p.Pipeline.Visuals(ctx, visualsRequest(video), voiceoverOf(video))
	if err != nil {
		return p.fail(video, "visuals", err)
	}

	// Replace any assets from an earlier attempt in a single transaction.
	err = p.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", video.ID).Delete(&models.VideoAsset{}).Error; err != nil {
			return err
		}
		rows := assetRows(video.ID, visuals)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return p.fail(video, "save_visuals", err)
	}
	slog.Info("saved visuals", "video", video.ID, "assets", len(visuals))

	return p.next(ctx, video, tasks.QueueRender, models.StatusPendingRender)
}

// HandleRender processes tasks from QueueRender. Local renders complete here;
// remote renders stay in StatusRendering until a callback or poll finishes them.
func (p *Processor) HandleRender(ctx context.Context, payload string) error {
	video, err := p.load(payload, "Assets")
	if err != nil {
		return err
	}
	if video.AudioURL == "" {
		return p.fail(video, "render_no_voiceover", errors.New("video has no voiceover"))
	}

	spec := p.Pipeline.Compose(voiceoverOf(video), visualsOf(video.Assets), video.MusicURL)
	slog.Info("rendering video", "video", video.ID, "backend", video.RenderBackend, "duration", spec.Duration)
	video.SetStatus(p.DB, models.StatusRendering, "")

	res, err := p.Pipeline.Render(ctx, config.RenderBackend(video.RenderBackend), spec)
	if err != nil {
		return p.fail(video, "render", err)
	}
	if err := p.DB.Model(video).Update("render_id", res.ID).Error; err != nil {
		return err
	}
	if err := models.ApplyRender(p.DB, video, res); err != nil {
		return err
	}
	slog.Info("render step finished", "video", video.ID, "render", res.ID, "status", res.Status)
	return nil
}

// PollRendering checks every video waiting on a render job.
func (p *Processor) PollRendering(ctx context.Context) error {
	var videos []models.Video
	if err := p.DB.Where("status = ? AND render_id <> ''", models.StatusRendering).Find(&videos).Error; err != nil {
		return fmt.Errorf("list rendering videos: %w", err)
	}

	for i := range videos {
		video := &videos[i]
		res, err := p.Pipeline.RenderStatus(ctx, config.RenderBackend(video.RenderBackend), video.RenderID)
		if errors.Is(err, render.ErrNotFound) {
			p.fail(video, "render", err)
			continue
		}
		if err != nil {
			slog.Warn("render status check failed", "video", video.ID, "render", video.RenderID, "error", err)
			continue
		}
		if err := models.ApplyRender(p.DB, video, res); err != nil {
			slog.Error("could not record render result", "video", video.ID, "error", err)
			continue
		}
		if res.Status.Terminal() {
			slog.Info("render finished", "video", video.ID, "status", video.Status)
		}
	}
	return nil
}
