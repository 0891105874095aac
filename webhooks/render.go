package webhooks

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Mhdiwe/Viral/models"
	"github.com/Mhdiwe/Viral/render"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TokenHeader carries the shared secret on render callbacks.
const TokenHeader = "X-Webhook-Token"

type Handler struct {
	DB    *gorm.DB
	Token string
}

func NewHandler(db *gorm.DB, token string) *Handler {
	return &Handler{DB: db, Token: token}
}

// RenderCallback is the body posted by the render service when a job ends.
type RenderCallback struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
	URL    string `json:"url"`
	Error  string `json:"error"`
}

func (h *Handler) authorized(c *gin.Context) bool {
	if h.Token == "" {
		return false
	}
	got := c.GetHeader(TokenHeader)
	if got == "" {
		got = c.Query("token")
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) == 1
}

// HandleRenderCallback records the outcome of a remote render.
func (h *Handler) HandleRenderCallback(c *gin.Context) {
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook token"})
		return
	}

	var cb RenderCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var video models.Video
	if err := h.DB.Where("render_id = ?", cb.ID).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown render id"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	res := render.Result{ID: cb.ID, Status: render.ParseStatus(cb.Status), URL: cb.URL, Error: cb.Error}
	if err := models.ApplyRender(h.DB, &video, res); err != nil {
		slog.Error("could not record render callback", "video", video.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update video"})
		return
	}

	slog.Info("render callback", "video", video.ID, "render", cb.ID, "status", video.Status)
	c.JSON(http.StatusOK, gin.H{"received": true, "status": video.Status})
}
