package tasks

import "encoding/json"

// Queue names, in pipeline order.
const (
	// QueueVoiceover synthesizes narration and aligns captions.
	QueueVoiceover = "q_voiceover"

	// QueueVisuals fetches background assets.
	QueueVisuals = "q_visuals"

	// QueueRender lays out the timeline and starts the render.
	QueueRender = "q_render"
)

// All lists every queue a worker listens on.
var All = []string{QueueVoiceover, QueueVisuals, QueueRender}

// VideoTaskPayload is the payload for every queue.
type VideoTaskPayload struct {
	VideoID uint `json:"video_id"`
}

// Marshal creates a JSON payload for a task.
func Marshal(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal decodes a video task payload.
func Unmarshal(payload string) (VideoTaskPayload, error) {
	var task VideoTaskPayload
	err := json.Unmarshal([]byte(payload), &task)
	return task, err
}
