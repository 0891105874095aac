package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Mhdiwe/Viral/timeline"
)

// ImagePlan is the structured output of the prompt planning call.
type ImagePlan struct {
	Prompts []string `json:"prompts" jsonschema_description:"One detailed image generation prompt per visual beat of the script, in narration order."`
}

// GenerateSchema reflects T into a JSON schema accepted by strict structured outputs.
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var imagePlanSchema = GenerateSchema[ImagePlan]()

// Generated plans image prompts from the script and renders each one.
type Generated struct {
	client      openai.Client
	chatModel   string
	imageModel  string
	limiter     *rate.Limiter
	concurrency int
}

// NewGenerated creates an OpenAI backed source. Image requests are limited to
// one every two seconds with at most two in flight.
func NewGenerated(apiKey, chatModel, imageModel string, opts ...option.RequestOption) *Generated {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Generated{
		client:      openai.NewClient(opts...),
		chatModel:   chatModel,
		imageModel:  imageModel,
		limiter:     rate.NewLimiter(rate.Every(2*time.Second), 2),
		concurrency: 2,
	}
}

func (g *Generated) Fetch(ctx context.Context, req Request) ([]timeline.VisualAsset, error) {
	if strings.TrimSpace(req.Script) == "" {
		return nil, fmt.Errorf("script is required to generate images")
	}
	n := count(req.Count)

	prompt := fmt.Sprintf(`You are a visual storyteller illustrating a short vertical video.
The narration script is:
"""
%s
"""
Break the narration into exactly %d visual beats, in order. For each beat write one
hyper-detailed prompt for an image model: subject, setting, lighting, camera angle and
style. Keep style and color grading consistent across all prompts. Portrait framing.
Never ask for text, captions or logos in the image.`, req.Script, n)

	plan, err := getStructuredResponse[ImagePlan](ctx, g.client, g.chatModel, prompt, imagePlanSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to plan image prompts: %w", err)
	}

	var prompts []string
	for _, p := range plan.Prompts {
		if p = strings.TrimSpace(p); p != "" {
			prompts = append(prompts, p)
		}
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("LLM returned no image prompts")
	}
	if len(prompts) > n {
		prompts = prompts[:n]
	}
	slog.Info("planned image prompts", "count", len(prompts))

	out := make([]timeline.VisualAsset, len(prompts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, p := range prompts {
		eg.Go(func() error {
			if err := g.limiter.Wait(egCtx); err != nil {
				return err
			}
			url, err := g.generateImage(egCtx, p)
			if err != nil {
				return fmt.Errorf("image %d: %w", i+1, err)
			}
			out[i] = timeline.VisualAsset{Kind: timeline.AssetImage, URL: url, Prompt: p}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Generated) generateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(g.imageModel),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1024x1792,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI image API error: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("OpenAI returned no image")
	}
	return resp.Data[0].URL, nil
}

// getStructuredResponse calls the chat API with JSON schema enforcement and
// decodes the reply into T.
func getStructuredResponse[T any](ctx context.Context, client openai.Client, model, prompt string, schema interface{}) (*T, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "structured_response",
		Description: openai.String("Structured data response"),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	chatCompletion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(chatCompletion.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	rawResponse := chatCompletion.Choices[0].Message.Content
	if rawResponse == "" {
		return nil, fmt.Errorf("OpenAI returned empty response. Finish reason: %s", chatCompletion.Choices[0].FinishReason)
	}

	var structured T
	if err := json.Unmarshal([]byte(rawResponse), &structured); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI JSON response: %w\nRaw content: %s", err, rawResponse)
	}
	return &structured, nil
}
