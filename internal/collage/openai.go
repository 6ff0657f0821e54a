package collage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type imageAPI interface {
	CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error)
}

type OpenAIOptions struct {
	Model   string
	Size    string
	Quality string
}

// OpenAIGenerator makes exactly one image request per call; failures are not retried.
type OpenAIGenerator struct {
	api  imageAPI
	opts OpenAIOptions
}

func NewOpenAIGenerator(apiKey string, opts OpenAIOptions) *OpenAIGenerator {
	return newOpenAIGenerator(openai.NewClient(apiKey), opts)
}

func newOpenAIGenerator(api imageAPI, opts OpenAIOptions) *OpenAIGenerator {
	if opts.Size == "" {
		opts.Size = openai.CreateImageSize1024x1024
	}
	return &OpenAIGenerator{api: api, opts: opts}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	req := openai.ImageRequest{
		Prompt:  prompt,
		Model:   g.opts.Model,
		N:       1,
		Size:    g.opts.Size,
		Quality: g.opts.Quality,
	}
	// gpt-image models always answer in base64 and reject response_format.
	if strings.HasPrefix(g.opts.Model, "dall-e") {
		req.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}
	resp, err := g.api.CreateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.New("no image data received")
	}
	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	return img, nil
}
