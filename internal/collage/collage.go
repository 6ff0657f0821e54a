package collage

import (
	"context"

	"go.uber.org/zap"

	"happythings/internal/models"
)

type WeekSource interface {
	WeekEntries(ctx context.Context, start, end string) ([]models.Entry, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type Uploader interface {
	Upload(ctx context.Context, weekStart string, image []byte, prompt string, thingCount int) (*UploadResult, error)
}

type Job struct {
	entries   WeekSource
	generator Generator
	uploader  Uploader
	logger    *zap.Logger
}

func NewJob(entries WeekSource, generator Generator, uploader Uploader, logger *zap.Logger) *Job {
	return &Job{entries: entries, generator: generator, uploader: uploader, logger: logger}
}

// Run builds the collage for [weekStart, weekEnd]. A week without entries is
// not an error; Run logs it and returns nil.
func (j *Job) Run(ctx context.Context, weekStart, weekEnd string) (*UploadResult, error) {
	log := j.logger.With(zap.String("week_start", weekStart), zap.String("week_end", weekEnd))

	entries, err := j.entries.WeekEntries(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		log.Info("no entries found for this week")
		return nil, nil
	}

	things := Things(entries)
	prompt := BuildPrompt(things)
	log.Info("generating collage",
		zap.Int("entries", len(entries)),
		zap.Int("things", len(things)),
		zap.Int("prompt_length", len(prompt)))

	image, err := j.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	res, err := j.uploader.Upload(ctx, weekStart, image, prompt, len(things))
	if err != nil {
		return nil, err
	}
	log.Info("collage stored", zap.String("storage_id", res.StorageID), zap.String("url", res.URL))
	return res, nil
}
