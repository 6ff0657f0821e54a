package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"happythings/internal/clock"
	"happythings/internal/models"
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type StoreImageInput struct {
	WeekStart   string
	ContentType string
	Prompt      string
	ThingCount  int
	Data        []byte
}

type ImageService struct {
	images WeeklyImageRepository
	blobs  BlobStore
	clock  clock.Clock
}

func NewImageService(images WeeklyImageRepository, blobs BlobStore, clk clock.Clock) *ImageService {
	return &ImageService{images: images, blobs: blobs, clock: clk}
}

// Store uploads the image and records it as the collage of its week,
// replacing any earlier one.
func (s *ImageService) Store(ctx context.Context, in StoreImageInput) (models.WeeklyImage, error) {
	if err := ValidateDate(in.WeekStart); err != nil {
		return models.WeeklyImage{}, err
	}
	if len(in.Data) == 0 {
		return models.WeeklyImage{}, fmt.Errorf("%w: image data is empty", ErrValidation)
	}
	contentType := strings.TrimSpace(strings.SplitN(in.ContentType, ";", 2)[0])
	if contentType == "" {
		contentType = "image/png"
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return models.WeeklyImage{}, fmt.Errorf("%w: unsupported content type %q", ErrValidation, contentType)
	}
	if in.ThingCount < 0 {
		return models.WeeklyImage{}, fmt.Errorf("%w: thingCount must not be negative", ErrValidation)
	}

	key := fmt.Sprintf("weekly/%s/%s%s", in.WeekStart, uuid.NewString(), ext)
	url, err := s.blobs.Put(ctx, key, contentType, in.Data)
	if err != nil {
		return models.WeeklyImage{}, err
	}
	now := s.clock.Now().UTC()
	img := models.WeeklyImage{
		WeekStart:  in.WeekStart,
		StorageID:  key,
		ImageURL:   url,
		Prompt:     in.Prompt,
		ThingCount: in.ThingCount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.images.SaveWeeklyImage(ctx, img); err != nil {
		return models.WeeklyImage{}, err
	}
	return img, nil
}

func (s *ImageService) Get(ctx context.Context, weekStart string) (*models.WeeklyImage, error) {
	if err := ValidateDate(weekStart); err != nil {
		return nil, err
	}
	return s.images.GetWeeklyImage(ctx, weekStart)
}

func (s *ImageService) List(ctx context.Context) ([]models.WeeklyImage, error) {
	return s.images.ListWeeklyImages(ctx)
}
