package imagegen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mythos/internal/datauri"
	"mythos/internal/model"
	"mythos/internal/volc"
)

// ImageAPI is the Ark image endpoint.
type ImageAPI interface {
	GenerateImages(ctx context.Context, p volc.ImageGenParams) ([]string, error)
}

// Seedream renders through Volcengine Seedream. Remote results are downloaded
// so callers always receive a data URI.
type Seedream struct {
	ark        ImageAPI
	Model      string
	Size       string
	HTTPClient *http.Client
}

func NewSeedream(ark ImageAPI, modelName, size string, timeout time.Duration) *Seedream {
	return &Seedream{
		ark:        ark,
		Model:      modelName,
		Size:       size,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (s *Seedream) Generate(ctx context.Context, prompt string, style model.ImageStyle) (string, error) {
	urls, err := s.ark.GenerateImages(ctx, volc.ImageGenParams{
		Model:  s.Model,
		Prompt: EnhancePrompt(prompt, style),
		Size:   s.Size,
	})
	if err != nil {
		logrus.WithError(err).WithField("model", s.Model).Warn("seedream image failed")
		return "", fmt.Errorf("%w: %w", ErrImageGeneration, err)
	}

	first := urls[0]
	if strings.HasPrefix(first, "data:") {
		if _, _, err := datauri.Decode(first); err != nil {
			return "", fmt.Errorf("%w: %w", ErrImageGeneration, err)
		}
		return first, nil
	}
	uri, err := fetchImage(ctx, s.HTTPClient, first)
	if err != nil {
		return "", fmt.Errorf("%w: download: %w", ErrImageGeneration, err)
	}
	return uri, nil
}
