package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"mythos/internal/volc"
)

// VideoResult is the output of a video synthesis step.
type VideoResult struct {
	URL       string
	Simulated bool
}

// VideoSynthesizer promotes a still image to a video artifact.
type VideoSynthesizer interface {
	Synthesize(ctx context.Context, imageURI, prompt string) (VideoResult, error)
}

// SimulatedVideo reuses the still image as the video after a fixed delay.
// It never fails; a cancelled context only cuts the delay short.
type SimulatedVideo struct {
	Delay time.Duration
}

func (v SimulatedVideo) Synthesize(ctx context.Context, imageURI, prompt string) (VideoResult, error) {
	if v.Delay > 0 {
		t := time.NewTimer(v.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	return VideoResult{URL: imageURI, Simulated: true}, nil
}

// VideoTaskAPI is the Ark video task endpoint.
type VideoTaskAPI interface {
	CreateVideoTask(ctx context.Context, p volc.VideoTaskParams) (string, error)
	GetVideoTask(ctx context.Context, taskID string) (string, string, error)
}

// SeedanceVideo renders a real clip with Seedance image-to-video, using the
// still as the first frame.
type SeedanceVideo struct {
	ark          VideoTaskAPI
	Model        string
	Ratio        string
	Duration     int
	PollInterval time.Duration
	Deadline     time.Duration
}

func NewSeedanceVideo(ark VideoTaskAPI, modelName, ratio string, duration int, poll, deadline time.Duration) *SeedanceVideo {
	if poll <= 0 {
		poll = 3 * time.Second
	}
	if deadline <= 0 {
		deadline = 4 * time.Minute
	}
	return &SeedanceVideo{
		ark:          ark,
		Model:        modelName,
		Ratio:        ratio,
		Duration:     duration,
		PollInterval: poll,
		Deadline:     deadline,
	}
}

func (v *SeedanceVideo) Synthesize(ctx context.Context, imageURI, prompt string) (VideoResult, error) {
	taskID, err := v.ark.CreateVideoTask(ctx, volc.VideoTaskParams{
		Model:         v.Model,
		Prompt:        prompt,
		FirstFrameURL: imageURI,
		Ratio:         v.Ratio,
		Duration:      v.Duration,
	})
	if err != nil {
		return VideoResult{}, fmt.Errorf("create video task: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, v.Deadline)
	defer cancel()
	ticker := time.NewTicker(v.PollInterval)
	defer ticker.Stop()

	for {
		status, url, err := v.ark.GetVideoTask(ctx, taskID)
		if err != nil {
			return VideoResult{}, fmt.Errorf("get video task: %w", err)
		}
		logrus.WithFields(logrus.Fields{"task": taskID, "status": status}).Debug("seedance poll")
		switch status {
		case volc.TaskSucceeded, "success", "completed":
			if url == "" {
				return VideoResult{}, errors.New("video succeeded but url empty")
			}
			return VideoResult{URL: url}, nil
		case volc.TaskFailed, "error", "cancelled", "expired":
			return VideoResult{}, fmt.Errorf("video task %s ended with status %s", taskID, status)
		}

		select {
		case <-ctx.Done():
			return VideoResult{}, fmt.Errorf("video task %s: %w", taskID, ctx.Err())
		case <-ticker.C:
		}
	}
}
