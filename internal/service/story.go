// Package service sequences prompt building, text, image, video and audio
// generation into one story.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mythos/internal/imagegen"
	"mythos/internal/model"
	"mythos/internal/prompt"
	"mythos/internal/speech"
)

// TextGenerator drafts a story from an instruction.
type TextGenerator interface {
	GenerateStory(ctx context.Context, instruction, topic string) (model.StoryDraft, error)
}

// StoryService 故事生成编排
type StoryService struct {
	prompts *prompt.Builder
	text    TextGenerator
	images  imagegen.Generator
	video   VideoSynthesizer
	speech  speech.Synthesizer

	now   func() time.Time
	newID func() string
}

func NewStoryService(prompts *prompt.Builder, text TextGenerator, images imagegen.Generator, video VideoSynthesizer, narrator speech.Synthesizer) *StoryService {
	return &StoryService{
		prompts: prompts,
		text:    text,
		images:  images,
		video:   video,
		speech:  narrator,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// GenerateFullStory runs every stage and returns the assembled story.
func (s *StoryService) GenerateFullStory(ctx context.Context, req model.StoryRequest) (model.GeneratedStory, error) {
	story, _, err := s.Generate(ctx, req)
	return story, err
}

// Generate is GenerateFullStory plus the per-stage report. Only request
// validation and text generation can fail it.
func (s *StoryService) Generate(ctx context.Context, req model.StoryRequest) (model.GeneratedStory, Report, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return model.GeneratedStory{}, Report{}, err
	}
	log := logrus.WithFields(logrus.Fields{"topic": req.Topic, "media": req.MediaType})

	draft, err := s.text.GenerateStory(ctx, s.prompts.BuildStoryPrompt(req), req.Topic)
	if err != nil {
		log.WithError(err).Error("text generation failed")
		return model.GeneratedStory{}, Report{}, err
	}

	image := s.imageStage(ctx, req, draft.ImagePrompt)
	if image.Err != nil {
		log.WithError(image.Err).Warn("continuing without image")
	}
	video := s.videoStage(ctx, req.MediaType, image, draft.ImagePrompt)
	if video.Err != nil {
		log.WithError(video.Err).Warn("continuing without video")
	}
	audio := s.audioStage(ctx, draft.Content)
	if audio.Err != nil {
		log.WithError(audio.Err).Warn("continuing without audio")
	}

	story := model.GeneratedStory{
		ID:          s.newID(),
		Title:       draft.Title,
		Content:     draft.Content,
		ImagePrompt: draft.ImagePrompt,
		Request:     req,
		CreatedAt:   s.now(),
	}
	if image.OK() {
		story.ImageURL = image.Value
	}
	if video.OK() {
		story.VideoURL = video.Value.URL
		story.IsVideoSimulated = video.Value.Simulated
	}
	if req.MediaType == model.MediaVideo {
		story.VideoFormat = videoFormatOrDefault(req.VideoFormat)
	}
	if audio.OK() {
		story.AudioURL = audio.Value
	}

	report := Report{Image: image.Status, Video: video.Status, Audio: audio.Status}
	log.WithFields(logrus.Fields{"id": story.ID, "image": report.Image, "video": report.Video, "audio": report.Audio}).Info("story generated")
	return story, report, nil
}

// DraftStory runs only the text stage.
func (s *StoryService) DraftStory(ctx context.Context, req model.StoryRequest) (model.StoryDraft, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return model.StoryDraft{}, err
	}
	return s.text.GenerateStory(ctx, s.prompts.BuildStoryPrompt(req), req.Topic)
}

// RegenerateStoryImage renders a new image for prompt and, for video stories,
// a new video. An image failure fails the call.
func (s *StoryService) RegenerateStoryImage(ctx context.Context, imagePrompt string, style model.ImageStyle, mediaType model.MediaType, videoFormat model.VideoFormat) (model.MediaUpdate, error) {
	imageURI, err := s.images.Generate(ctx, imagePrompt, style)
	if err != nil {
		return model.MediaUpdate{}, err
	}
	update := model.MediaUpdate{ImageURL: imageURI}

	video := s.videoStage(ctx, mediaType, succeeded(imageURI), imagePrompt)
	if video.Err != nil {
		logrus.WithError(video.Err).Warn("regenerated image without video")
	}
	if video.OK() {
		update.VideoURL = video.Value.URL
		update.IsVideoSimulated = video.Value.Simulated
	}
	if mediaType == model.MediaVideo {
		update.VideoFormat = videoFormatOrDefault(videoFormat)
	}
	return update, nil
}

// RegenerateAudio narrates text again. Failure yields "".
func (s *StoryService) RegenerateAudio(ctx context.Context, text string) string {
	audio := s.audioStage(ctx, text)
	if audio.Err != nil {
		logrus.WithError(audio.Err).Warn("audio regeneration failed")
	}
	return audio.Value
}

func (s *StoryService) imageStage(ctx context.Context, req model.StoryRequest, imagePrompt string) StageResult[string] {
	if req.MediaType == model.MediaTextOnly {
		return skipped[string]()
	}
	uri, err := s.images.Generate(ctx, s.prompts.DecorateImagePrompt(imagePrompt, req.IncludeCulture), req.ImageStyle)
	if err != nil {
		return degraded[string](err)
	}
	return succeeded(uri)
}

func (s *StoryService) videoStage(ctx context.Context, mediaType model.MediaType, image StageResult[string], imagePrompt string) StageResult[VideoResult] {
	if mediaType != model.MediaVideo || !image.OK() {
		return skipped[VideoResult]()
	}
	v, err := s.video.Synthesize(ctx, image.Value, imagePrompt)
	if err != nil {
		return degraded[VideoResult](err)
	}
	return succeeded(v)
}

func (s *StoryService) audioStage(ctx context.Context, text string) StageResult[string] {
	uri, err := s.speech.Synthesize(ctx, text)
	if err != nil {
		return degraded[string](err)
	}
	return succeeded(uri)
}

func videoFormatOrDefault(f model.VideoFormat) model.VideoFormat {
	if f == "" {
		return model.VideoMP4
	}
	return f
}
