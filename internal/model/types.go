package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest marks a story request that cannot be generated.
var ErrInvalidRequest = errors.New("invalid story request")

// StoryGenre 故事类型
type StoryGenre string

const (
	GenreEducational StoryGenre = "educational"
	GenreFantasy     StoryGenre = "fantasy"
	GenreSciFi       StoryGenre = "sci-fi"
	GenreFolktale    StoryGenre = "folktale"
	GenreMystery     StoryGenre = "mystery"
	GenreAdventure   StoryGenre = "adventure"
)

// AgeGroup 目标读者
type AgeGroup string

const (
	AgeChild AgeGroup = "child"
	AgeTeen  AgeGroup = "teen"
	AgeAdult AgeGroup = "adult"
)

// ImageStyle 插画风格
type ImageStyle string

const (
	StyleDigitalArt  ImageStyle = "digital-art"
	StyleCartoon     ImageStyle = "cartoon"
	StyleRealistic   ImageStyle = "realistic"
	StyleWatercolor  ImageStyle = "watercolor"
	StyleOilPainting ImageStyle = "oil-painting"
	StyleSketch      ImageStyle = "sketch"
	StyleRetro       ImageStyle = "retro"
)

// MediaType 输出媒体形式
type MediaType string

const (
	MediaTextWithImage MediaType = "text-image"
	MediaTextOnly      MediaType = "text-only"
	MediaVideo         MediaType = "video"
)

// VideoFormat 视频容器格式
type VideoFormat string

const (
	VideoMP4 VideoFormat = "mp4"
	VideoMOV VideoFormat = "mov"
)

var (
	Genres       = []StoryGenre{GenreEducational, GenreFantasy, GenreSciFi, GenreFolktale, GenreMystery, GenreAdventure}
	AgeGroups    = []AgeGroup{AgeChild, AgeTeen, AgeAdult}
	ImageStyles  = []ImageStyle{StyleDigitalArt, StyleCartoon, StyleRealistic, StyleWatercolor, StyleOilPainting, StyleSketch, StyleRetro}
	MediaTypes   = []MediaType{MediaTextWithImage, MediaTextOnly, MediaVideo}
	VideoFormats = []VideoFormat{VideoMP4, VideoMOV}
)

// StoryRequest 故事生成请求
type StoryRequest struct {
	Topic          string      `json:"topic"`
	Genre          StoryGenre  `json:"genre"`
	AgeGroup       AgeGroup    `json:"ageGroup"`
	Language       string      `json:"language"`
	ImageStyle     ImageStyle  `json:"imageStyle"`
	MediaType      MediaType   `json:"mediaType"`
	VideoFormat    VideoFormat `json:"videoFormat,omitempty"`
	IncludeCulture bool        `json:"includeCulture"`
}

// Normalize fills empty optional fields with their defaults and returns the copy.
func (r StoryRequest) Normalize() StoryRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Language = strings.TrimSpace(r.Language)
	if r.Language == "" {
		r.Language = "English"
	}
	if r.Genre == "" {
		r.Genre = GenreEducational
	}
	if r.AgeGroup == "" {
		r.AgeGroup = AgeChild
	}
	if r.ImageStyle == "" {
		r.ImageStyle = StyleDigitalArt
	}
	if r.MediaType == "" {
		r.MediaType = MediaTextWithImage
	}
	return r
}

// Validate checks the topic and every enumerated field.
func (r StoryRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if !contains(Genres, r.Genre) {
		return fmt.Errorf("%w: unknown genre %q", ErrInvalidRequest, r.Genre)
	}
	if !contains(AgeGroups, r.AgeGroup) {
		return fmt.Errorf("%w: unknown age group %q", ErrInvalidRequest, r.AgeGroup)
	}
	if !contains(ImageStyles, r.ImageStyle) {
		return fmt.Errorf("%w: unknown image style %q", ErrInvalidRequest, r.ImageStyle)
	}
	if !contains(MediaTypes, r.MediaType) {
		return fmt.Errorf("%w: unknown media type %q", ErrInvalidRequest, r.MediaType)
	}
	if r.VideoFormat != "" && !contains(VideoFormats, r.VideoFormat) {
		return fmt.Errorf("%w: unknown video format %q", ErrInvalidRequest, r.VideoFormat)
	}
	return nil
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// StoryDraft 文本模型返回的结构化结果
type StoryDraft struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImagePrompt string `json:"imagePrompt"`
}

// GeneratedStory 生成的多媒体故事
type GeneratedStory struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Content          string       `json:"content"`
	ImageURL         string       `json:"imageUrl,omitempty"`
	AudioURL         string       `json:"audioUrl,omitempty"`
	VideoURL         string       `json:"videoUrl,omitempty"`
	ImagePrompt      string       `json:"imagePrompt,omitempty"`
	VideoFormat      VideoFormat  `json:"videoFormat,omitempty"`
	IsVideoSimulated bool         `json:"isVideoSimulated,omitempty"`
	Request          StoryRequest `json:"request"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// MediaUpdate carries the output of an image regeneration.
type MediaUpdate struct {
	ImageURL         string      `json:"imageUrl"`
	VideoURL         string      `json:"videoUrl,omitempty"`
	VideoFormat      VideoFormat `json:"videoFormat,omitempty"`
	IsVideoSimulated bool        `json:"isVideoSimulated,omitempty"`
}

// WithMedia returns a copy of the story carrying the regenerated image and video.
func (s GeneratedStory) WithMedia(prompt string, m MediaUpdate) GeneratedStory {
	s.ImagePrompt = prompt
	s.ImageURL = m.ImageURL
	s.VideoURL = m.VideoURL
	s.VideoFormat = m.VideoFormat
	s.IsVideoSimulated = m.IsVideoSimulated
	return s
}

// WithAudio returns a copy of the story with the audio replaced; empty clears it.
func (s GeneratedStory) WithAudio(audioURL string) GeneratedStory {
	s.AudioURL = audioURL
	return s
}

// ChatRole 对话角色
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage 对话消息
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
