// Package config loads service settings from .env, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Text    TextConfig    `yaml:"text"`
	Image   ImageConfig   `yaml:"image"`
	Video   VideoConfig   `yaml:"video"`
	Speech  SpeechConfig  `yaml:"speech"`
	Chat    ChatConfig    `yaml:"chat"`
	Ark     ArkConfig     `yaml:"ark"`
	Culture CultureConfig `yaml:"culture"`
	Store   StoreConfig   `yaml:"store"`

	// secrets, env only
	GeminiAPIKey     string `yaml:"-"`
	ElevenLabsAPIKey string `yaml:"-"`
	ElevenLabsVoice  string `yaml:"-"`
	ArkAPIKey        string `yaml:"-"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       float64       `yaml:"rate_limit"` // generation requests per second per client IP
	RateBurst       int           `yaml:"rate_burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
	File   string `yaml:"file"`
}

type TextConfig struct {
	Model string `yaml:"model"`
}

type ImageConfig struct {
	Provider string        `yaml:"provider"` // pollinations | seedream
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type VideoConfig struct {
	Provider     string        `yaml:"provider"` // simulated | seedance
	Delay        time.Duration `yaml:"delay"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Deadline     time.Duration `yaml:"deadline"`
}

type SpeechConfig struct {
	Provider     string        `yaml:"provider"` // elevenlabs | google
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	LanguageCode string        `yaml:"language_code"`
	GoogleVoice  string        `yaml:"google_voice"`
}

type ChatConfig struct {
	Provider string `yaml:"provider"` // gemini | ark
	Model    string `yaml:"model"`
}

type ArkConfig struct {
	BaseURL     string `yaml:"base_url"`
	Region      string `yaml:"region"`
	ChatModel   string `yaml:"chat_model"`
	ImageModel  string `yaml:"image_model"`
	VideoModel  string `yaml:"video_model"`
	ImageSize   string `yaml:"image_size"`
	VideoRatio  string `yaml:"video_ratio"`
	VideoLength int    `yaml:"video_length"`
}

type CultureConfig struct {
	Region    string `yaml:"region"`
	Aesthetic string `yaml:"aesthetic"`
}

type StoreConfig struct {
	Capacity int `yaml:"capacity"`
}

// Default returns the settings used when no file or env override is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       0.5,
			RateBurst:       5,
		},
		Log:  LogConfig{Level: "info", Format: "text"},
		Text: TextConfig{Model: "gemini-1.5-flash"},
		Image: ImageConfig{
			Provider: "pollinations",
			BaseURL:  "https://image.pollinations.ai",
			Timeout:  60 * time.Second,
		},
		Video: VideoConfig{
			Provider:     "simulated",
			Delay:        1500 * time.Millisecond,
			PollInterval: 5 * time.Second,
			Deadline:     5 * time.Minute,
		},
		Speech: SpeechConfig{
			Provider:     "elevenlabs",
			BaseURL:      "https://api.elevenlabs.io",
			Timeout:      60 * time.Second,
			LanguageCode: "en-US",
		},
		Chat: ChatConfig{Provider: "gemini", Model: "gemini-1.5-flash"},
		Ark: ArkConfig{
			BaseURL:     "https://ark.cn-beijing.volces.com",
			Region:      "cn-beijing",
			ChatModel:   "doubao-seed-1-6-flash",
			ImageModel:  "doubao-seedream-4.0",
			VideoModel:  "doubao-seedance-1-0-lite-i2v",
			ImageSize:   "1280x720",
			VideoRatio:  "16:9",
			VideoLength: 5,
		},
		Culture: CultureConfig{
			Region:    "Haitian",
			Aesthetic: "Caribbean aesthetic, vibrant colors",
		},
		Store: StoreConfig{Capacity: 256},
	}
}

// Load reads .env (if present), overlays the YAML file at path (if present) on
// Default, then applies environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.ElevenLabsAPIKey = os.Getenv("ELEVENLABS_API_KEY")
	cfg.ElevenLabsVoice = os.Getenv("ELEVENLABS_VOICE_ID")
	cfg.ArkAPIKey = os.Getenv("ARK_API_KEY")
	if v := os.Getenv("MYTHOS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MYTHOS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks provider choices and the secrets they need.
func (c *Config) Validate() error {
	switch c.Image.Provider {
	case "pollinations":
	case "seedream":
		if c.ArkAPIKey == "" {
			return errors.New("image provider seedream requires ARK_API_KEY")
		}
	default:
		return fmt.Errorf("unknown image provider %q", c.Image.Provider)
	}

	switch c.Video.Provider {
	case "simulated":
	case "seedance":
		if c.ArkAPIKey == "" {
			return errors.New("video provider seedance requires ARK_API_KEY")
		}
	default:
		return fmt.Errorf("unknown video provider %q", c.Video.Provider)
	}

	switch c.Speech.Provider {
	case "elevenlabs", "google":
	default:
		return fmt.Errorf("unknown speech provider %q", c.Speech.Provider)
	}

	switch c.Chat.Provider {
	case "gemini":
	case "ark":
		if c.ArkAPIKey == "" {
			return errors.New("chat provider ark requires ARK_API_KEY")
		}
	default:
		return fmt.Errorf("unknown chat provider %q", c.Chat.Provider)
	}

	if c.Store.Capacity <= 0 {
		return fmt.Errorf("store capacity must be positive, got %d", c.Store.Capacity)
	}
	return nil
}
