package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mythos/internal/agent"
	"mythos/internal/api"
	"mythos/internal/config"
	"mythos/internal/gemini"
	"mythos/internal/imagegen"
	"mythos/internal/prompt"
	"mythos/internal/service"
	"mythos/internal/speech"
	"mythos/internal/store"
	"mythos/internal/tools"
	"mythos/internal/volc"
)

func main() {
	configPath := os.Getenv("MYTHOS_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("加载配置失败: %v", err)
	}

	// 初始化日志
	logCloser, err := config.InitLogging(cfg.Log)
	if err != nil {
		logrus.Fatalf("初始化日志失败: %v", err)
	}
	defer logCloser.Close()

	ctx := context.Background()

	if cfg.GeminiAPIKey == "" {
		logrus.Fatal("GEMINI_API_KEY is not set")
	}
	genaiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logrus.Fatalf("初始化Gemini客户端失败: %v", err)
	}

	// 初始化ArkClient
	var arkClient *volc.ArkClient
	if cfg.ArkAPIKey != "" {
		arkClient = volc.NewArkClient(cfg.Ark.BaseURL, cfg.Ark.Region, cfg.ArkAPIKey, cfg.Image.Timeout)
	}

	var images imagegen.Generator
	switch cfg.Image.Provider {
	case "seedream":
		images = imagegen.NewSeedream(arkClient, cfg.Ark.ImageModel, cfg.Ark.ImageSize, cfg.Image.Timeout)
	default:
		images = imagegen.NewPollinations(cfg.Image.BaseURL, cfg.Image.Timeout)
	}

	var video service.VideoSynthesizer
	switch cfg.Video.Provider {
	case "seedance":
		video = service.NewSeedanceVideo(arkClient, cfg.Ark.VideoModel, cfg.Ark.VideoRatio, cfg.Ark.VideoLength, cfg.Video.PollInterval, cfg.Video.Deadline)
	default:
		video = service.SimulatedVideo{Delay: cfg.Video.Delay}
	}

	var narrator speech.Synthesizer
	switch cfg.Speech.Provider {
	case "google":
		ttsClient, err := speech.NewGoogleClient(ctx)
		if err != nil {
			logrus.Fatalf("初始化TTS客户端失败: %v", err)
		}
		defer ttsClient.Close()
		narrator = speech.NewGoogleSpeech(ttsClient, cfg.Speech.LanguageCode, cfg.Speech.GoogleVoice)
	default:
		if cfg.ElevenLabsAPIKey == "" || cfg.ElevenLabsVoice == "" {
			logrus.Warn("ELEVENLABS_API_KEY or ELEVENLABS_VOICE_ID missing, stories will have no audio")
		}
		narrator = speech.NewElevenLabs(cfg.Speech.BaseURL, cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoice, cfg.Speech.Timeout)
	}

	var chat einomodel.BaseChatModel
	switch cfg.Chat.Provider {
	case "ark":
		chat, err = arkClient.NewChatModel(ctx, cfg.Ark.ChatModel)
		if err != nil {
			logrus.Fatalf("初始化Ark对话模型失败: %v", err)
		}
	default:
		chat = gemini.NewChatModel(genaiClient.Models, cfg.Chat.Model)
	}

	builder := prompt.NewBuilder(prompt.Culture{Region: cfg.Culture.Region, Aesthetic: cfg.Culture.Aesthetic})
	stories := service.NewStoryService(builder, gemini.NewTextClient(genaiClient.Models, cfg.Text.Model), images, video, narrator)
	st := store.New(cfg.Store.Capacity, func(grounding string) *agent.Conversation {
		return agent.NewConversation(chat, grounding)
	})

	// 初始化工具
	registry, err := tools.NewRegistry(ctx,
		tools.NewStoryTool(stories),
		tools.NewImageTool(stories),
		tools.NewSpeechTool(narrator),
		tools.NewVideoTool(video),
	)
	if err != nil {
		logrus.Fatalf("初始化工具失败: %v", err)
	}

	if logrus.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.NewServer(stories, st, registry, api.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst))

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Router(),
	}

	// 在goroutine中启动服务器
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":   cfg.Server.Addr,
			"image":  cfg.Image.Provider,
			"video":  cfg.Video.Provider,
			"speech": cfg.Speech.Provider,
			"chat":   cfg.Chat.Provider,
		}).Info("服务器启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("启动服务器失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("关闭服务器...")

	// 优雅关闭服务器
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("服务器关闭失败: %v", err)
	}

	logrus.Info("服务器已关闭")
}
