// Package api exposes story generation, regeneration, chat and tools over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	einoschema "github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mythos/internal/model"
	"mythos/internal/service"
	"mythos/internal/store"
)

// StoryService is the orchestration the handlers call.
type StoryService interface {
	Generate(ctx context.Context, req model.StoryRequest) (model.GeneratedStory, service.Report, error)
	RegenerateStoryImage(ctx context.Context, imagePrompt string, style model.ImageStyle, mediaType model.MediaType, videoFormat model.VideoFormat) (model.MediaUpdate, error)
	RegenerateAudio(ctx context.Context, text string) string
}

// ToolRunner lists and invokes eino tools.
type ToolRunner interface {
	Infos(ctx context.Context) ([]*einoschema.ToolInfo, error)
	Invoke(ctx context.Context, name, argumentsInJSON string) (string, error)
}

type Server struct {
	stories StoryService
	store   *store.Store
	tools   ToolRunner
	limiter *RateLimiter
}

func NewServer(stories StoryService, st *store.Store, tools ToolRunner, limiter *RateLimiter) *Server {
	return &Server{stories: stories, store: st, tools: tools, limiter: limiter}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", s.handleHealth)

	limited := s.limiter.Middleware()
	api := router.Group("/api")
	{
		api.GET("/options", s.handleOptions)
		api.POST("/stories", limited, s.handleCreateStory)
		api.GET("/stories", s.handleListStories)
		api.GET("/stories/:id", s.handleGetStory)
		api.POST("/stories/:id/image", limited, s.handleRegenerateImage)
		api.POST("/stories/:id/audio", limited, s.handleRegenerateAudio)
		api.POST("/stories/:id/chat", limited, s.handleSeedChat)
		api.GET("/stories/:id/chat", s.handleChatHistory)
		api.POST("/stories/:id/chat/messages", limited, s.handleSendChat)
	}

	router.GET("/tools", s.handleListTools)
	router.POST("/tools/:name", limited, s.handleInvokeTool)
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}).Info("http request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"genres":       model.Genres,
		"ageGroups":    model.AgeGroups,
		"imageStyles":  model.ImageStyles,
		"mediaTypes":   model.MediaTypes,
		"videoFormats": model.VideoFormats,
	})
}

type storyResponse struct {
	model.GeneratedStory
	Stages *service.Report `json:"stages,omitempty"`
}

type storySummary struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Topic     string          `json:"topic"`
	MediaType model.MediaType `json:"mediaType"`
	HasImage  bool            `json:"hasImage"`
	HasVideo  bool            `json:"hasVideo"`
	HasAudio  bool            `json:"hasAudio"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (s *Server) handleCreateStory(c *gin.Context) {
	var req model.StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	story, report, err := s.stories.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if evicted := s.store.Put(story); len(evicted) > 0 {
		logrus.WithField("evicted", evicted).Info("story store at capacity")
	}
	c.JSON(http.StatusCreated, storyResponse{GeneratedStory: story, Stages: &report})
}

func (s *Server) handleListStories(c *gin.Context) {
	stories := s.store.List()
	out := make([]storySummary, 0, len(stories))
	for _, st := range stories {
		out = append(out, storySummary{
			ID:        st.ID,
			Title:     st.Title,
			Topic:     st.Request.Topic,
			MediaType: st.Request.MediaType,
			HasImage:  st.ImageURL != "",
			HasVideo:  st.VideoURL != "",
			HasAudio:  st.AudioURL != "",
			CreatedAt: st.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"stories": out})
}

func (s *Server) handleGetStory(c *gin.Context) {
	story, err := s.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, storyResponse{GeneratedStory: story})
}

type regenerateImageRequest struct {
	ImagePrompt string `json:"imagePrompt"`
}

func (s *Server) handleRegenerateImage(c *gin.Context) {
	var body regenerateImageRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	story, err := s.store.Update(c.Param("id"), func(cur model.GeneratedStory) (model.GeneratedStory, error) {
		if cur.Request.MediaType == model.MediaTextOnly {
			return cur, errTextOnly
		}
		imagePrompt := body.ImagePrompt
		if imagePrompt == "" {
			imagePrompt = cur.ImagePrompt
		}
		update, err := s.stories.RegenerateStoryImage(ctx, imagePrompt, cur.Request.ImageStyle, cur.Request.MediaType, cur.Request.VideoFormat)
		if err != nil {
			return cur, err
		}
		return cur.WithMedia(imagePrompt, update), nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, storyResponse{GeneratedStory: story})
}

func (s *Server) handleRegenerateAudio(c *gin.Context) {
	ctx := c.Request.Context()
	story, err := s.store.Update(c.Param("id"), func(cur model.GeneratedStory) (model.GeneratedStory, error) {
		return cur.WithAudio(s.stories.RegenerateAudio(ctx, cur.Content)), nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, storyResponse{GeneratedStory: story})
}

func (s *Server) handleSeedChat(c *gin.Context) {
	conv, err := s.store.Conversation(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	history, err := conv.Seed(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": history})
}

func (s *Server) handleChatHistory(c *gin.Context) {
	conv, err := s.store.Conversation(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": conv.History()})
}

type chatRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSendChat(c *gin.Context) {
	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	conv, err := s.store.Conversation(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	reply, err := conv.Send(c.Request.Context(), body.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply, "messages": conv.History()})
}

func (s *Server) handleListTools(c *gin.Context) {
	infos, err := s.tools.Infos(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": infos})
}

func (s *Server) handleInvokeTool(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	result, err := s.tools.Invoke(c.Request.Context(), c.Param("name"), string(body))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(result))
}
