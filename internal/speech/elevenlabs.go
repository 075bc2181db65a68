package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mythos/internal/datauri"
)

const (
	elevenLabsModel      = "eleven_multilingual_v2"
	elevenLabsStability  = 0.5
	elevenLabsSimilarity = 0.75
	maxAudioBytes        = 50 << 20
)

// ElevenLabs calls the ElevenLabs text-to-speech endpoint.
type ElevenLabs struct {
	BaseURL    string
	APIKey     string
	VoiceID    string
	HTTPClient *http.Client
}

func NewElevenLabs(baseURL, apiKey, voiceID string, timeout time.Duration) *ElevenLabs {
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	return &ElevenLabs{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		VoiceID:    voiceID,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (string, error) {
	clean := CleanNarration(text)
	if clean == "" {
		return "", fmt.Errorf("%w: %w", ErrSpeechGeneration, ErrEmptyNarration)
	}

	body, err := json.Marshal(ttsRequest{
		Text:    clean,
		ModelID: elevenLabsModel,
		VoiceSettings: voiceSettings{
			Stability:       elevenLabsStability,
			SimilarityBoost: elevenLabsSimilarity,
		},
	})
	if err != nil {
		return "", err
	}

	endpoint := e.BaseURL + "/v1/text-to-speech/" + url.PathEscape(e.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpeechGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.APIKey)

	res, err := e.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpeechGeneration, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxAudioBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpeechGeneration, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := errorDetail(data)
		logrus.WithFields(logrus.Fields{"status": res.StatusCode, "detail": msg}).Warn("elevenlabs request failed")
		return "", fmt.Errorf("%w: elevenlabs http %d: %s", ErrSpeechGeneration, res.StatusCode, msg)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty audio body", ErrSpeechGeneration)
	}

	mimeType := res.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "audio/") {
		mimeType = "audio/mpeg"
	}
	return datauri.Encode(mimeType, data), nil
}

// errorDetail pulls detail.message out of an ElevenLabs error body. detail is
// sometimes a bare string.
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var d struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Detail, &d) == nil && d.Message != "" {
			return d.Message
		}
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil && s != "" {
			return s
		}
	}
	return "ElevenLabs error"
}
